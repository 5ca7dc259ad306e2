package game_object

import (
	"github.com/Carmen-Shannon/prism-go/engine/mesh"
	"github.com/Carmen-Shannon/prism-go/engine/skin"
)

// GameObjectBuilderOption is a functional option for configuring a GameObject during construction.
type GameObjectBuilderOption func(*gameObject)

// WithID sets the ID of the GameObject.
//
// Parameters:
//   - id: unique identifier for the GameObject
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the ID
func WithID(id uint64) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.id = id
	}
}

// WithEnabled sets whether the GameObject is enabled for rendering.
//
// Parameters:
//   - enabled: true to render the object, false to skip it
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the Enabled state
func WithEnabled(enabled bool) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.enabled.Store(enabled)
	}
}

// WithMesh sets the mesh handle this GameObject renders.
//
// Parameters:
//   - h: the mesh handle
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the mesh
func WithMesh(h mesh.Handle) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.handle = h
	}
}

// WithCastsShadows sets whether the GameObject casts shadows. Objects cast
// shadows by default.
//
// Parameters:
//   - casts: true to cast shadows
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the caster flag
func WithCastsShadows(casts bool) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.castsShadows = casts
	}
}

// WithReceivesShadows sets whether the GameObject receives shadows. Objects
// receive shadows by default.
//
// Parameters:
//   - receives: true to receive shadows
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the receiver flag
func WithReceivesShadows(receives bool) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.receivesShadows = receives
	}
}

// WithSkin binds a skin to the GameObject. The skin's joints name other
// objects in the same scene by ID.
//
// Parameters:
//   - s: the skin to bind
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the skin
func WithSkin(s *skin.Skin) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.skn = s
	}
}

// WithMorphWeights sets the GameObject's morph target weights. The slice is
// retained, not copied.
//
// Parameters:
//   - weights: the morph target weights
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the weights
func WithMorphWeights(weights []float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.morphWeights = weights
	}
}

// WithPosition sets the initial position of the GameObject.
//
// Parameters:
//   - x: the x position
//   - y: the y position
//   - z: the z position
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the initial position
func WithPosition(x, y, z float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.position = [3]float32{x, y, z}
	}
}

// WithScale sets the initial scale of the GameObject.
//
// Parameters:
//   - sx: the x scale factor
//   - sy: the y scale factor
//   - sz: the z scale factor
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the initial scale
func WithScale(sx, sy, sz float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.scale = [3]float32{sx, sy, sz}
	}
}

// WithRotation sets the initial rotation of the GameObject.
//
// Parameters:
//   - rx: the x rotation angle in radians
//   - ry: the y rotation angle in radians
//   - rz: the z rotation angle in radians
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the initial rotation
func WithRotation(rx, ry, rz float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.rotation = [3]float32{rx, ry, rz}
	}
}

// WithRotationSpeed sets the rotation speed of the GameObject, applied by the
// scene each update tick.
//
// Parameters:
//   - rx: the x rotation speed in radians per second
//   - ry: the y rotation speed in radians per second
//   - rz: the z rotation speed in radians per second
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the rotation speed
func WithRotationSpeed(rx, ry, rz float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.rotationSpeed = [3]float32{rx, ry, rz}
	}
}
