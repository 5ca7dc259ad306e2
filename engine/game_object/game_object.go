package game_object

import (
	"sync/atomic"

	"github.com/Carmen-Shannon/prism-go/common"
	"github.com/Carmen-Shannon/prism-go/engine/mesh"
	"github.com/Carmen-Shannon/prism-go/engine/skin"
)

type gameObject struct {
	id      uint64
	enabled atomic.Bool
	handle  mesh.Handle

	castsShadows    bool
	receivesShadows bool

	skn          *skin.Skin
	morphWeights []float32

	position      [3]float32
	rotation      [3]float32
	rotationSpeed [3]float32
	scale         [3]float32
}

// GameObject is a scene entity: a transform, an optional mesh handle, and the
// optional skin and morph weight state that select which pipeline variant the
// entity renders with. An object with a zero mesh handle is a transform-only
// node; skeleton joints are modeled this way so skins can resolve joint
// matrices from the same registry as drawable objects.
type GameObject interface {
	// ID returns the object's unique identifier. The ID doubles as the
	// entity key used by mesh extraction and skin joint lookups.
	//
	// Returns:
	//   - uint64: the object ID
	ID() uint64

	// Enabled returns whether this object is enabled for rendering.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// Mesh returns the handle of the mesh this object renders, or zero for a
	// transform-only node.
	//
	// Returns:
	//   - mesh.Handle: the mesh handle, zero if none
	Mesh() mesh.Handle

	// CastsShadows returns whether this object casts shadows.
	//
	// Returns:
	//   - bool: true if the object is a shadow caster
	CastsShadows() bool

	// ReceivesShadows returns whether this object receives shadows.
	//
	// Returns:
	//   - bool: true if the object is a shadow receiver
	ReceivesShadows() bool

	// Skin returns the skin bound to this object, or nil for rigid meshes.
	//
	// Returns:
	//   - *skin.Skin: the skin or nil
	Skin() *skin.Skin

	// MorphWeights returns the object's morph target weights, or nil when the
	// mesh carries no morph targets.
	//
	// Returns:
	//   - []float32: the weights slice (not copied) or nil
	MorphWeights() []float32

	// Position returns the object's current position.
	//
	// Returns:
	//   - x, y, z: position components
	Position() (x, y, z float32)

	// Rotation returns the object's current rotation.
	//
	// Returns:
	//   - rx, ry, rz: rotation angles in radians
	Rotation() (rx, ry, rz float32)

	// RotationSpeed returns the object's rotation speed, applied by the scene
	// each update tick.
	//
	// Returns:
	//   - rx, ry, rz: rotation speed in radians per second
	RotationSpeed() (rx, ry, rz float32)

	// Scale returns the object's current scale.
	//
	// Returns:
	//   - sx, sy, sz: scale components
	Scale() (sx, sy, sz float32)

	// TransformData reads all transform state in a single call.
	//
	// Returns:
	//   - pos: position as [3]float32 (x, y, z)
	//   - scale: scale as [3]float32 (x, y, z)
	//   - rot: rotation as [3]float32 (rx, ry, rz)
	//   - rotSpeed: rotation speed as [3]float32 (rx, ry, rz)
	TransformData() (pos, scale, rot, rotSpeed [3]float32)

	// ModelMatrix composes the object's position, rotation, and scale into a
	// column-major world transform.
	//
	// Returns:
	//   - [16]float32: the model matrix
	ModelMatrix() [16]float32

	// SetID sets the object's unique identifier.
	//
	// Parameters:
	//   - id: the ID to assign
	SetID(id uint64)

	// SetEnabled sets whether the object is enabled for rendering.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)

	// SetMesh assigns the mesh this object renders.
	//
	// Parameters:
	//   - h: the mesh handle, zero for a transform-only node
	SetMesh(h mesh.Handle)

	// SetCastsShadows sets whether this object casts shadows.
	//
	// Parameters:
	//   - casts: true to cast shadows
	SetCastsShadows(casts bool)

	// SetReceivesShadows sets whether this object receives shadows.
	//
	// Parameters:
	//   - receives: true to receive shadows
	SetReceivesShadows(receives bool)

	// SetSkin binds a skin to this object. Pass nil to unbind.
	//
	// Parameters:
	//   - s: the skin, or nil
	SetSkin(s *skin.Skin)

	// SetMorphWeights sets the object's morph target weights. The slice is
	// retained, not copied, so callers may mutate weights in place between
	// frames.
	//
	// Parameters:
	//   - weights: the weights, or nil to clear
	SetMorphWeights(weights []float32)

	// SetPosition updates the object's position.
	//
	// Parameters:
	//   - x, y, z: new position components
	SetPosition(x, y, z float32)

	// SetRotation updates the object's rotation.
	//
	// Parameters:
	//   - rx, ry, rz: new rotation angles in radians
	SetRotation(rx, ry, rz float32)

	// SetRotationSpeed updates the object's rotation speed.
	//
	// Parameters:
	//   - rx, ry, rz: new rotation speed in radians per second
	SetRotationSpeed(rx, ry, rz float32)

	// SetScale updates the object's scale.
	//
	// Parameters:
	//   - sx, sy, sz: new scale factors
	SetScale(sx, sy, sz float32)
}

var _ GameObject = &gameObject{}

// NewGameObject creates a new GameObject configured with the given options.
// Objects default to unit scale and to casting and receiving shadows.
//
// Parameters:
//   - options: functional options to configure the object
//
// Returns:
//   - GameObject: the newly created object
func NewGameObject(options ...GameObjectBuilderOption) GameObject {
	obj := &gameObject{
		scale:           [3]float32{1, 1, 1},
		castsShadows:    true,
		receivesShadows: true,
	}
	for _, option := range options {
		option(obj)
	}
	return obj
}

func (g *gameObject) ID() uint64 {
	return g.id
}

func (g *gameObject) Enabled() bool {
	return g.enabled.Load()
}

func (g *gameObject) Mesh() mesh.Handle {
	return g.handle
}

func (g *gameObject) CastsShadows() bool {
	return g.castsShadows
}

func (g *gameObject) ReceivesShadows() bool {
	return g.receivesShadows
}

func (g *gameObject) Skin() *skin.Skin {
	return g.skn
}

func (g *gameObject) MorphWeights() []float32 {
	return g.morphWeights
}

func (g *gameObject) Position() (x, y, z float32) {
	return g.position[0], g.position[1], g.position[2]
}

func (g *gameObject) Rotation() (rx, ry, rz float32) {
	return g.rotation[0], g.rotation[1], g.rotation[2]
}

func (g *gameObject) RotationSpeed() (rx, ry, rz float32) {
	return g.rotationSpeed[0], g.rotationSpeed[1], g.rotationSpeed[2]
}

func (g *gameObject) Scale() (sx, sy, sz float32) {
	return g.scale[0], g.scale[1], g.scale[2]
}

func (g *gameObject) TransformData() (pos, scale, rot, rotSpeed [3]float32) {
	return g.position, g.scale, g.rotation, g.rotationSpeed
}

func (g *gameObject) ModelMatrix() [16]float32 {
	var out [16]float32
	common.BuildModelMatrix(out[:],
		g.position[0], g.position[1], g.position[2],
		g.rotation[0], g.rotation[1], g.rotation[2],
		g.scale[0], g.scale[1], g.scale[2])
	return out
}

func (g *gameObject) SetID(id uint64) {
	g.id = id
}

func (g *gameObject) SetEnabled(enabled bool) {
	g.enabled.Store(enabled)
}

func (g *gameObject) SetMesh(h mesh.Handle) {
	g.handle = h
}

func (g *gameObject) SetCastsShadows(casts bool) {
	g.castsShadows = casts
}

func (g *gameObject) SetReceivesShadows(receives bool) {
	g.receivesShadows = receives
}

func (g *gameObject) SetSkin(s *skin.Skin) {
	g.skn = s
}

func (g *gameObject) SetMorphWeights(weights []float32) {
	g.morphWeights = weights
}

func (g *gameObject) SetPosition(x, y, z float32) {
	g.position = [3]float32{x, y, z}
}

func (g *gameObject) SetRotation(rx, ry, rz float32) {
	g.rotation = [3]float32{rx, ry, rz}
}

func (g *gameObject) SetRotationSpeed(rx, ry, rz float32) {
	g.rotationSpeed = [3]float32{rx, ry, rz}
}

func (g *gameObject) SetScale(sx, sy, sz float32) {
	g.scale = [3]float32{sx, sy, sz}
}
