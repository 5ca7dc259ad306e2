package camera

// CameraBuilderOption is a functional option for configuring a Camera.
// Use the With* functions to create options that are applied directly to the
// camera instance.
type CameraBuilderOption func(*cameraImpl)

// WithPosition sets the camera's world-space position.
//
// Parameters:
//   - x, y, z: position components
//
// Returns:
//   - CameraBuilderOption: option function to apply
func WithPosition(x, y, z float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.position = [3]float32{x, y, z}
	}
}

// WithTarget sets the point the camera looks at.
//
// Parameters:
//   - x, y, z: target components
//
// Returns:
//   - CameraBuilderOption: option function to apply
func WithTarget(x, y, z float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.target = [3]float32{x, y, z}
	}
}

// WithUp sets the camera's up vector.
//
// Parameters:
//   - x, y, z: up vector components
//
// Returns:
//   - CameraBuilderOption: option function to apply
func WithUp(x, y, z float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.up = [3]float32{x, y, z}
	}
}

// WithPerspective sets the perspective projection parameters.
//
// Parameters:
//   - fov: field of view in radians
//   - aspect: aspect ratio (width / height)
//   - near: near plane distance
//   - far: far plane distance
//
// Returns:
//   - CameraBuilderOption: option function to apply
func WithPerspective(fov, aspect, near, far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.fov = fov
		c.aspect = aspect
		c.near = near
		c.far = far
	}
}
