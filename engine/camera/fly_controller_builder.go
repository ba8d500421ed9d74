package camera

type FlyControllerOption func(*flyControllerImpl)

// WithPosition sets the controller's starting world-space position.
//
// Parameters:
//   - position: world-space coordinates
//
// Returns:
//   - FlyControllerOption: a function that sets the starting position
func WithPosition(position [3]float32) FlyControllerOption {
	return func(fc *flyControllerImpl) {
		fc.position = position
	}
}

// WithYaw sets the starting horizontal view angle in radians.
//
// Parameters:
//   - yaw: the yaw angle
//
// Returns:
//   - FlyControllerOption: a function that sets the starting yaw
func WithYaw(yaw float32) FlyControllerOption {
	return func(fc *flyControllerImpl) {
		fc.yaw = yaw
	}
}

// WithPitch sets the starting vertical view angle in radians. The value is
// clamped to the controller's pitch range after all options are applied.
//
// Parameters:
//   - pitch: the pitch angle
//
// Returns:
//   - FlyControllerOption: a function that sets the starting pitch
func WithPitch(pitch float32) FlyControllerOption {
	return func(fc *flyControllerImpl) {
		fc.pitch = pitch
	}
}

// WithMoveSpeed sets the movement speed in world units per step.
//
// Parameters:
//   - speed: the move speed
//
// Returns:
//   - FlyControllerOption: a function that sets the move speed
func WithMoveSpeed(speed float32) FlyControllerOption {
	return func(fc *flyControllerImpl) {
		fc.moveSpeed = speed
	}
}

// WithLookSensitivity sets the radians-per-unit scale applied by Turn.
//
// Parameters:
//   - sensitivity: the look sensitivity
//
// Returns:
//   - FlyControllerOption: a function that sets the look sensitivity
func WithLookSensitivity(sensitivity float32) FlyControllerOption {
	return func(fc *flyControllerImpl) {
		fc.lookSensitivity = sensitivity
	}
}
