package camera

import (
	"math"
	"sync"
)

// flyControllerImpl is the implementation of the FlyController interface.
// It holds a free-flight camera as a world position plus yaw/pitch angles;
// the look target is derived from them. Movement translates along the local
// forward/right axes or world up, scaled by the move speed.
type flyControllerImpl struct {
	mu *sync.Mutex

	position [3]float32

	yaw   float32 // horizontal angle around the Y axis, radians
	pitch float32 // vertical angle from the horizontal plane, radians

	minPitch float32
	maxPitch float32

	moveSpeed       float32
	lookSensitivity float32
}

// FlyController defines the interface for free-flight camera control.
// It owns positional state; Camera reads Position and Target from it each
// frame and computes the view matrix.
type FlyController interface {
	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - [3]float32: the world-space camera position
	Position() [3]float32

	// SetPosition sets the camera's world-space position directly.
	//
	// Parameters:
	//   - position: world-space coordinates
	SetPosition(position [3]float32)

	// Target returns the look-at point, one unit along the view direction.
	//
	// Returns:
	//   - [3]float32: the world-space target position
	Target() [3]float32

	// Yaw returns the horizontal view angle in radians.
	//
	// Returns:
	//   - float32: the yaw angle
	Yaw() float32

	// Pitch returns the vertical view angle in radians.
	//
	// Returns:
	//   - float32: the pitch angle
	Pitch() float32

	// Turn rotates the view by yaw and pitch deltas scaled by the look
	// sensitivity. Pitch is clamped so the view never flips over the poles.
	//
	// Parameters:
	//   - deltaYaw: horizontal rotation, positive turns right
	//   - deltaPitch: vertical rotation, positive looks up
	Turn(deltaYaw, deltaPitch float32)

	// MoveForward translates along the view direction by delta scaled by the
	// move speed. Negative delta moves backward.
	//
	// Parameters:
	//   - delta: the movement amount
	MoveForward(delta float32)

	// MoveRight translates along the local right axis by delta scaled by the
	// move speed. Negative delta strafes left.
	//
	// Parameters:
	//   - delta: the movement amount
	MoveRight(delta float32)

	// MoveUp translates along world up by delta scaled by the move speed.
	//
	// Parameters:
	//   - delta: the movement amount
	MoveUp(delta float32)

	// MoveSpeed returns the movement speed in world units per step.
	//
	// Returns:
	//   - float32: the move speed
	MoveSpeed() float32

	// SetMoveSpeed sets the movement speed in world units per step.
	//
	// Parameters:
	//   - speed: the new move speed
	SetMoveSpeed(speed float32)

	// LookSensitivity returns the radians-per-unit scale applied by Turn.
	//
	// Returns:
	//   - float32: the look sensitivity
	LookSensitivity() float32
}

var _ FlyController = &flyControllerImpl{}

// NewFlyController creates a free-flight controller with sensible defaults:
// origin position, level view down -Z, and a pitch range just short of
// straight up and straight down.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - FlyController: the newly created controller
func NewFlyController(options ...FlyControllerOption) FlyController {
	fc := &flyControllerImpl{
		mu: &sync.Mutex{},

		minPitch: float32(-math.Pi/2 + 0.01),
		maxPitch: float32(math.Pi/2 - 0.01),

		moveSpeed:       1.0,
		lookSensitivity: 0.005,
	}

	for _, option := range options {
		option(fc)
	}

	fc.pitch = clampPitch(fc.pitch, fc.minPitch, fc.maxPitch)
	return fc
}

// forward computes the unit view direction from yaw and pitch.
// Caller must hold the mutex.
func (fc *flyControllerImpl) forward() (fx, fy, fz float32) {
	cosPitch := float32(math.Cos(float64(fc.pitch)))
	fx = cosPitch * float32(math.Sin(float64(fc.yaw)))
	fy = float32(math.Sin(float64(fc.pitch)))
	fz = -cosPitch * float32(math.Cos(float64(fc.yaw)))
	return
}

func clampPitch(pitch, min, max float32) float32 {
	if pitch < min {
		return min
	}
	if pitch > max {
		return max
	}
	return pitch
}

func (fc *flyControllerImpl) Position() [3]float32 {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.position
}

func (fc *flyControllerImpl) SetPosition(position [3]float32) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.position = position
}

func (fc *flyControllerImpl) Target() [3]float32 {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fx, fy, fz := fc.forward()
	return [3]float32{
		fc.position[0] + fx,
		fc.position[1] + fy,
		fc.position[2] + fz,
	}
}

func (fc *flyControllerImpl) Yaw() float32 {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.yaw
}

func (fc *flyControllerImpl) Pitch() float32 {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.pitch
}

func (fc *flyControllerImpl) Turn(deltaYaw, deltaPitch float32) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.yaw += deltaYaw * fc.lookSensitivity
	fc.pitch = clampPitch(fc.pitch+deltaPitch*fc.lookSensitivity, fc.minPitch, fc.maxPitch)
}

func (fc *flyControllerImpl) MoveForward(delta float32) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fx, fy, fz := fc.forward()
	offset := delta * fc.moveSpeed
	fc.position[0] += fx * offset
	fc.position[1] += fy * offset
	fc.position[2] += fz * offset
}

func (fc *flyControllerImpl) MoveRight(delta float32) {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	// right = normalize(cross(forward, worldUp)) with worldUp = (0, 1, 0)
	fx, _, fz := fc.forward()
	rx, rz := -fz, fx
	length := float32(math.Sqrt(float64(rx*rx + rz*rz)))
	if length < 1e-8 {
		return
	}
	offset := delta * fc.moveSpeed / length
	fc.position[0] += rx * offset
	fc.position[2] += rz * offset
}

func (fc *flyControllerImpl) MoveUp(delta float32) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.position[1] += delta * fc.moveSpeed
}

func (fc *flyControllerImpl) MoveSpeed() float32 {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.moveSpeed
}

func (fc *flyControllerImpl) SetMoveSpeed(speed float32) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.moveSpeed = speed
}

func (fc *flyControllerImpl) LookSensitivity() float32 {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.lookSensitivity
}
