package common

// Virtual key codes for cross-platform input handling. The values match GLFW
// key codes, which use ASCII values for printable keys. Only the keys the
// engine's camera and debug bindings consume are named here.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyW = 87 // forward
	KeyA = 65 // strafe left
	KeyS = 83 // backward
	KeyD = 68 // strafe right
	KeyQ = 81 // descend
	KeyE = 69 // ascend
	KeyF = 70 // toggle fog profile

	KeySpace     = 32  // Spacebar (ASCII)
	KeyBackspace = 259 // Backspace (GLFW)
	KeyEsc       = 256 // Escape (GLFW)

	KeyLeftShift  = 340 // Left Shift (GLFW)
	KeyRightShift = 344 // Right Shift (GLFW)
)
