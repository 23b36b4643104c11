package common

// Key codes delivered to window key callbacks. Printable keys carry their upper-case ASCII value
// and the rest follow GLFW's numbering, so a glfw.Key converts with a plain uint32 cast.
const (
	// pan controls
	KeyW = 'W'
	KeyA = 'A'
	KeyS = 'S'
	KeyD = 'D'

	// height controls
	KeyQ = 'Q'
	KeyE = 'E'

	KeyEsc        = 256
	KeyLeftShift  = 340
	KeyRightShift = 344
)
