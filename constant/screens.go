package constant

// Packaged filler-media filenames looked up inside the screens directory.
const (
	IdleScreenFile       = "idle.mp4"
	TransitionScreenFile = "transition.mp4"
)
