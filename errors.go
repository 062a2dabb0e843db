package canopy

import "errors"

var (
	// ErrNilCamera is returned when a 3D scene is constructed without a camera.
	ErrNilCamera = errors.New("canopy: camera is required")
	// ErrUnknownAnchor is returned by ParseAnchor for unrecognized names.
	ErrUnknownAnchor = errors.New("canopy: unknown anchor")
	// ErrInvalidOption is wrapped by constructors rejecting an option value.
	ErrInvalidOption = errors.New("canopy: invalid option")
	// ErrRunning is returned by Init while the pipeline is running.
	ErrRunning = errors.New("canopy: pipeline is running")
)
