package shell

import "errors"

var (
	// ErrUnsupportedCommand indicates a command token not in the command table
	ErrUnsupportedCommand = errors.New("command not supported")

	// ErrArgumentTooLong indicates an argument over ArgumentCapacity bytes
	ErrArgumentTooLong = errors.New("argument exceeds 70 bytes")

	// ErrLineFull indicates a keystroke arriving when the line buffer is at capacity
	ErrLineFull = errors.New("line buffer full")
)
