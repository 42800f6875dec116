package namespace

import (
	"errors"
	"fmt"
)

var (
	// ErrNameTooLong indicates a name over NameCapacity bytes
	ErrNameTooLong = errors.New("name exceeds 10 bytes")

	// ErrEmptyName indicates a zero length name
	ErrEmptyName = errors.New("name is empty")

	// ErrPoolExhausted indicates no free slot is left in a pool
	ErrPoolExhausted = errors.New("no free slot in pool")

	// ErrChildCapacityExhausted indicates a directory already holds MaxChildren children
	ErrChildCapacityExhausted = errors.New("directory child limit reached")

	// ErrFileCapacityExhausted indicates a directory already owns MaxFiles files
	ErrFileCapacityExhausted = errors.New("directory file limit reached")

	// ErrNotFound indicates no child with the requested name
	ErrNotFound = errors.New("no such entry")

	// ErrNotEmpty indicates a removal target that still has children or files
	ErrNotEmpty = errors.New("directory not empty")

	// ErrInvalidSlot indicates a slot index that is out of range or unoccupied
	ErrInvalidSlot = errors.New("invalid slot")
)

// Error wraps a namespace error with the operation and the name it was applied to.
type Error struct {
	Op   string // Operation that failed (e.g., "mkdir", "chdir")
	Name string // Name argument, if any
	Err  error  // Underlying sentinel error
}

func (e *Error) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Op, e.Name, e.Err)
}

// Unwrap implements error unwrapping for the errors.Is/As functions
func (e *Error) Unwrap() error {
	return e.Err
}

func opErr(op string, name []byte, err error) error {
	return &Error{Op: op, Name: string(name), Err: err}
}
