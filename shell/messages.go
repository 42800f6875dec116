package shell

import (
	"errors"
	"fmt"

	"github.com/brettbedarf/nsshell/namespace"
)

// errorMessage renders a failed command for the display. name is the name the
// command was given, cmd the command token.
func errorMessage(err error, cmd, name string) string {
	switch {
	case errors.Is(err, ErrUnsupportedCommand):
		return fmt.Sprintf(`[Error] Command "%s" is not supported!`, cmd)
	case errors.Is(err, ErrArgumentTooLong):
		return fmt.Sprintf("[Error] Argument too long. Max size is %d characters", ArgumentCapacity)
	case errors.Is(err, namespace.ErrNameTooLong):
		return fmt.Sprintf("[Error] Invalid directory name. Max size is %d characters", namespace.NameCapacity)
	case errors.Is(err, namespace.ErrEmptyName):
		return "[Error] Directory name is required"
	case errors.Is(err, namespace.ErrPoolExhausted):
		return "[Error] Can't be created: no free directory slots"
	case errors.Is(err, namespace.ErrChildCapacityExhausted):
		return "[Error] Can't be created in this directory!"
	case errors.Is(err, namespace.ErrNotFound):
		return fmt.Sprintf(`[Error] Folder "%s" doesn't exist!`, name)
	case errors.Is(err, namespace.ErrNotEmpty):
		return "[Error] Count of children must be 0"
	default:
		return "[Error] " + err.Error()
	}
}
