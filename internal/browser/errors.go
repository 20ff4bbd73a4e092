// internal/browser/errors.go
package browser

import (
	"errors"
	"fmt"
)

// ErrSessionClosed reports use of a session whose connection has been torn
// down and not yet re-created.
var ErrSessionClosed = errors.New("browser session is closed")

// ElementNotFoundError reports an index that is not a key of the supplied
// state's index map. This is a caller contract violation (stale snapshot),
// not a transient fault: it is never retried, and no browser interaction is
// attempted. The caller must refresh state and retry with fresh indices.
type ElementNotFoundError struct {
	Index int
}

func (e *ElementNotFoundError) Error() string {
	return fmt.Sprintf("element index %d not found in state index map", e.Index)
}

// ActionFailedError reports that every interaction strategy for a valid
// index was exhausted. It carries the original locator and the last
// underlying cause. Fatal for the call, not for the session.
//
// For text input the error records the text length, never the text itself,
// so sensitive input cannot leak into error logs.
type ActionFailedError struct {
	Index   int
	Locator string
	Stage   string
	// Input marks a text-input failure; TextLen is only meaningful then.
	Input   bool
	TextLen int
	Err     error
}

func (e *ActionFailedError) Error() string {
	if e.Input {
		return fmt.Sprintf("failed to input text (%d chars) into element %d (%q) at stage %q: %v", e.TextLen, e.Index, e.Locator, e.Stage, e.Err)
	}
	return fmt.Sprintf("failed to click element %d (%q), last stage %q: %v", e.Index, e.Locator, e.Stage, e.Err)
}

func (e *ActionFailedError) Unwrap() error {
	return e.Err
}
