package backend

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyExtraction is reported when a source read the document but
	// found no text
	ErrEmptyExtraction = errors.New("no text extracted")

	// ErrBackendPanic is reported when a source panicked
	ErrBackendPanic = errors.New("backend panicked")
)

// BackendExtractionError records the failure of one source in a Chain
type BackendExtractionError struct {
	Backend string
	Path    string
	Err     error
}

func (e *BackendExtractionError) Error() string {
	return fmt.Sprintf("backend %s: %s: %v", e.Backend, e.Path, e.Err)
}

func (e *BackendExtractionError) Unwrap() error {
	return e.Err
}

// AllBackendsFailedError is returned when every source in a Chain failed.
// Attempts are in priority order.
type AllBackendsFailedError struct {
	Path     string
	Attempts []*BackendExtractionError
}

func (e *AllBackendsFailedError) Error() string {
	names := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		names[i] = a.Backend
	}
	if len(e.Attempts) == 0 {
		return fmt.Sprintf("all backends failed for %s: no backends configured", e.Path)
	}
	return fmt.Sprintf("all backends failed for %s (%s): %v",
		e.Path, strings.Join(names, ", "), e.Attempts[len(e.Attempts)-1].Err)
}

// Unwrap exposes every attempt to errors.Is and errors.As
func (e *AllBackendsFailedError) Unwrap() []error {
	errs := make([]error, len(e.Attempts))
	for i, a := range e.Attempts {
		errs[i] = a
	}
	return errs
}
