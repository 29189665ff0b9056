package problem

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by the loader, the filter/selection layer and the
// annotation assembler. Callers classify with errors.Is.
var (
	ErrNotFound    = errors.New("not found")
	ErrParse       = errors.New("parse error")
	ErrIO          = errors.New("io error")
	ErrValidation  = errors.New("validation error")
	ErrNoSelection = errors.New("no selection possible")
)

// Warning is a per-file failure that did not abort a collection load.
type Warning struct {
	Path string
	Err  error
}

func (w Warning) Error() string { return fmt.Sprintf("%s: %v", w.Path, w.Err) }

func (w Warning) Unwrap() error { return w.Err }
