package errors

import "errors"

// Thin re-exports so callers of this package don't need to import both
// stdlib errors and this one.

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// New returns an error with the given text.
func New(text string) error {
	return errors.New(text)
}
