package errors

import stderrors "errors"

// Is and As forward to the standard library so callers can import a single errors package.
func Is(err, target error) bool { return stderrors.Is(err, target) }

func As(err error, target any) bool { return stderrors.As(err, target) }
