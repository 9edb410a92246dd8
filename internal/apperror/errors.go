package apperror

import (
	"errors"
	"fmt"
)

// Structural error taxonomy. Provider-layer failures (embedding, completion)
// are deliberately NOT part of this set: the pipeline degrades instead of
// surfacing them.
var (
	ErrNotFound          = errors.New("resource not found")
	ErrConflict          = errors.New("resource conflict")
	ErrExtractionFailure = errors.New("no content could be extracted")
)

func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func Conflictf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

func ExtractionFailuref(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrExtractionFailure, fmt.Sprintf(format, args...))
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

func IsExtractionFailure(err error) bool {
	return errors.Is(err, ErrExtractionFailure)
}
