package model

import (
	"errors"
	"fmt"
)

// ErrFormat matches every FormatError via errors.Is.
var ErrFormat = errors.New("parle: malformed container")

// FormatError reports a container or payload that breaks the byte layout.
// Offset is relative to the buffer being decoded, -1 when not meaningful.
type FormatError struct {
	Offset int
	Reason string
}

func (e *FormatError) Error() string {
	if e.Offset < 0 {
		return fmt.Sprintf("%s: %s", ErrFormat, e.Reason)
	}
	return fmt.Sprintf("%s: %s at offset %d", ErrFormat, e.Reason, e.Offset)
}

func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

func NewFormatError(offset int, format string, args ...any) *FormatError {
	return &FormatError{Offset: offset, Reason: fmt.Sprintf(format, args...)}
}

func IsFormatError(err error) bool {
	return errors.Is(err, ErrFormat)
}
