package domain

import (
	"errors"
	"fmt"
)

// Error kinds shared by every adapter. Transports map them to status codes.
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrProcessNotFound  = errors.New("process not found")
	ErrCatalog          = errors.New("catalog unavailable")
	ErrIndexUnavailable = errors.New("index unavailable")
	ErrQueueUnavailable = errors.New("rebuild queue unavailable")
	ErrTemporary        = errors.New("temporary failure")
)

var kinds = []struct {
	err  error
	name string
}{
	{ErrInvalidInput, "invalid_input"},
	{ErrProcessNotFound, "process_not_found"},
	{ErrCatalog, "catalog"},
	{ErrIndexUnavailable, "index_unavailable"},
	{ErrQueueUnavailable, "queue_unavailable"},
	{ErrTemporary, "temporary"},
}

// WrapError reads "<operation>: <kind>: <cause>" and matches both kind and cause with errors.Is.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

// Errorf is WrapError with a formatted cause.
func Errorf(kind error, operation, format string, args ...any) error {
	return WrapError(kind, operation, fmt.Errorf(format, args...))
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

// KindName is the snake_case label of the first known kind in err's chain, "internal" otherwise.
func KindName(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "internal"
}
