package collection

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindFetch Kind = iota + 1
	KindDelete
)

func (k Kind) String() string {
	switch k {
	case KindFetch:
		return "fetch"
	case KindDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Error reports a failed fetch or delete. State is never mutated when one is
// returned.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

var (
	// ErrStale is returned for a fetch that was issued before a delete
	// landed. Its result was not applied.
	ErrStale = errors.New("stale response discarded")

	ErrInvalidWindow = errors.New("page must be >= 0 and page size > 0")
)

func IsFetch(err error) bool {
	return isKind(err, KindFetch)
}

func IsDelete(err error) bool {
	return isKind(err, KindDelete)
}

func isKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
