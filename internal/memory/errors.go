package memory

import "github.com/pkg/errors"

var (
	// ErrExhausted indicates that a pool or region ran out of its configured capacity.
	ErrExhausted = errors.New("memory: out of memory")

	// ErrBadFree indicates a free of a buffer the pool did not hand out, or a double free.
	ErrBadFree = errors.New("memory: free of unknown buffer")

	// ErrBadTruncate indicates a truncate offset outside [0, used].
	ErrBadTruncate = errors.New("memory: truncate offset out of range")

	// ErrBadSize indicates a non-positive object size, page size or alignment.
	ErrBadSize = errors.New("memory: invalid size")
)
