package query

import "errors"

var (
	// ErrPoolUnavailable indicates the retrieval worker pool could not be
	// created or has been released.
	ErrPoolUnavailable = errors.New("retrieval worker pool unavailable")
)
