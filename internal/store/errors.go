package store

import "errors"

// Error kinds returned by Store implementations. Callers match with
// errors.Is; ErrValidation and ErrDuplicate are client-caused, the rest
// map to server-side failures.
var (
	ErrConnection = errors.New("store: cannot reach the database")
	ErrValidation = errors.New("store: missing required field")
	ErrDuplicate  = errors.New("store: record already exists")
	ErrFetch      = errors.New("store: fetch failed")
	ErrInsert     = errors.New("store: insert failed")
)
