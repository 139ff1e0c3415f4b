package domain

import "errors"

// Sentinel errors surfaced by the queue core. Transport maps them to
// user-facing responses; everything else is treated as an internal failure.
var (
	ErrAlreadyQueued = errors.New("actor already has an active queue entry")
	ErrNotQueued     = errors.New("actor has no active queue entry")
	ErrIneligible    = errors.New("actor holds neither queue capability")
)
