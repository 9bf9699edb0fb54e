package dme

import "errors"

// Precondition violations are fatal programming bugs (spec §7): callers
// that double-acquire or release without holding the CS get a panic, not
// an error return. cmd/dme-node does not recover these panics, so one
// ends the process.
var (
	ErrDoubleAcquire         = errors.New("dme: acquire() called while state != RELEASED")
	ErrReleaseWithoutAcquire = errors.New("dme: release() called while state != HELD")
)
