package utils

import "errors"

// Domain failure taxonomy. Services return these (possibly wrapped) and
// handlers translate them into HTTP responses without leaking store detail.
var (
	ErrNotFound               = errors.New("entity not found")
	ErrInvalidTransition      = errors.New("operation not legal from current state")
	ErrConcurrentModification = errors.New("conditional write lost a race")
	ErrDriverBusy             = errors.New("driver holds an active assignment")
	ErrAlreadyFinalized       = errors.New("request already completed or canceled")
	ErrInvalidCoordinate      = errors.New("coordinate out of range")
	ErrUnauthenticated        = errors.New("actor required but absent")
	ErrStoreUnavailable       = errors.New("store unavailable")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConcurrentModification) || errors.Is(err, ErrDriverBusy)
}
