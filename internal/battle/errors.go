package battle

import "errors"

var (
	ErrInvalidRoom      = errors.New("invalid_room")
	ErrNotAuthorized    = errors.New("not_authorized")
	ErrCapacityExceeded = errors.New("capacity_exceeded")
	ErrWrongState       = errors.New("wrong_state")
	ErrNoPendingInvite  = errors.New("no_pending_invite")
	ErrInvalidInput     = errors.New("invalid_input")
	ErrNoFreeCode       = errors.New("no_free_room_code")
)
