package rewards

import "errors"

var (
	ErrInvalidRequest = errors.New("invalid_request")
	ErrActorNotFound  = errors.New("actor_not_found")
)
