package reward

import "errors"

var (
	ErrInvalidAmount      = errors.New("invalid_amount")
	ErrInsufficientPoints = errors.New("insufficient_points")
	ErrUnknownItem        = errors.New("unknown_item")
	ErrUnknownSource      = errors.New("unknown_source")
	ErrInvalidActor       = errors.New("invalid_actor")
)

// Result reasons. A capped or protected outcome is a normal result, not an error.
const (
	ReasonDailyCapReached = "daily_cap_reached"
	ReasonLossProtection  = "loss_protection"
	ReasonNothingEarned   = "nothing_earned"
)
