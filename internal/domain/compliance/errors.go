package compliance

import "errors"

var (
	ErrScoreMismatch       = errors.New("overall score does not match breakdown sum")
	ErrBreakdownOutOfRange = errors.New("breakdown value outside category weight bounds")
	ErrStatusMismatch      = errors.New("status does not match overall score")
)
