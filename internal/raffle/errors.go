package raffle

import "errors"

// Error kinds surfaced to the user. Callers wrap them with detail using
// fmt.Errorf("%w: ...") and match with errors.Is.
var (
	ErrEmptyInput   = errors.New("no input content")
	ErrEmptyPool    = errors.New("no eligible entries to draw from")
	ErrRemoteFetch  = errors.New("remote fetch failed")
	ErrParse        = errors.New("cannot parse input")
	ErrInvalidRules = errors.New("invalid rules")
)
