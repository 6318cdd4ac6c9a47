package domain

import "errors"

// Sentinel errors shared across services. Business outcomes such as a full
// event or a duplicate registration are modelled as errors so controllers can
// map them to distinct responses.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
)
