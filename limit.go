package doccache

import "time"

// LimitResult is the outcome of a rate-limit admission check.
type LimitResult struct {
	Allowed bool `json:"allowed"`

	// Remaining is the number of whole tokens left after this check.
	Remaining int `json:"remaining"`

	// RetryAfter is set on denial: the time until the next token is
	// available. Always positive when Allowed is false.
	RetryAfter time.Duration `json:"retryAfter"`
}

// ClientLimiter admits or denies operations per client id.
type ClientLimiter interface {
	Check(clientID string) LimitResult
}
