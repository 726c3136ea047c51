package mock

import "github.com/fwojciec/doccache"

var _ doccache.ClientLimiter = (*ClientLimiter)(nil)

// ClientLimiter is a mock implementation of doccache.ClientLimiter.
type ClientLimiter struct {
	CheckFn func(clientID string) doccache.LimitResult
}

func (l *ClientLimiter) Check(clientID string) doccache.LimitResult {
	return l.CheckFn(clientID)
}
