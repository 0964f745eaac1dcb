package replay

import (
	"errors"
	"time"
)

var ErrReplayDetected = errors.New("replay attack detected")

const DefaultMaxAge time.Duration = 120 * time.Second

// Guard rejects deliveries whose device timestamp is too old relative to receipt.
// It is a freshness check only and says nothing about who sent the message.
type Guard struct {
	maxAge time.Duration
}

func NewGuard(maxAge time.Duration) Guard {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return Guard{maxAge: maxAge}
}

// Check returns ErrReplayDetected when receipt - device exceeds the max age.
// Timestamps from the future are accepted.
func (g Guard) Check(deviceTimestamp, receiptTimestamp time.Time) error {
	age := receiptTimestamp.UTC().Sub(deviceTimestamp.UTC())
	if age > g.maxAge {
		return ErrReplayDetected
	}
	return nil
}
