package core

import (
	"time"

	"github.com/google/uuid"
)

// IDGenerator produces identifiers for companies and communications.
type IDGenerator interface {
	NewID() string
}

type uuidGenerator struct{}

// NewUUIDGenerator returns an IDGenerator backed by random UUIDs.
func NewUUIDGenerator() IDGenerator {
	return uuidGenerator{}
}

func (uuidGenerator) NewID() string {
	return uuid.NewString()
}

// Clock returns the current instant. It is injected wherever a default
// timestamp is needed so callers control "now" in tests.
type Clock func() time.Time

// SystemClock reads the wall clock in UTC.
func SystemClock() time.Time {
	return time.Now().UTC()
}
