package utils

import (
	"strconv"

	"github.com/google/uuid"
)

var newUUIDv7 = uuid.NewV7

// GenerateUUIDv7 generates a new UUID v7
func GenerateUUIDv7() uuid.UUID {
	id, err := newUUIDv7()
	if err != nil {
		// Fallback to v4 if v7 fails (highly unlikely)
		return uuid.New()
	}
	return id
}

// NewFlowID returns a time-ordered id for a verification or binding flow instance.
func NewFlowID() string {
	return GenerateUUIDv7().String()
}

// IdempotencyKey derives a stable key for one submission attempt of a flow,
// so a transport-level replay of the same attempt reuses the same key.
func IdempotencyKey(flowID string, attempt int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(flowID+"#"+strconv.Itoa(attempt))).String()
}
