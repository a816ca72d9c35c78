package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GenerateOrderID generates a unique order id for orders created without a
// checkout session: a timestamp plus a short random suffix.
func GenerateOrderID() string {
	id := uuid.New().String()

	return fmt.Sprintf("ord-%d-%s", time.Now().UnixMilli(), id[:8])
}

// GetCurrentTime returns the current time in UTC.
func GetCurrentTime() time.Time {
	return time.Now().UTC()
}
