// Package quota tracks per-user daily feature usage in fixed day windows.
// Counters only count; deciding whether usage is allowed belongs to the tier
// resolver.
package quota

import (
	"context"
	"fmt"
	"time"
)

// Counter reports and advances a user's usage of a feature within a UTC day.
type Counter interface {
	// Usage returns the number of uses recorded for the day containing now.
	Usage(ctx context.Context, userID uint64, feature string, now time.Time) (int, error)
	// Increment records one use and returns the new count for the day.
	Increment(ctx context.Context, userID uint64, feature string, now time.Time) (int, error)
}

// dayKey formats the fixed-window key for a user, feature, and UTC day.
func dayKey(userID uint64, feature string, now time.Time) string {
	return fmt.Sprintf("%d:%s:%s", userID, feature, now.UTC().Format("2006-01-02"))
}

// secondsUntilNextDay returns the TTL for a day-window key with an hour of
// slack so a key never expires mid-read.
func secondsUntilNextDay(now time.Time) int64 {
	now = now.UTC()
	next := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	return int64(next.Sub(now).Seconds()) + 3600
}
