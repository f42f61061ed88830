// internal/daily/clock.go
//
// Puzzle clock for the daily rotation.
// Maps wall-clock time onto a puzzle index: the number of whole buckets
// elapsed since a fixed epoch. Production uses one-day buckets; testing
// mode uses short buckets anchored at the start of the current hour so a
// developer sees a new word every minute.
//
// Times before the epoch clamp to index 0.

package daily

import (
	"errors"
	"time"
)

const (
	// DefaultEpoch is the local date the first puzzle went live.
	DefaultEpoch = "2025-07-14T00:00:00"

	// Day is the production bucket length.
	Day = 24 * time.Hour
)

// Config controls how time is bucketed.
type Config struct {
	Epoch  time.Time     // start of puzzle 0
	Bucket time.Duration // length of one puzzle
}

// Clock turns instants into puzzle indices.
type Clock struct {
	cfg Config
}

// New validates cfg and returns a Clock.
func New(cfg Config) (*Clock, error) {
	if cfg.Bucket <= 0 {
		return nil, errors.New("daily: bucket duration must be positive")
	}
	if cfg.Epoch.IsZero() {
		return nil, errors.New("daily: epoch is required")
	}
	return &Clock{cfg: cfg}, nil
}

// Production returns the daily configuration starting at epoch.
func Production(epoch time.Time) Config {
	return Config{Epoch: epoch, Bucket: Day}
}

// Testing returns a rapid-rotation configuration: buckets of the given
// length counted from the top of the hour containing now.
func Testing(now time.Time, bucket time.Duration) Config {
	if bucket <= 0 {
		bucket = time.Minute
	}
	return Config{Epoch: now.Truncate(time.Hour), Bucket: bucket}
}

// ParseEpoch parses a local "2006-01-02T15:04:05" timestamp.
func ParseEpoch(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation("2006-01-02T15:04:05", s, loc)
}

// Config returns the clock configuration.
func (c *Clock) Config() Config { return c.cfg }

// Index returns the puzzle index for now.
// The elapsed time is floored to whole buckets, so every instant inside a
// bucket yields the same index.
func (c *Clock) Index(now time.Time) int {
	elapsed := now.Sub(c.cfg.Epoch)
	if elapsed < 0 {
		return 0
	}
	return int(elapsed / c.cfg.Bucket)
}

// BucketStart returns the instant puzzle idx begins.
func (c *Clock) BucketStart(idx int) time.Time {
	if idx < 0 {
		idx = 0
	}
	return c.cfg.Epoch.Add(time.Duration(idx) * c.cfg.Bucket)
}

// Remaining reports how long until the next puzzle starts.
func (c *Clock) Remaining(now time.Time) time.Duration {
	next := c.BucketStart(c.Index(now) + 1)
	return next.Sub(now)
}
