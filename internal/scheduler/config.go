package scheduler

import (
	"time"
)

// Config controls the sweep loop's fixed timings. The tunable part of the
// sweep (enabled flag, interval, lookback, batch size) lives in the watched
// transfer config and is re-read every poll.
type Config struct {
	PollInterval time.Duration
	SweepTimeout time.Duration
	StoreTimeout time.Duration
	LockTTL      time.Duration
}

func DefaultConfig() Config {
	return Config{
		PollInterval: time.Minute,
		SweepTimeout: 10 * time.Minute,
		StoreTimeout: 2 * time.Minute,
		LockTTL:      5 * time.Minute,
	}
}

func ProvideConfig() Config {
	return DefaultConfig()
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.PollInterval <= 0 {
		c.PollInterval = defaults.PollInterval
	}
	if c.SweepTimeout <= 0 {
		c.SweepTimeout = defaults.SweepTimeout
	}
	if c.StoreTimeout <= 0 {
		c.StoreTimeout = defaults.StoreTimeout
	}
	if c.LockTTL <= 0 {
		c.LockTTL = defaults.LockTTL
	}
	return c
}
