package collector

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig is returned when a Config cannot bound a collection run.
var ErrInvalidConfig = errors.New("invalid collector config")

const (
	DefaultStagnationLimit = 3
	DefaultMaxPasses       = 50
	DefaultSettleDelay     = 2 * time.Second
)

// Config bounds one collection run. Zero MaxRecords, MaxPasses or
// MaxDuration mean unbounded; at least the stagnation limit always applies.
type Config struct {
	// StagnationLimit is the number of consecutive passes adding no records
	// after which the run stops.
	StagnationLimit int
	MaxRecords      int
	MaxPasses       int
	// SettleDelay is the wait after each trigger before the next scan.
	SettleDelay time.Duration
	MaxDuration time.Duration
}

// DefaultConfig returns the bounds used when a caller has no preference.
func DefaultConfig() Config {
	return Config{
		StagnationLimit: DefaultStagnationLimit,
		MaxPasses:       DefaultMaxPasses,
		SettleDelay:     DefaultSettleDelay,
	}
}

// Validate rejects values that cannot be honoured.
func (c Config) Validate() error {
	switch {
	case c.StagnationLimit < 1:
		return fmt.Errorf("%w: stagnation limit must be at least 1, got %d", ErrInvalidConfig, c.StagnationLimit)
	case c.MaxRecords < 0:
		return fmt.Errorf("%w: max records must not be negative, got %d", ErrInvalidConfig, c.MaxRecords)
	case c.MaxPasses < 0:
		return fmt.Errorf("%w: max passes must not be negative, got %d", ErrInvalidConfig, c.MaxPasses)
	case c.SettleDelay < 0:
		return fmt.Errorf("%w: settle delay must not be negative, got %s", ErrInvalidConfig, c.SettleDelay)
	case c.MaxDuration < 0:
		return fmt.Errorf("%w: max duration must not be negative, got %s", ErrInvalidConfig, c.MaxDuration)
	}
	return nil
}
