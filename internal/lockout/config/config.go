// Package config holds the lockout engine's tunables.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"authguard/internal/lockout/models"
	dErrors "authguard/pkg/domain-errors"
)

// FailMode decides what callers do when the ledger cannot be reached.
type FailMode string

const (
	FailClosed FailMode = "closed" // deny the attempt
	FailOpen   FailMode = "open"   // allow the attempt and flag the verdict as degraded
)

func ParseFailMode(s string) (FailMode, error) {
	switch FailMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", FailClosed:
		return FailClosed, nil
	case FailOpen:
		return FailOpen, nil
	}
	return "", dErrors.New(dErrors.CodeMisconfigured, fmt.Sprintf("unknown fail mode %q", s))
}

// Limits is the threshold pair the policy evaluates against.
type Limits struct {
	MaxAttempts     int           // 5 failures trigger a lock
	LockoutDuration time.Duration // 15 minutes, fixed from the triggering failure
}

// Config holds lockout configuration.
type Config struct {
	Default   Limits
	Overrides map[models.OperationType]Limits

	FailMode          FailMode
	DiscloseRemaining bool

	// Compaction deletes records whose lock lapsed more than CompactionGrace ago.
	CompactionInterval time.Duration
	CompactionGrace    time.Duration
}

// DefaultConfig returns the defaults: 5 attempts, 15 minute lock, fail closed.
func DefaultConfig() *Config {
	return &Config{
		Default: Limits{
			MaxAttempts:     5,
			LockoutDuration: 15 * time.Minute,
		},
		Overrides:          map[models.OperationType]Limits{},
		FailMode:           FailClosed,
		DiscloseRemaining:  true,
		CompactionInterval: 15 * time.Minute,
		CompactionGrace:    24 * time.Hour,
	}
}

// LimitsFor returns the limits for op, falling back to Default.
func (c *Config) LimitsFor(op models.OperationType) Limits {
	if l, ok := c.Overrides[op]; ok {
		return l
	}
	return c.Default
}

// WithOverride sets per-operation limits.
func (c *Config) WithOverride(op models.OperationType, l Limits) *Config {
	if c.Overrides == nil {
		c.Overrides = map[models.OperationType]Limits{}
	}
	c.Overrides[op] = l
	return c
}

func (l Limits) Validate() error {
	if l.MaxAttempts < 1 {
		return dErrors.New(dErrors.CodeMisconfigured, "max attempts must be at least 1")
	}
	if l.LockoutDuration <= 0 {
		return dErrors.New(dErrors.CodeMisconfigured, "lockout duration must be positive")
	}
	return nil
}

// Validate rejects configurations the engine cannot enforce.
func (c *Config) Validate() error {
	if err := c.Default.Validate(); err != nil {
		return err
	}
	for op, l := range c.Overrides {
		if !op.IsValid() {
			return dErrors.New(dErrors.CodeMisconfigured, fmt.Sprintf("override for unknown operation %q", op))
		}
		if err := l.Validate(); err != nil {
			return dErrors.Wrap(err, dErrors.CodeMisconfigured, fmt.Sprintf("override for %s: %s", op, err.Error()))
		}
	}
	if c.FailMode != FailClosed && c.FailMode != FailOpen {
		return dErrors.New(dErrors.CodeMisconfigured, fmt.Sprintf("unknown fail mode %q", c.FailMode))
	}
	if c.CompactionInterval < 0 || c.CompactionGrace < 0 {
		return dErrors.New(dErrors.CodeMisconfigured, "compaction settings must not be negative")
	}
	return nil
}

// ParseOverrides reads per-operation limits in the form
// "password_reset=3/1h,mfa_challenge=10/30m". An empty string yields no overrides.
func ParseOverrides(s string) (map[models.OperationType]Limits, error) {
	out := map[models.OperationType]Limits{}
	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, rule, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, dErrors.New(dErrors.CodeMisconfigured, fmt.Sprintf("override %q: expected op=max/duration", entry))
		}
		op, err := models.ParseOperationType(name)
		if err != nil {
			return nil, dErrors.Translate(err, dErrors.CodeMisconfigured, fmt.Sprintf("override %q: unknown operation", entry))
		}
		maxStr, durStr, ok := strings.Cut(rule, "/")
		if !ok {
			return nil, dErrors.New(dErrors.CodeMisconfigured, fmt.Sprintf("override %q: expected op=max/duration", entry))
		}
		maxAttempts, err := strconv.Atoi(strings.TrimSpace(maxStr))
		if err != nil {
			return nil, dErrors.Translate(err, dErrors.CodeMisconfigured, fmt.Sprintf("override %q: bad max attempts", entry))
		}
		d, err := time.ParseDuration(strings.TrimSpace(durStr))
		if err != nil {
			return nil, dErrors.Translate(err, dErrors.CodeMisconfigured, fmt.Sprintf("override %q: bad duration", entry))
		}
		l := Limits{MaxAttempts: maxAttempts, LockoutDuration: d}
		if err := l.Validate(); err != nil {
			return nil, err
		}
		out[op] = l
	}
	return out, nil
}
