package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authguard/internal/lockout/models"
	dErrors "authguard/pkg/domain-errors"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 5, cfg.Default.MaxAttempts)
	assert.Equal(t, 15*time.Minute, cfg.Default.LockoutDuration)
	assert.Equal(t, FailClosed, cfg.FailMode)
	assert.True(t, cfg.DiscloseRemaining)
}

func TestLimitsFor(t *testing.T) {
	cfg := DefaultConfig().WithOverride(models.OperationPasswordReset, Limits{MaxAttempts: 3, LockoutDuration: time.Hour})

	assert.Equal(t, 3, cfg.LimitsFor(models.OperationPasswordReset).MaxAttempts)
	assert.Equal(t, cfg.Default, cfg.LimitsFor(models.OperationSignIn))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero max attempts", func(c *Config) { c.Default.MaxAttempts = 0 }},
		{"zero lockout duration", func(c *Config) { c.Default.LockoutDuration = 0 }},
		{"unknown fail mode", func(c *Config) { c.FailMode = "maybe" }},
		{"negative grace", func(c *Config) { c.CompactionGrace = -time.Second }},
		{"override for unknown operation", func(c *Config) {
			c.Overrides[models.OperationType("bogus")] = c.Default
		}},
		{"invalid override", func(c *Config) {
			c.Overrides[models.OperationSignUp] = Limits{MaxAttempts: 0, LockoutDuration: time.Minute}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeMisconfigured))
		})
	}
}

func TestParseFailMode(t *testing.T) {
	for in, want := range map[string]FailMode{"": FailClosed, "closed": FailClosed, " OPEN ": FailOpen} {
		got, err := ParseFailMode(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFailMode("sideways")
	assert.Error(t, err)
}

func TestParseOverrides(t *testing.T) {
	got, err := ParseOverrides(" password_reset=3/1h, mfa_challenge=10/30m ,")
	require.NoError(t, err)
	assert.Equal(t, map[models.OperationType]Limits{
		models.OperationPasswordReset: {MaxAttempts: 3, LockoutDuration: time.Hour},
		models.OperationMFAChallenge:  {MaxAttempts: 10, LockoutDuration: 30 * time.Minute},
	}, got)

	empty, err := ParseOverrides("")
	require.NoError(t, err)
	assert.Empty(t, empty)

	for _, bad := range []string{"sign_in", "sign_in=3", "nope=3/1h", "sign_in=x/1h", "sign_in=3/soon", "sign_in=0/1h"} {
		_, err := ParseOverrides(bad)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeMisconfigured), bad)
	}
}
