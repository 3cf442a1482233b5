package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	c := defaults()
	c.CheckInterval = 5 * time.Minute
	c.FetchTimeout = 30 * time.Second
	return c
}

func TestValidate_DefaultsAreValid(t *testing.T) {
	c := validConfig()
	if err := c.Validate(); err != nil {
		t.Fatalf("defaults must validate, got: %v", err)
	}
}

func TestValidate_FailFast(t *testing.T) {
	cases := []struct {
		name  string
		mutate func(*Config)
		want  string
	}{
		{"zero cooldown", func(c *Config) { c.Spike.Cooldown = 0 }, "cooldown"},
		{"negative cooldown", func(c *Config) { c.Dominance.Cooldown = -time.Minute }, "cooldown"},
		{"zero check interval", func(c *Config) { c.CheckInterval = 0 }, "check interval"},
		{"zero momentum count", func(c *Config) { c.Momentum.Count = 0 }, "momentum count"},
		{"zero increment", func(c *Config) { c.BTCRound.Increment = 0 }, "increment"},
		{"empty levels", func(c *Config) { c.ETHBTCLevels.Levels = nil }, "levels"},
		{"unsorted levels", func(c *Config) { c.ETHBTCLevels.Levels = []float64{0.05, 0.04} }, "sorted"},
		{"zero extremum window", func(c *Config) { c.BTCExtremum.WindowHours = 0 }, "extremum window"},
		{"bad divergence threshold", func(c *Config) { c.Divergence.Horizons[0].Threshold = 0 }, "divergence"},
		{"inverted funding levels", func(c *Config) { c.Derivatives.FundingVeryExtreme = 0.05 }, "funding"},
		{"inverted OI levels", func(c *Config) { c.Derivatives.OIExtreme = 10 }, "OI"},
		{"three dominance thresholds", func(c *Config) { c.Dominance.Thresholds = []float64{54, 56, 57.5} }, "4 thresholds"},
		{"unsorted dominance thresholds", func(c *Config) { c.Dominance.Thresholds = []float64{56, 54, 57.5, 58.5} }, "sorted"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := validConfig()
			tc.mutate(&c)

			err := c.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SPIKE_MIN_CHANGE", "1.5")
	if got := floatFromEnv("SPIKE_MIN_CHANGE", 0.6); got != 1.5 {
		t.Errorf("floatFromEnv = %v, want 1.5", got)
	}
	if got := floatFromEnv("SPIKE_MIN_CHANGE_UNSET", 0.6); got != 0.6 {
		t.Errorf("unset key must keep default, got %v", got)
	}

	t.Setenv("MOMENTUM_COUNT", "6")
	if got := intFromEnv("MOMENTUM_COUNT", 4); got != 6 {
		t.Errorf("intFromEnv = %v, want 6", got)
	}
	t.Setenv("MOMENTUM_COUNT", "six")
	if got := intFromEnv("MOMENTUM_COUNT", 4); got != 4 {
		t.Errorf("unparsable value must keep default, got %v", got)
	}
}
