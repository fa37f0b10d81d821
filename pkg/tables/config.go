package tables

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds output table storage parameters.
type Config struct {
	BaseDir      string `toml:"base_dir"`
	SplitPatient bool   `toml:"split_patient"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	BaseDir      string
	SplitPatient string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.BaseDir != "" {
		c.BaseDir = overlay.BaseDir
	}
	if overlay.SplitPatient {
		c.SplitPatient = true
	}
}

func (c *Config) loadDefaults() {
	if c.BaseDir == "" {
		if wd, err := os.Getwd(); err == nil {
			c.BaseDir = wd
		}
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.BaseDir != "" {
		if v := os.Getenv(env.BaseDir); v != "" {
			c.BaseDir = v
		}
	}
	if env.SplitPatient != "" {
		if v := os.Getenv(env.SplitPatient); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				c.SplitPatient = b
			}
		}
	}
}

func (c *Config) validate() error {
	if c.BaseDir == "" {
		return fmt.Errorf("base_dir required")
	}
	return nil
}
