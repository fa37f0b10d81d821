package terminology

import (
	"fmt"
	"os"
	"time"
)

// Defaults for the terminology collaborators.
const (
	DefaultRxNavBaseURL = "https://rxnav.nlm.nih.gov/REST"
	DefaultICDBaseURL   = "https://id.who.int"
	DefaultICDTokenURL  = "https://icdaccessmanagement.who.int/connect/token"
	DefaultTimeout      = "60s"
)

// Config holds connection parameters for the terminology collaborators.
// Snowstorm is optional (empty base URL disables procedure lookup); the WHO
// ICD API requires client-credentials authentication; RxNav needs none.
type Config struct {
	RxNavBaseURL     string `toml:"rxnav_base_url"`
	SnowstormBaseURL string `toml:"snowstorm_base_url"`
	ICDBaseURL       string `toml:"icd_base_url"`
	ICDTokenURL      string `toml:"icd_token_url"`
	ICDClientID      string `toml:"icd_client_id"`
	ICDClientSecret  string `toml:"icd_client_secret"`
	Timeout          string `toml:"timeout"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	RxNavBaseURL     string
	SnowstormBaseURL string
	ICDBaseURL       string
	ICDTokenURL      string
	ICDClientID      string
	ICDClientSecret  string
	Timeout          string
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
	if overlay.RxNavBaseURL != "" {
		c.RxNavBaseURL = overlay.RxNavBaseURL
	}
	if overlay.SnowstormBaseURL != "" {
		c.SnowstormBaseURL = overlay.SnowstormBaseURL
	}
	if overlay.ICDBaseURL != "" {
		c.ICDBaseURL = overlay.ICDBaseURL
	}
	if overlay.ICDTokenURL != "" {
		c.ICDTokenURL = overlay.ICDTokenURL
	}
	if overlay.ICDClientID != "" {
		c.ICDClientID = overlay.ICDClientID
	}
	if overlay.ICDClientSecret != "" {
		c.ICDClientSecret = overlay.ICDClientSecret
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

func (c *Config) loadDefaults() {
	if c.RxNavBaseURL == "" {
		c.RxNavBaseURL = DefaultRxNavBaseURL
	}
	if c.ICDBaseURL == "" {
		c.ICDBaseURL = DefaultICDBaseURL
	}
	if c.ICDTokenURL == "" {
		c.ICDTokenURL = DefaultICDTokenURL
	}
	if c.Timeout == "" {
		c.Timeout = DefaultTimeout
	}
}

func (c *Config) loadEnv(env *Env) {
	set := func(envVar string, field *string) {
		if envVar == "" {
			return
		}
		if v := os.Getenv(envVar); v != "" {
			*field = v
		}
	}

	set(env.RxNavBaseURL, &c.RxNavBaseURL)
	set(env.SnowstormBaseURL, &c.SnowstormBaseURL)
	set(env.ICDBaseURL, &c.ICDBaseURL)
	set(env.ICDTokenURL, &c.ICDTokenURL)
	set(env.ICDClientID, &c.ICDClientID)
	set(env.ICDClientSecret, &c.ICDClientSecret)
	set(env.Timeout, &c.Timeout)
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("timeout: %w", err)
	}
	return nil
}
