// Package config loads MedMiner configuration: a TOML base file, an
// optional environment overlay, environment variable overrides, then
// validation. CLI flag overrides are applied by the command layer on top of
// the loaded config before finalization.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/aidh-ms/MedMiner/internal/terminology"
	"github.com/aidh-ms/MedMiner/pkg/tables"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvMedMinerEnv = "MEDMINER_ENV"
)

var tablesEnv = &tables.Env{
	BaseDir:      "MEDMINER_BASE_DIR",
	SplitPatient: "MEDMINER_SPLIT_PATIENT",
}

var terminologyEnv = &terminology.Env{
	RxNavBaseURL:     "MEDMINER_RXNAV_BASE_URL",
	SnowstormBaseURL: "MEDMINER_SNOWSTORM_BASE_URL",
	ICDBaseURL:       "MEDMINER_ICD_BASE_URL",
	ICDTokenURL:      "MEDMINER_ICD_TOKEN_URL",
	ICDClientID:      "MEDMINER_ICD_CLIENT_ID",
	ICDClientSecret:  "MEDMINER_ICD_CLIENT_SECRET",
	Timeout:          "MEDMINER_TERMINOLOGY_TIMEOUT",
}

// Config is the root configuration for MedMiner.
type Config struct {
	Agent       gaconfig.AgentConfig `toml:"agent"`
	Tables      tables.Config        `toml:"tables"`
	Terminology terminology.Config   `toml:"terminology"`
}

// Env returns the MEDMINER_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvMedMinerEnv); env != "" {
		return env
	}
	return "local"
}

// Load reads the base config (if present) and applies any environment
// overlay. Finalization is deferred to Finalize so the command layer can
// apply flag overrides in between.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	c.Agent.Merge(&overlay.Agent)
	c.Tables.Merge(&overlay.Tables)
	c.Terminology.Merge(&overlay.Terminology)
}

// Finalize applies defaults, environment variable overrides, and validation
// to every sub-config.
func (c *Config) Finalize() error {
	if err := FinalizeAgent(&c.Agent); err != nil {
		return fmt.Errorf("agent: %w", err)
	}
	if err := c.Tables.Finalize(tablesEnv); err != nil {
		return fmt.Errorf("tables: %w", err)
	}
	if err := c.Terminology.Finalize(terminologyEnv); err != nil {
		return fmt.Errorf("terminology: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvMedMinerEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
