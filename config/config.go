// Package config loads AgentConfig from a YAML file via spf13/viper, with
// environment-variable overlay, grounded on this repository's existing
// viper-based FromYaml loader for training config.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Mode selects single-agent or cooperative operation.
type Mode string

const (
	SingleAgent Mode = "SingleAgent"
	CoOp Mode = "CoOp"
)

// LogLevel mirrors logLevel enum.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo LogLevel = "info"
	LogWarn LogLevel = "warn"
	LogError LogLevel = "error"
)

// AgentConfig is the recognised option set, plus PreemptionThreshold,
// UsePDDL and LoopInterval for the cooperative decision core.
//
// The yaml tags are lower-case because Load decodes viper's settings map,
// whose keys viper lower-cases; the config file itself may spell them in any
// case (API_HOST, usePddl, ...).
type AgentConfig struct {
	APIHost string `yaml:"api_host"`
	ClientToken string `yaml:"client_token"`
	TeamKey string `yaml:"team_key"`
	Mode Mode `yaml:"mode"`
	UsePDDL bool `yaml:"usepddl"`

	LoopInterval string `yaml:"loopinterval"`
	LogInterval string `yaml:"loginterval"`
	LogLevel LogLevel `yaml:"loglevel"`

	// PreemptionThreshold: a candidate option must clear the running
	// intention's utility by more than this margin before it preempts it,
	// rather than any bare ">" comparison.
	PreemptionThreshold float64 `yaml:"preemptionthreshold"`

	// StatusAddr is the listen address for the optional read-only status
	// endpoint (e.g. ":9090"). Empty disables it.
	StatusAddr string `yaml:"statusaddr"`
}

// defaults mirror what an un-set AgentConfig should behave as.
func defaults() AgentConfig {
	return AgentConfig{
		Mode: SingleAgent,
		LoopInterval: "1s",
		LogInterval: "5s",
		LogLevel: LogInfo,
		PreemptionThreshold: 0.05,
	}
}

// Load reads an AgentConfig from a YAML file at path, overlaid with any
// matching environment variables.
// Environment variable names are the upper-cased form of each YAML key,
// e.g. API_HOST, TEAM_KEY, MODE, USEPDDL; only keys present in the file are
// overlaid.
func Load(path string) (AgentConfig, error) {
	cfg := defaults()

	vp := viper.New()
	vp.SetConfigFile(path)
	vp.SetConfigType("yaml")
	vp.AddConfigPath(filepath.Dir(path))
	vp.AutomaticEnv()
	vp.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := vp.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}

	raw, err := yaml.Marshal(vp.AllSettings())
	if err != nil {
		return cfg, fmt.Errorf("config: re-marshal settings: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("config: unmarshal: %w", err)
	}

	return cfg, nil
}
