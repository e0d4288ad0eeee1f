package connector

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/codeforequity-at/botium-connector-nuance/auth"
	"github.com/codeforequity-at/botium-connector-nuance/entity"
	"github.com/codeforequity-at/botium-connector-nuance/session"
	"github.com/codeforequity-at/botium-connector-nuance/transport"
)

const (
	defaultNLULanguage = "eng-USA"
	defaultTurnDelayMs = 1000
)

// Config holds initialization parameters for the connector and its
// subsystems. Each subsystem section delegates to that subsystem's config.
type Config struct {
	Auth    auth.Config      `json:"auth" yaml:"auth"`
	Session session.Config   `json:"session" yaml:"session"`
	Dialog  transport.Config `json:"dialog" yaml:"dialog"`
	NLU     transport.Config `json:"nlu" yaml:"nlu"`

	// ContextTag names the Mix application configuration whose dialog and
	// NLU models serve the session.
	ContextTag      string `json:"context_tag,omitempty" yaml:"context_tag,omitempty"`
	NLULanguage     string `json:"nlu_language,omitempty" yaml:"nlu_language,omitempty"`
	SkipWelcome     bool   `json:"skip_welcome,omitempty" yaml:"skip_welcome,omitempty"`
	NLPAnalytics    bool   `json:"nlp_analytics,omitempty" yaml:"nlp_analytics,omitempty"`
	EntityValueMode string `json:"entity_value_mode,omitempty" yaml:"entity_value_mode,omitempty"`
	// TurnDelayMs is the delay before each user turn is issued. A negative
	// value disables pacing.
	TurnDelayMs int `json:"turn_delay_ms,omitempty" yaml:"turn_delay_ms,omitempty"`
}

// DefaultConfig returns a Config with defaults for all subsystems and no
// credentials.
func DefaultConfig() Config {
	return Config{
		Auth:            auth.DefaultConfig(),
		Session:         session.DefaultConfig(),
		Dialog:          transport.DefaultDialogConfig(),
		NLU:             transport.DefaultNLUConfig(),
		NLULanguage:     defaultNLULanguage,
		EntityValueMode: string(entity.ForceLiteral),
		TurnDelayMs:     defaultTurnDelayMs,
	}
}

// Merge applies non-zero values from source into c, delegating to each
// subsystem's Merge method.
func (c *Config) Merge(source *Config) {
	c.Auth.Merge(&source.Auth)
	c.Session.Merge(&source.Session)
	c.Dialog.Merge(&source.Dialog)
	c.NLU.Merge(&source.NLU)

	if source.ContextTag != "" {
		c.ContextTag = source.ContextTag
	}
	if source.NLULanguage != "" {
		c.NLULanguage = source.NLULanguage
	}
	if source.SkipWelcome {
		c.SkipWelcome = true
	}
	if source.NLPAnalytics {
		c.NLPAnalytics = true
	}
	if source.EntityValueMode != "" {
		c.EntityValueMode = source.EntityValueMode
	}
	if source.TurnDelayMs != 0 {
		c.TurnDelayMs = source.TurnDelayMs
	}
}

// TurnDelay returns the delay before each user turn.
func (c *Config) TurnDelay() time.Duration {
	if c.TurnDelayMs <= 0 {
		return 0
	}
	return time.Duration(c.TurnDelayMs) * time.Millisecond
}

// Validate reports every missing or malformed required setting. The
// returned error wraps ErrValidation.
func (c *Config) Validate() error {
	var problems []string
	if c.Auth.ClientID == "" {
		problems = append(problems, "auth.client_id is required")
	}
	if c.Auth.ClientSecret == "" {
		problems = append(problems, "auth.client_secret is required")
	}
	if c.ContextTag == "" {
		problems = append(problems, "context_tag is required")
	}
	if c.Session.Channel == "" {
		problems = append(problems, "session.channel is required")
	}
	if _, err := entity.ParseValueMode(c.EntityValueMode); err != nil {
		problems = append(problems, err.Error())
	}
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(problems, "; "))
}

// LoadConfig reads a JSON or YAML config file, merges it with defaults, and
// returns the resulting Config. Files ending in .yaml or .yml are parsed as
// YAML; anything else as JSON.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &loaded)
	default:
		err = json.Unmarshal(data, &loaded)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}
