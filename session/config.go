package session

// Default routing selector values used by Nuance Mix when none are configured.
const (
	DefaultChannel  = "default"
	DefaultLanguage = "en-US"
	DefaultLibrary  = "default"
)

// Config holds the parameters sent when a dialog session is opened. Selector
// fields are included verbatim on every Start and Execute call; the rest are
// passed through to Start only.
type Config struct {
	Channel             string            `json:"channel,omitempty" yaml:"channel,omitempty"`
	Language            string            `json:"language,omitempty" yaml:"language,omitempty"`
	Library             string            `json:"library,omitempty" yaml:"library,omitempty"`
	SessionID           string            `json:"session_id,omitempty" yaml:"session_id,omitempty"`
	TimeoutSec          int               `json:"timeout_sec,omitempty" yaml:"timeout_sec,omitempty"`
	UserID              string            `json:"user_id,omitempty" yaml:"user_id,omitempty"`
	InitialContext      map[string]any    `json:"initial_context,omitempty" yaml:"initial_context,omitempty"`
	ClientData          map[string]string `json:"client_data,omitempty" yaml:"client_data,omitempty"`
	SuppressLogUserData bool              `json:"suppress_log_user_data,omitempty" yaml:"suppress_log_user_data,omitempty"`
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	return Config{
		Channel:  DefaultChannel,
		Language: DefaultLanguage,
		Library:  DefaultLibrary,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Channel != "" {
		c.Channel = source.Channel
	}
	if source.Language != "" {
		c.Language = source.Language
	}
	if source.Library != "" {
		c.Library = source.Library
	}
	if source.SessionID != "" {
		c.SessionID = source.SessionID
	}
	if source.TimeoutSec > 0 {
		c.TimeoutSec = source.TimeoutSec
	}
	if source.UserID != "" {
		c.UserID = source.UserID
	}
	if len(source.InitialContext) > 0 {
		c.InitialContext = source.InitialContext
	}
	if len(source.ClientData) > 0 {
		c.ClientData = source.ClientData
	}
	if source.SuppressLogUserData {
		c.SuppressLogUserData = true
	}
}

// Selector returns the routing selector described by the configuration.
func (c *Config) Selector() Selector {
	return Selector{
		Channel:  c.Channel,
		Language: c.Language,
		Library:  c.Library,
	}
}

// New creates an idle Session routed by the configured selector.
func New(cfg *Config) *Session {
	return &Session{selector: cfg.Selector()}
}
