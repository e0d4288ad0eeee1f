package auth

import "time"

// Defaults for the Nuance Mix authorization server. The token endpoint
// allows 50 requests per minute per IP address; the retry defaults keep
// trying for about a minute.
const (
	DefaultTokenURL      = "https://auth.crt.nuance.com/oauth2/token"
	DefaultMaxRetries    = 6
	DefaultRetryDelaySec = 10
)

// DefaultScopes are the scopes needed by the dialog and NLU runtimes.
var DefaultScopes = []string{"dlg", "nlu"}

// Config holds the client credentials and retry policy used to acquire
// access tokens.
type Config struct {
	TokenURL      string   `json:"token_url,omitempty" yaml:"token_url,omitempty"`
	ClientID      string   `json:"client_id,omitempty" yaml:"client_id,omitempty"`
	ClientSecret  string   `json:"client_secret,omitempty" yaml:"client_secret,omitempty"`
	Scopes        []string `json:"scopes,omitempty" yaml:"scopes,omitempty"`
	MaxRetries    int      `json:"max_retries,omitempty" yaml:"max_retries,omitempty"`
	RetryDelaySec int      `json:"retry_delay_sec,omitempty" yaml:"retry_delay_sec,omitempty"`
}

// DefaultConfig returns a Config with the Nuance Mix defaults and no
// credentials.
func DefaultConfig() Config {
	return Config{
		TokenURL:      DefaultTokenURL,
		Scopes:        append([]string(nil), DefaultScopes...),
		MaxRetries:    DefaultMaxRetries,
		RetryDelaySec: DefaultRetryDelaySec,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.TokenURL != "" {
		c.TokenURL = source.TokenURL
	}
	if source.ClientID != "" {
		c.ClientID = source.ClientID
	}
	if source.ClientSecret != "" {
		c.ClientSecret = source.ClientSecret
	}
	if len(source.Scopes) > 0 {
		c.Scopes = source.Scopes
	}
	if source.MaxRetries > 0 {
		c.MaxRetries = source.MaxRetries
	}
	if source.RetryDelaySec > 0 {
		c.RetryDelaySec = source.RetryDelaySec
	}
}

// RetryDelay returns the delay between rate-limited attempts.
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelaySec) * time.Second
}

// Credentials returns the client credentials described by the config.
func (c *Config) Credentials() ClientCredentials {
	return ClientCredentials{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Scopes:       c.Scopes,
	}
}
