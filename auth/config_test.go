package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/codeforequity-at/botium-connector-nuance/auth"
)

func TestDefaultConfig(t *testing.T) {
	cfg := auth.DefaultConfig()

	assert.Equal(t, auth.DefaultTokenURL, cfg.TokenURL)
	assert.Equal(t, []string{"dlg", "nlu"}, cfg.Scopes)
	assert.Equal(t, 6, cfg.MaxRetries)
	assert.Equal(t, 10*time.Second, cfg.RetryDelay())
	assert.Empty(t, cfg.ClientID)
}

func TestConfig_Merge(t *testing.T) {
	cfg := auth.DefaultConfig()
	cfg.Merge(&auth.Config{
		ClientID:      "id",
		ClientSecret:  "secret",
		RetryDelaySec: 2,
	})

	assert.Equal(t, "id", cfg.ClientID)
	assert.Equal(t, "secret", cfg.ClientSecret)
	assert.Equal(t, 2*time.Second, cfg.RetryDelay())
	assert.Equal(t, auth.DefaultMaxRetries, cfg.MaxRetries)
	assert.Equal(t, auth.DefaultTokenURL, cfg.TokenURL)

	creds := cfg.Credentials()
	assert.Equal(t, "id", creds.ClientID)
	assert.Equal(t, []string{"dlg", "nlu"}, creds.Scopes)
}

func TestDefaultConfig_ScopesNotShared(t *testing.T) {
	cfg := auth.DefaultConfig()
	cfg.Scopes[0] = "changed"

	assert.Equal(t, "dlg", auth.DefaultScopes[0])
}
