package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "login", cfg.Salesforce.Domain)
	assert.Equal(t, 5.0, cfg.Salesforce.RateRPS)
	assert.Equal(t, 60, cfg.Cache.TTLSecs)
	assert.Equal(t, 128, cfg.Cache.Capacity)
	assert.Equal(t, 25, cfg.Query.DefaultLimit)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("FUNDRAISING_SALESFORCE_DOMAIN", "test")
	t.Setenv("FUNDRAISING_CACHE_TTL_SECS", "120")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.Salesforce.Domain)
	assert.Equal(t, 120, cfg.Cache.TTLSecs)
}

func TestValidate(t *testing.T) {
	t.Run("oauth credentials suffice", func(t *testing.T) {
		cfg := &Config{Salesforce: SalesforceConfig{
			ClientID: "id", ClientSecret: "secret", RefreshToken: "tok",
		}}
		assert.NoError(t, cfg.Validate())
	})

	t.Run("password credentials suffice", func(t *testing.T) {
		cfg := &Config{Salesforce: SalesforceConfig{
			Username: "u@example.org", Password: "pw", SecurityToken: "tok",
		}}
		assert.NoError(t, cfg.Validate())
	})

	t.Run("partial credentials fail", func(t *testing.T) {
		cfg := &Config{Salesforce: SalesforceConfig{ClientID: "id", Username: "u@example.org"}}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "salesforce credentials required")
	})
}
