package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:8000", c.ServerURL)
	assert.Equal(t, 10*time.Second, c.RequestTimeout)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}

	cfg := LoadConfig()

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Equal(t, "http://127.0.0.1:8000", cfg.ServerURL)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
}

func TestLoadConfig_EnvThenFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Setenv("AIM_SERVER_URL", "http://env:1")
	t.Setenv("AIM_REQUEST_TIMEOUT", "3s")
	os.Args = []string{"testbin", "-t", "7"}

	cfg := LoadConfig()

	assert.Equal(t, "http://env:1", cfg.ServerURL)
	assert.Equal(t, 7*time.Second, cfg.RequestTimeout)
}

func TestParseEnv_Malformed(t *testing.T) {
	t.Setenv("AIM_REQUEST_TIMEOUT", "whenever")
	require.Panics(t, func() { parseEnv(&Config{}) })
}
