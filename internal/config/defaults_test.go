package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	cfg := Config{DataDir: "/srv/launcherd"}
	require.NoError(t, cfg.ApplyDefaults())
	assert.Equal(t, DefaultAddr, cfg.Addr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, filepath.Join("/srv/launcherd", "components"), cfg.ComponentsDir)
	assert.Equal(t, filepath.Join("/srv/launcherd", "prefix"), cfg.Prefix.Path)
	assert.Equal(t, DefaultPollInterval, cfg.PollInterval.Std())
	assert.Equal(t, DefaultSubmitBuffer, cfg.SubmitBuffer)
	assert.EqualValues(t, DefaultMaxBodyBytes, cfg.MaxBodyBytes)
	require.NoError(t, cfg.Validate())
}

func TestApplyDefaultsExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	cfg := Config{Games: []Game{{Variant: "genshin", Dir: "~/games/genshin", ManifestURL: "m"}}}
	require.NoError(t, cfg.ApplyDefaults())
	if os.Getenv("HOME") == home {
		assert.True(t, strings.HasPrefix(cfg.DataDir, home))
		assert.Equal(t, filepath.Join(home, "games/genshin"), cfg.Games[0].Dir)
	}
}

func TestValidate(t *testing.T) {
	cfg := Config{
		LogFormat:       "xml",
		UpdateCheckCron: "every day",
		TempDir:         filepath.Join(t.TempDir(), "missing"),
		Games: []Game{
			{Variant: "wine", Dir: "/x", ManifestURL: "m"},
			{Variant: "genshin"},
			{Variant: "genshin", Dir: "/g", ManifestURL: "m"},
		},
	}
	err := cfg.Validate()
	require.Error(t, err)
	msg := err.Error()
	for _, want := range []string{"log_format", "update_check_cron", "not a game", "dir is required", "manifest_url is required", "duplicate variant", "temp_dir"} {
		assert.Contains(t, msg, want)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("LAUNCHERD_ADDR", ":1234")
	t.Setenv("LAUNCHERD_POLL_INTERVAL", "1s")
	t.Setenv("LAUNCHERD_SUBMIT_BUFFER", "8")
	t.Setenv("LAUNCHERD_PREFIX_COREFONTS", "true")
	t.Setenv("LAUNCHERD_CORS_ORIGINS", "http://a, http://b")

	var cfg Config
	require.NoError(t, cfg.ApplyEnv())
	assert.Equal(t, ":1234", cfg.Addr)
	assert.Equal(t, "1s", cfg.PollInterval.Std().String())
	assert.Equal(t, 8, cfg.SubmitBuffer)
	assert.True(t, cfg.Prefix.InstallCorefonts)
	assert.True(t, cfg.CORS.Enabled)
	assert.Equal(t, []string{"http://a", "http://b"}, cfg.CORS.AllowedOrigins)

	t.Setenv("LAUNCHERD_SUBMIT_BUFFER", "many")
	assert.Error(t, cfg.ApplyEnv())
}

func TestLoadDotEnv(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, ".env", "LAUNCHERD_TEST_DOTENV=from-file\n")
	t.Setenv("LAUNCHERD_TEST_DOTENV", "")
	os.Unsetenv("LAUNCHERD_TEST_DOTENV")

	require.NoError(t, LoadDotEnv(filepath.Join(d, "absent.env"), p))
	assert.Equal(t, "from-file", os.Getenv("LAUNCHERD_TEST_DOTENV"))
}
