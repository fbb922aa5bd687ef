package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "LAUNCHERD_"

// LoadDotEnv loads variables from the given .env files into the process
// environment without overriding what is already set. Missing files are skipped.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides scalar fields from LAUNCHERD_* variables.
func (c *Config) ApplyEnv() error {
	str := map[string]*string{
		"ADDR":              &c.Addr,
		"LOG_LEVEL":         &c.LogLevel,
		"LOG_FORMAT":        &c.LogFormat,
		"DATA_DIR":          &c.DataDir,
		"COMPONENTS_DIR":    &c.ComponentsDir,
		"TEMP_DIR":          &c.TempDir,
		"UPDATE_CHECK_CRON": &c.UpdateCheckCron,
		"HPATCHZ":           &c.Hpatchz,
		"WINEBOOT":          &c.Wineboot,
		"WINETRICKS":        &c.Winetricks,
		"PREFIX_PATH":       &c.Prefix.Path,
	}
	for k, p := range str {
		if v, ok := os.LookupEnv(EnvPrefix + k); ok {
			*p = v
		}
	}

	if v, ok := os.LookupEnv(EnvPrefix + "POLL_INTERVAL"); ok {
		if err := c.PollInterval.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("%sPOLL_INTERVAL: %w", EnvPrefix, err)
		}
	}
	if v, ok := os.LookupEnv(EnvPrefix + "SUBMIT_BUFFER"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sSUBMIT_BUFFER: %w", EnvPrefix, err)
		}
		c.SubmitBuffer = n
	}
	if v, ok := os.LookupEnv(EnvPrefix + "PREFIX_COREFONTS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sPREFIX_COREFONTS: %w", EnvPrefix, err)
		}
		c.Prefix.InstallCorefonts = b
	}
	if v, ok := os.LookupEnv(EnvPrefix + "CORS_ORIGINS"); ok {
		c.CORS.Enabled = v != ""
		c.CORS.AllowedOrigins = splitList(v)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
