package cli

import (
	"fmt"
	"os"
)

// Config holds the global flags shared by every command.
type Config struct {
	// ConfigPath is the daemon configuration file (yaml, json or toml).
	ConfigPath string
	// EnvFile is an optional .env file loaded before LAUNCHERD_* overrides.
	EnvFile string
	// Server is the daemon base URL used by the client commands.
	Server string
	// LogLevel overrides the configured log level when set.
	LogLevel string
}

func defaultConfig() *Config {
	return &Config{
		ConfigPath: envStr("LAUNCHERD_CONFIG", ""),
		EnvFile:    ".env",
		Server:     envStr("LAUNCHERD_SERVER", "http://127.0.0.1:8420"),
	}
}

// MainWithArgs runs the command line and returns the process exit code:
// 0 on success, 2 for usage errors and 1 for everything else.
func MainWithArgs(args []string) int {
	root := buildRootCmdWith(defaultConfig())
	root.SetArgs(args)
	if len(args) == 0 {
		_ = root.Help()
		return 2
	}
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		if isUsage(err) {
			return 2
		}
		return 1
	}
	return 0
}

// Main returns an exit code for use by cmd/launcherd.
func Main() int { return MainWithArgs(os.Args[1:]) }

// usageError marks bad invocations so MainWithArgs can exit with 2.
type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func isUsage(err error) bool {
	_, ok := err.(usageError)
	return ok
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
