// Package config loads the sidecar's process configuration from
// environment variables (section 6: CHROME_PATH, RUST_LOG). It is the
// external collaborator the spec marks as out-of-scope for the core but
// contractual at the boundary: the core never reads os.Getenv directly
// outside this package, except where the browser controller resolves
// CHROME_PATH as part of its own launch algorithm.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/shaharia-lab/reasonkit-web/browser"
)

// Config is the fully-resolved process configuration.
type Config struct {
	LogBackend string
	LogLevel   string
	Browser    browser.Config
}

// FromEnv resolves Config from the process environment, matching defaults to
// the spec's stated component defaults (30s launch/navigation timeout, 3
// consecutive failures before reset, file:// disallowed).
func FromEnv() Config {
	return Config{
		LogBackend: getEnv("REASONKIT_LOG_BACKEND", "slog"),
		LogLevel:   resolveLogLevel(),
		Browser: browser.Config{
			BinaryPath:              os.Getenv("CHROME_PATH"),
			AllowFileScheme:         getEnvBool("REASONKIT_ALLOW_FILE_SCHEME", false),
			LaunchTimeout:           getEnvDuration("REASONKIT_LAUNCH_TIMEOUT", 30*time.Second),
			NavigationTimeout:       getEnvDuration("REASONKIT_NAVIGATION_TIMEOUT", 30*time.Second),
			MaxConsecutiveFailures:  getEnvInt("REASONKIT_MAX_CONSECUTIVE_FAILURES", 3),
			MaxNavigationsPerSecond: getEnvFloat("REASONKIT_MAX_NAV_PER_SEC", 5),
		},
	}
}

// resolveLogLevel honors RUST_LOG (named directly in section 6 as the
// level-selector environment input inherited from the system this spec
// describes) with a more idiomatic override taking precedence if set.
func resolveLogLevel() string {
	if v := os.Getenv("REASONKIT_LOG_LEVEL"); v != "" {
		return v
	}
	if v := os.Getenv("RUST_LOG"); v != "" {
		return v
	}
	return "info"
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
