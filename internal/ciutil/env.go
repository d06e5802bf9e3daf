package ciutil

import (
	"log/slog"
	"os"

	"github.com/phrazzld/flowregistry/internal/redact"
)

// Environment variables consulted by this package.
const (
	EnvCI            = "CI"
	EnvGitHubActions = "GITHUB_ACTIONS"
	EnvGitLabCI      = "GITLAB_CI"
	EnvJenkinsURL    = "JENKINS_URL"
	EnvCircleCI      = "CIRCLECI"

	// EnvTestPostgresURL is the preferred variable naming a disposable
	// PostgreSQL database for integration tests.
	EnvTestPostgresURL = "REGISTRY_TEST_POSTGRES_URL"
	// EnvDatabaseURL is accepted as a fallback, as set by most CI services.
	EnvDatabaseURL = "DATABASE_URL"
)

// IsCI reports whether the process runs under a known CI provider.
func IsCI() bool {
	for _, name := range []string{EnvCI, EnvGitHubActions, EnvGitLabCI, EnvJenkinsURL, EnvCircleCI} {
		if os.Getenv(name) != "" {
			return true
		}
	}
	return false
}

// GetEnvWithFallbacks returns the value of the first non-empty variable in
// envVars, or defaultValue. Using any but the first variable logs a warning.
func GetEnvWithFallbacks(envVars []string, defaultValue string, logger *slog.Logger) string {
	for i, envVar := range envVars {
		val := os.Getenv(envVar)
		if val == "" {
			continue
		}
		if i > 0 && logger != nil {
			logger.Warn("using fallback environment variable",
				slog.String("used_var", envVar),
				slog.String("preferred_var", envVars[0]),
				slog.String("value", redact.String(val)))
		}
		return val
	}
	return defaultValue
}

// TestPostgresURL returns the PostgreSQL URL integration tests should use, or
// the empty string when none is configured.
func TestPostgresURL(logger *slog.Logger) string {
	return GetEnvWithFallbacks([]string{EnvTestPostgresURL, EnvDatabaseURL}, "", logger)
}
