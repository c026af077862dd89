package gitops

import "strings"

// CommandConfiguration captures configuration values for the status and pull commands.
type CommandConfiguration struct {
	Repositories            []string `mapstructure:"repos"`
	RequireClean            bool     `mapstructure:"require_clean"`
	UnknownRepositoryPolicy string   `mapstructure:"on_unknown"`
}

// DefaultCommandConfiguration provides baseline configuration values for git operations.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Repositories:            nil,
		RequireClean:            false,
		UnknownRepositoryPolicy: "",
	}
}

// DefaultConfigurationValues exposes the baseline git operation configuration for viper registration.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		rootKey + ".repos":         defaults.Repositories,
		rootKey + ".require_clean": defaults.RequireClean,
		rootKey + ".on_unknown":    defaults.UnknownRepositoryPolicy,
	}
}

// sanitize trims configuration values without applying implicit defaults.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration

	sanitizedRepositories := make([]string, 0, len(configuration.Repositories))
	for _, candidate := range configuration.Repositories {
		trimmed := strings.TrimSpace(candidate)
		if len(trimmed) == 0 {
			continue
		}
		sanitizedRepositories = append(sanitizedRepositories, trimmed)
	}
	sanitized.Repositories = sanitizedRepositories
	sanitized.UnknownRepositoryPolicy = strings.TrimSpace(configuration.UnknownRepositoryPolicy)

	return sanitized
}
