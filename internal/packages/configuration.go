package packages

import "strings"

// CommandConfiguration captures configuration values for the packages commands.
type CommandConfiguration struct {
	Repositories            []string `mapstructure:"repos"`
	SourceURL               string   `mapstructure:"source"`
	Local                   bool     `mapstructure:"local"`
	UnknownRepositoryPolicy string   `mapstructure:"on_unknown"`
}

// DefaultCommandConfiguration provides baseline configuration values for the packages commands.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Repositories:            nil,
		SourceURL:               "",
		Local:                   false,
		UnknownRepositoryPolicy: "",
	}
}

// DefaultConfigurationValues exposes the baseline packages configuration for viper registration.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		rootKey + ".repos":      defaults.Repositories,
		rootKey + ".source":     defaults.SourceURL,
		rootKey + ".local":      defaults.Local,
		rootKey + ".on_unknown": defaults.UnknownRepositoryPolicy,
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
	sanitized.SourceURL = strings.TrimSpace(configuration.SourceURL)
	sanitized.UnknownRepositoryPolicy = strings.TrimSpace(configuration.UnknownRepositoryPolicy)

	return sanitized
}
