package hooks

import "strings"

// CommandConfiguration captures configuration values for the hooks commands.
type CommandConfiguration struct {
	Repositories            []string `mapstructure:"repos"`
	SourceDirectory         string   `mapstructure:"source"`
	OnError                 string   `mapstructure:"on_error"`
	UnknownRepositoryPolicy string   `mapstructure:"on_unknown"`
}

// DefaultCommandConfiguration provides baseline configuration values for hook management.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Repositories:            nil,
		SourceDirectory:         "",
		OnError:                 "",
		UnknownRepositoryPolicy: "",
	}
}

// DefaultConfigurationValues exposes the baseline hooks configuration for viper registration.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		rootKey + ".repos":      defaults.Repositories,
		rootKey + ".source":     defaults.SourceDirectory,
		rootKey + ".on_error":   defaults.OnError,
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
	sanitized.SourceDirectory = strings.TrimSpace(configuration.SourceDirectory)
	sanitized.OnError = strings.TrimSpace(configuration.OnError)
	sanitized.UnknownRepositoryPolicy = strings.TrimSpace(configuration.UnknownRepositoryPolicy)

	return sanitized
}
