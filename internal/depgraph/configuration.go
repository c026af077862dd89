package depgraph

import "strings"

// CommandConfiguration captures configuration values for the graph command.
type CommandConfiguration struct {
	Repositories                []string `mapstructure:"repos"`
	SkipDevelopmentDependencies bool     `mapstructure:"skip_dev"`
	OutputPath                  string   `mapstructure:"output"`
	UnknownRepositoryPolicy     string   `mapstructure:"on_unknown"`
}

// DefaultCommandConfiguration provides baseline configuration values for the graph command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Repositories:                nil,
		SkipDevelopmentDependencies: false,
		OutputPath:                  "",
		UnknownRepositoryPolicy:     "",
	}
}

// DefaultConfigurationValues exposes the baseline graph configuration for viper registration.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		rootKey + ".repos":      defaults.Repositories,
		rootKey + ".skip_dev":   defaults.SkipDevelopmentDependencies,
		rootKey + ".output":     defaults.OutputPath,
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
	sanitized.OutputPath = strings.TrimSpace(configuration.OutputPath)
	sanitized.UnknownRepositoryPolicy = strings.TrimSpace(configuration.UnknownRepositoryPolicy)

	return sanitized
}
