package audit

import "strings"

// CommandConfiguration captures configuration values for the audit command.
type CommandConfiguration struct {
	Repositories                []string `mapstructure:"repos"`
	SkipDevelopmentDependencies bool     `mapstructure:"skip_dev"`
	UnknownRepositoryPolicy     string   `mapstructure:"on_unknown"`
}

// DefaultCommandConfiguration provides baseline configuration values for the audit command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Repositories:                nil,
		SkipDevelopmentDependencies: false,
		UnknownRepositoryPolicy:     "",
	}
}

// DefaultConfigurationValues exposes the baseline audit configuration for viper registration.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		rootKey + ".repos":      defaults.Repositories,
		rootKey + ".skip_dev":   defaults.SkipDevelopmentDependencies,
		rootKey + ".on_unknown": defaults.UnknownRepositoryPolicy,
	}
}

// sanitize trims configuration values without applying implicit defaults.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration

	sanitized.Repositories = sanitizeSelectors(configuration.Repositories)
	sanitized.UnknownRepositoryPolicy = strings.TrimSpace(configuration.UnknownRepositoryPolicy)

	return sanitized
}

func sanitizeSelectors(raw []string) []string {
	sanitized := make([]string, 0, len(raw))
	for _, candidate := range raw {
		trimmed := strings.TrimSpace(candidate)
		if len(trimmed) == 0 {
			continue
		}
		sanitized = append(sanitized, trimmed)
	}
	return sanitized
}
