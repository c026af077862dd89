package flags

import (
	"fmt"
	"strings"
)

const (
	choiceSeparatorLiteral   = "|"
	choiceUsageEmptyTemplate = "`<%s>`"
	choiceUsageFullTemplate  = "`<%s>` %s"
)

// FormatChoiceUsage builds a usage string where the default option is capitalized inside a placeholder.
func FormatChoiceUsage(defaultChoice string, choices []string, description string) string {
	placeholder := strings.Join(renderChoices(defaultChoice, choices), choiceSeparatorLiteral)
	trimmedDescription := strings.TrimSpace(description)
	if len(trimmedDescription) == 0 {
		return fmt.Sprintf(choiceUsageEmptyTemplate, placeholder)
	}
	return fmt.Sprintf(choiceUsageFullTemplate, placeholder, trimmedDescription)
}

// renderChoices trims and deduplicates the options case-insensitively, keeping
// first occurrences and uppercasing the default option.
func renderChoices(defaultChoice string, choices []string) []string {
	normalizedDefault := strings.ToLower(strings.TrimSpace(defaultChoice))
	rendered := make([]string, 0, len(choices))
	seenChoices := make(map[string]struct{}, len(choices))

	for _, choiceValue := range choices {
		trimmedChoice := strings.TrimSpace(choiceValue)
		if len(trimmedChoice) == 0 {
			continue
		}

		normalizedChoice := strings.ToLower(trimmedChoice)
		if _, alreadySeen := seenChoices[normalizedChoice]; alreadySeen {
			continue
		}
		seenChoices[normalizedChoice] = struct{}{}

		if normalizedChoice == normalizedDefault {
			rendered = append(rendered, strings.ToUpper(trimmedChoice))
			continue
		}
		rendered = append(rendered, trimmedChoice)
	}

	return rendered
}
