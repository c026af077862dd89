package flags_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/fleet/internal/utils/flags"
)

func TestFormatChoiceUsage(testInstance *testing.T) {
	testCases := []struct {
		name          string
		defaultChoice string
		choices       []string
		description   string
		expected      string
	}{
		{
			name:          "default_highlighted",
			defaultChoice: "skip",
			choices:       []string{"skip", "abort"},
			description:   "Per-repository failure policy.",
			expected:      "`<SKIP|abort>` Per-repository failure policy.",
		},
		{
			name:          "empty_description",
			defaultChoice: "structured",
			choices:       []string{"structured", "console"},
			description:   "",
			expected:      "`<STRUCTURED|console>`",
		},
		{
			name:          "duplicate_choices_collapsed",
			defaultChoice: "abort",
			choices:       []string{"abort", "Abort", "skip"},
			description:   "policy",
			expected:      "`<ABORT|skip>` policy",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			usage := flags.FormatChoiceUsage(testCase.defaultChoice, testCase.choices, testCase.description)
			require.Equal(testInstance, testCase.expected, usage)
		})
	}
}
