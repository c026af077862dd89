package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

const (
	passBannerTextConstant = "PASS: no package version conflicts detected"
	failBannerTextConstant = "FAIL: conflicting package versions detected"
)

var (
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorCyan   = lipgloss.Color("36")
	colorDim    = lipgloss.Color("240")
)

var (
	// StyleError renders error messages.
	StyleError = lipgloss.NewStyle().Foreground(colorRed).Bold(true)

	// StyleWarning renders warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	// StyleSuccess renders success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleHeading renders table and section headings.
	StyleHeading = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)

	// StyleMuted renders secondary detail text.
	StyleMuted = lipgloss.NewStyle().Foreground(colorDim)
)

// WriteErrorLine prints a styled error message followed by a newline.
func WriteErrorLine(writer io.Writer, message string) {
	fmt.Fprintln(writer, StyleError.Render(message))
}

// WriteWarningLine prints a styled warning message followed by a newline.
func WriteWarningLine(writer io.Writer, message string) {
	fmt.Fprintln(writer, StyleWarning.Render(message))
}

// WriteResultBanner prints the final pass or fail banner for a command run.
func WriteResultBanner(writer io.Writer, succeeded bool) {
	if succeeded {
		fmt.Fprintln(writer, StyleSuccess.Render(passBannerTextConstant))
		return
	}
	fmt.Fprintln(writer, StyleError.Render(failBannerTextConstant))
}
