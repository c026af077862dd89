package audit

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/temirov/fleet/internal/ui"
)

const (
	reportHeaderPackageConstant     = "PACKAGE"
	reportHeaderVersionConstant     = "VERSION"
	reportHeaderProjectConstant     = "PROJECT"
	reportHeaderDevelopmentConstant = "DEV"
	reportRowTemplateConstant       = "%s\t%s\t%s\t%s\n"
	reportGroupTemplateConstant     = "%s is referenced at %d distinct versions"
	developmentFlagYesConstant      = "yes"
	developmentFlagNoConstant       = "no"
	tabwriterMinimumWidthConstant   = 0
	tabwriterTabWidthConstant       = 8
	tabwriterPaddingConstant        = 2
	tabwriterPaddingCharacter       = ' '
	tabwriterFlagsConstant          = 0
)

// WriteConflictReport renders every record belonging to a conflicting package
// id, grouped by package id, followed by the pass/fail banner.
func WriteConflictReport(writer io.Writer, detection Detection) {
	for _, conflictGroup := range detection.Conflicts {
		fmt.Fprintln(writer, ui.StyleHeading.Render(fmt.Sprintf(reportGroupTemplateConstant, conflictGroup.PackageID, len(conflictGroup.Versions))))

		tableWriter := tabwriter.NewWriter(writer, tabwriterMinimumWidthConstant, tabwriterTabWidthConstant, tabwriterPaddingConstant, tabwriterPaddingCharacter, tabwriterFlagsConstant)
		fmt.Fprintf(tableWriter, reportRowTemplateConstant, reportHeaderPackageConstant, reportHeaderVersionConstant, reportHeaderProjectConstant, reportHeaderDevelopmentConstant)
		for _, record := range detection.Records {
			if record.PackageID != conflictGroup.PackageID {
				continue
			}
			fmt.Fprintf(tableWriter, reportRowTemplateConstant, record.PackageID, record.Version, record.ReferencingProject, formatDevelopmentFlag(record.IsDevelopmentDependency))
		}
		tableWriter.Flush()
	}

	ui.WriteResultBanner(writer, !detection.HasConflicts())
}

func formatDevelopmentFlag(isDevelopmentDependency bool) string {
	if isDevelopmentDependency {
		return developmentFlagYesConstant
	}
	return developmentFlagNoConstant
}
