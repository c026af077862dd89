package audit

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/temirov/fleet/internal/manifest"
	"github.com/temirov/fleet/internal/ui"
	"github.com/temirov/fleet/internal/workspace"
)

const (
	conflictsFoundMessageConstant        = "package version conflicts found"
	skippedSelectorWarningTemplate       = "skipping unknown repository %q"
	scannerNotConfiguredMessageConstant  = "manifest scanner not configured"
	selectionRequiredMessageConstant     = "at least one repository must be selected"
)

// ErrConflictsFound signals that the audit detected conflicting package versions.
var ErrConflictsFound = errors.New(conflictsFoundMessageConstant)

// ErrScannerNotConfigured indicates the manifest scanner dependency was missing.
var ErrScannerNotConfigured = errors.New(scannerNotConfiguredMessageConstant)

// ErrNoRepositoriesSelected indicates selector resolution produced no repositories.
var ErrNoRepositoriesSelected = errors.New(selectionRequiredMessageConstant)

// CommandOptions captures the configurable parameters for one audit run.
type CommandOptions struct {
	Selection                   workspace.Selection
	SkipDevelopmentDependencies bool
}

// Service aggregates dependency manifests across repositories and reports conflicts.
type Service struct {
	scanner      manifest.RepositoryScanner
	outputWriter io.Writer
	errorWriter  io.Writer
}

// NewService constructs a Service using the provided collaborators.
func NewService(scanner manifest.RepositoryScanner, outputWriter io.Writer, errorWriter io.Writer) (*Service, error) {
	if scanner == nil {
		return nil, ErrScannerNotConfigured
	}
	return &Service{scanner: scanner, outputWriter: outputWriter, errorWriter: errorWriter}, nil
}

// Run scans the selected repositories, detects version conflicts, and renders the report.
//
// ErrConflictsFound distinguishes a completed audit that found conflicts from
// operational failures such as a malformed manifest.
func (service *Service) Run(executionContext context.Context, options CommandOptions) error {
	for _, skippedSelector := range options.Selection.Skipped {
		ui.WriteWarningLine(service.errorWriter, fmt.Sprintf(skippedSelectorWarningTemplate, skippedSelector))
	}

	if len(options.Selection.Targets) == 0 {
		return ErrNoRepositoriesSelected
	}

	repositoryRoots := make([]string, 0, len(options.Selection.Targets))
	for _, target := range options.Selection.Targets {
		repositoryRoots = append(repositoryRoots, target.Directory)
	}

	aggregatedRecords, aggregateError := manifest.Aggregate(service.scanner, repositoryRoots)
	if aggregateError != nil {
		return aggregateError
	}

	detection := DetectConflicts(aggregatedRecords, options.SkipDevelopmentDependencies)
	WriteConflictReport(service.outputWriter, detection)

	if detection.HasConflicts() {
		return ErrConflictsFound
	}
	return nil
}
