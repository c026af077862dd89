package hooks

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/temirov/fleet/internal/ui"
	"github.com/temirov/fleet/internal/workspace"
)

const (
	selectionRequiredMessageConstant     = "at least one repository must be selected"
	skippedSelectorWarningTemplate       = "skipping unknown repository %q"
	hookSourceMissingTemplateConstant    = "hook source directory %s does not exist"
	hookSourceReadFailureTemplate        = "failed to read hook source directory %s: %w"
	hookSourceEmptyTemplateConstant      = "hook source directory %s contains no hook scripts"
	gitDirectoryMissingTemplateConstant  = "repository %s has no .git directory"
	hookCopyFailureTemplateConstant      = "failed to install hook %s into %s: %w"
	installationSkippedWarningTemplate   = "skipping %s: %v"
	installedSummaryTemplateConstant     = "installed %d hooks into %s"
	unsupportedPolicyErrorTemplate       = "unsupported error policy: %s"
	gitDirectoryNameConstant             = ".git"
	gitHooksDirectoryNameConstant        = "hooks"
	hookFilePermissionsConstant          = 0o755
)

// ErrNoRepositoriesSelected indicates selector resolution produced no repositories.
var ErrNoRepositoriesSelected = errors.New(selectionRequiredMessageConstant)

// ErrorPolicy controls how per-repository installation failures are treated.
type ErrorPolicy string

// Supported error policies.
const (
	ErrorPolicySkip  ErrorPolicy = "skip"
	ErrorPolicyAbort ErrorPolicy = "abort"
)

// ErrorPolicyValues lists the accepted error policy names for flag usage strings.
func ErrorPolicyValues() []string {
	return []string{string(ErrorPolicySkip), string(ErrorPolicyAbort)}
}

// ParseErrorPolicy validates a textual policy value.
func ParseErrorPolicy(candidate string) (ErrorPolicy, error) {
	normalized := strings.ToLower(strings.TrimSpace(candidate))
	switch ErrorPolicy(normalized) {
	case ErrorPolicySkip:
		return ErrorPolicySkip, nil
	case ErrorPolicyAbort:
		return ErrorPolicyAbort, nil
	default:
		return "", fmt.Errorf(unsupportedPolicyErrorTemplate, candidate)
	}
}

// InstallOptions configures one hook installation pass.
type InstallOptions struct {
	Selection       workspace.Selection
	SourceDirectory string
	OnError         ErrorPolicy
}

// Installer copies shared hook scripts into each repository's git hooks directory.
type Installer struct {
	outputWriter io.Writer
	errorWriter  io.Writer
}

// NewInstaller constructs an Installer writing progress to the provided writers.
func NewInstaller(outputWriter io.Writer, errorWriter io.Writer) *Installer {
	return &Installer{outputWriter: outputWriter, errorWriter: errorWriter}
}

// Install copies every hook script into the selected repositories. A missing
// hook source directory halts the whole command; per-repository failures are
// skipped or abort the pass according to the error policy.
func (installer *Installer) Install(options InstallOptions) error {
	for _, skippedSelector := range options.Selection.Skipped {
		ui.WriteWarningLine(installer.errorWriter, fmt.Sprintf(skippedSelectorWarningTemplate, skippedSelector))
	}

	if len(options.Selection.Targets) == 0 {
		return ErrNoRepositoriesSelected
	}

	hookPaths, collectError := collectHookScripts(options.SourceDirectory)
	if collectError != nil {
		return collectError
	}

	for _, target := range options.Selection.Targets {
		installError := installer.installIntoRepository(target, hookPaths)
		if installError == nil {
			fmt.Fprintln(installer.outputWriter, ui.StyleSuccess.Render(fmt.Sprintf(installedSummaryTemplateConstant, len(hookPaths), target.Name)))
			continue
		}

		if options.OnError == ErrorPolicySkip {
			ui.WriteWarningLine(installer.errorWriter, fmt.Sprintf(installationSkippedWarningTemplate, target.Name, installError))
			continue
		}
		return installError
	}

	return nil
}

func (installer *Installer) installIntoRepository(target workspace.RepositoryTarget, hookPaths []string) error {
	gitDirectory := filepath.Join(target.Directory, gitDirectoryNameConstant)
	if directoryInfo, statError := os.Stat(gitDirectory); statError != nil || !directoryInfo.IsDir() {
		return fmt.Errorf(gitDirectoryMissingTemplateConstant, target.Name)
	}

	hooksDirectory := filepath.Join(gitDirectory, gitHooksDirectoryNameConstant)
	if mkdirError := os.MkdirAll(hooksDirectory, hookFilePermissionsConstant); mkdirError != nil {
		return fmt.Errorf(hookCopyFailureTemplateConstant, hooksDirectory, target.Name, mkdirError)
	}

	for _, hookPath := range hookPaths {
		hookContent, readError := os.ReadFile(hookPath)
		if readError != nil {
			return fmt.Errorf(hookCopyFailureTemplateConstant, hookPath, target.Name, readError)
		}

		destinationPath := filepath.Join(hooksDirectory, filepath.Base(hookPath))
		if writeError := os.WriteFile(destinationPath, hookContent, hookFilePermissionsConstant); writeError != nil {
			return fmt.Errorf(hookCopyFailureTemplateConstant, hookPath, target.Name, writeError)
		}
	}

	return nil
}

func collectHookScripts(sourceDirectory string) ([]string, error) {
	directoryEntries, readError := os.ReadDir(sourceDirectory)
	if readError != nil {
		if os.IsNotExist(readError) {
			return nil, fmt.Errorf(hookSourceMissingTemplateConstant, sourceDirectory)
		}
		return nil, fmt.Errorf(hookSourceReadFailureTemplate, sourceDirectory, readError)
	}

	var hookPaths []string
	for _, directoryEntry := range directoryEntries {
		if directoryEntry.IsDir() {
			continue
		}
		hookPaths = append(hookPaths, filepath.Join(sourceDirectory, directoryEntry.Name()))
	}

	if len(hookPaths) == 0 {
		return nil, fmt.Errorf(hookSourceEmptyTemplateConstant, sourceDirectory)
	}

	return hookPaths, nil
}
