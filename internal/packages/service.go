package packages

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/temirov/fleet/internal/execshell"
	"github.com/temirov/fleet/internal/ui"
	"github.com/temirov/fleet/internal/workspace"
)

const (
	toolExecutorMissingMessageConstant    = "package tool executor not configured"
	selectionRequiredMessageConstant      = "at least one repository must be selected"
	skippedSelectorWarningTemplate        = "skipping unknown repository %q"
	repositoryHeadingTemplateConstant     = "== %s"
	sourceDirectoryNameConstant           = "source"
	artifactsDirectoryNameConstant        = "artifacts"
	nuspecFileExtensionConstant           = ".nuspec"
	versionResolutionFailureTemplate      = "failed to resolve version of %s: %w"
	restoreFailureTemplateConstant        = "failed to restore packages in %s: %w"
	buildFailureTemplateConstant          = "failed to build %s: %w"
	packFailureTemplateConstant           = "failed to pack %s: %w"
	pushFailureTemplateConstant           = "failed to push package %s: %w"
	noPackagesProducedTemplateConstant    = "pack produced no package files for %s"
	resolvedVersionTemplateConstant       = "%s %s"
	createdPackagePrefixConstant          = "Successfully created package '"
	createdPackageSuffixConstant          = "'."
	nugetListSubcommandConstant           = "list"
	nugetRestoreSubcommandConstant        = "restore"
	nugetPackSubcommandConstant           = "pack"
	nugetPushSubcommandConstant           = "push"
	nugetVersionOptionConstant            = "-Version"
	nugetOutputDirectoryOptionConstant    = "-OutputDirectory"
	nugetSourceOptionConstant             = "-Source"
	nugetNonInteractiveOptionConstant     = "-NonInteractive"
	dotnetBuildSubcommandConstant         = "build"
	dotnetConfigurationOptionConstant     = "--configuration"
	dotnetReleaseConfigurationConstant    = "Release"
)

// ErrToolExecutorNotConfigured indicates the package tool executor dependency was missing.
var ErrToolExecutorNotConfigured = errors.New(toolExecutorMissingMessageConstant)

// ErrNoRepositoriesSelected indicates selector resolution produced no repositories.
var ErrNoRepositoriesSelected = errors.New(selectionRequiredMessageConstant)

// ToolExecutor runs the external package and build tools.
type ToolExecutor interface {
	ExecuteNuget(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecuteDotnet(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Service orchestrates package version resolution, builds, and publishing
// across fleet repositories. Tool failures abort the enclosing workflow.
type Service struct {
	executor     ToolExecutor
	outputWriter io.Writer
	errorWriter  io.Writer
}

// NewService constructs a Service from the provided collaborators.
func NewService(executor ToolExecutor, outputWriter io.Writer, errorWriter io.Writer) (*Service, error) {
	if executor == nil {
		return nil, ErrToolExecutorNotConfigured
	}
	return &Service{executor: executor, outputWriter: outputWriter, errorWriter: errorWriter}, nil
}

// ResolveVersion determines the published version of the repository's package
// by parsing the listing tool output. The package id is the repository name.
func (service *Service) ResolveVersion(executionContext context.Context, target workspace.RepositoryTarget) (string, error) {
	listResult, listError := service.executor.ExecuteNuget(executionContext, execshell.CommandDetails{
		Arguments:        []string{nugetListSubcommandConstant, target.Name, nugetNonInteractiveOptionConstant},
		WorkingDirectory: target.Directory,
	})
	if listError != nil {
		return "", fmt.Errorf(versionResolutionFailureTemplate, target.Name, listError)
	}

	versionToken, parseError := ParseVersionToken(listResult.StandardOutput, target.Name)
	if parseError != nil {
		return "", fmt.Errorf(versionResolutionFailureTemplate, target.Name, parseError)
	}

	return versionToken, nil
}

// BuildAndPackage restores, builds, and packs the repository at the given
// version, returning the produced package file paths.
func (service *Service) BuildAndPackage(executionContext context.Context, target workspace.RepositoryTarget, version string) ([]string, error) {
	sourceDirectory := filepath.Join(target.Directory, sourceDirectoryNameConstant)

	if _, restoreError := service.executor.ExecuteNuget(executionContext, execshell.CommandDetails{
		Arguments:        []string{nugetRestoreSubcommandConstant, sourceDirectory, nugetNonInteractiveOptionConstant},
		WorkingDirectory: target.Directory,
	}); restoreError != nil {
		return nil, fmt.Errorf(restoreFailureTemplateConstant, target.Name, restoreError)
	}

	if _, buildError := service.executor.ExecuteDotnet(executionContext, execshell.CommandDetails{
		Arguments:        []string{dotnetBuildSubcommandConstant, sourceDirectory, dotnetConfigurationOptionConstant, dotnetReleaseConfigurationConstant},
		WorkingDirectory: target.Directory,
	}); buildError != nil {
		return nil, fmt.Errorf(buildFailureTemplateConstant, target.Name, buildError)
	}

	specificationPath := filepath.Join(sourceDirectory, target.Name+nuspecFileExtensionConstant)
	artifactsDirectory := filepath.Join(target.Directory, artifactsDirectoryNameConstant)

	packResult, packError := service.executor.ExecuteNuget(executionContext, execshell.CommandDetails{
		Arguments: []string{
			nugetPackSubcommandConstant, specificationPath,
			nugetVersionOptionConstant, version,
			nugetOutputDirectoryOptionConstant, artifactsDirectory,
			nugetNonInteractiveOptionConstant,
		},
		WorkingDirectory: target.Directory,
	})
	if packError != nil {
		return nil, fmt.Errorf(packFailureTemplateConstant, target.Name, packError)
	}

	packagePaths := parseCreatedPackagePaths(packResult.StandardOutput)
	if len(packagePaths) == 0 {
		return nil, fmt.Errorf(noPackagesProducedTemplateConstant, target.Name)
	}

	return packagePaths, nil
}

// Push publishes every package file to the configured package source.
func (service *Service) Push(executionContext context.Context, packagePaths []string, sourceURL string) error {
	for _, packagePath := range packagePaths {
		arguments := []string{nugetPushSubcommandConstant, packagePath, nugetNonInteractiveOptionConstant}
		if len(sourceURL) > 0 {
			arguments = append(arguments, nugetSourceOptionConstant, sourceURL)
		}

		if _, pushError := service.executor.ExecuteNuget(executionContext, execshell.CommandDetails{
			Arguments: arguments,
		}); pushError != nil {
			return fmt.Errorf(pushFailureTemplateConstant, packagePath, pushError)
		}

		fmt.Fprintln(service.outputWriter, ui.StyleSuccess.Render(packagePath))
	}

	return nil
}

func (service *Service) validateSelection(selection workspace.Selection) error {
	for _, skippedSelector := range selection.Skipped {
		ui.WriteWarningLine(service.errorWriter, fmt.Sprintf(skippedSelectorWarningTemplate, skippedSelector))
	}

	if len(selection.Targets) == 0 {
		return ErrNoRepositoriesSelected
	}
	return nil
}

func parseCreatedPackagePaths(packOutput string) []string {
	var packagePaths []string

	lineScanner := bufio.NewScanner(strings.NewReader(packOutput))
	for lineScanner.Scan() {
		line := strings.TrimSpace(lineScanner.Text())
		if !strings.HasPrefix(line, createdPackagePrefixConstant) || !strings.HasSuffix(line, createdPackageSuffixConstant) {
			continue
		}
		packagePath := strings.TrimSuffix(strings.TrimPrefix(line, createdPackagePrefixConstant), createdPackageSuffixConstant)
		if len(packagePath) > 0 {
			packagePaths = append(packagePaths, packagePath)
		}
	}

	return packagePaths
}
