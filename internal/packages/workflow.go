package packages

import (
	"context"
	"fmt"

	"github.com/temirov/fleet/internal/ui"
	"github.com/temirov/fleet/internal/workspace"
)

const (
	localUpdateSummaryTemplateConstant = "substituted %s %s into %d manifests"
	builtPackageTemplateConstant       = "built %s"
)

// BuildOptions configures one build pass over the selected repositories.
type BuildOptions struct {
	Selection workspace.Selection

	// Local builds integration-test packages with a locally-scoped version
	// suffix and substitutes them into the manifests of the other selected
	// repositories.
	Local bool
}

// PushOptions configures one build-and-publish pass over the selected repositories.
type PushOptions struct {
	Selection workspace.Selection
	SourceURL string
}

// RunVersion resolves and prints the package version of every selected repository.
func (service *Service) RunVersion(executionContext context.Context, selection workspace.Selection) error {
	if validationError := service.validateSelection(selection); validationError != nil {
		return validationError
	}

	for _, target := range selection.Targets {
		resolvedVersion, resolveError := service.ResolveVersion(executionContext, target)
		if resolveError != nil {
			return resolveError
		}
		fmt.Fprintln(service.outputWriter, fmt.Sprintf(resolvedVersionTemplateConstant, target.Name, resolvedVersion))
	}

	return nil
}

// RunBuild builds and packs every selected repository. Local builds also
// rewrite the manifests of the other selected repositories to reference the
// freshly built local version.
func (service *Service) RunBuild(executionContext context.Context, options BuildOptions) error {
	if validationError := service.validateSelection(options.Selection); validationError != nil {
		return validationError
	}

	for _, target := range options.Selection.Targets {
		fmt.Fprintln(service.outputWriter, ui.StyleHeading.Render(fmt.Sprintf(repositoryHeadingTemplateConstant, target.Name)))

		buildVersion, resolveError := service.ResolveVersion(executionContext, target)
		if resolveError != nil {
			return resolveError
		}

		if options.Local {
			existingVersions, listError := ListArtifactVersions(target)
			if listError != nil {
				return listError
			}
			buildVersion = NextLocalVersion(buildVersion, existingVersions)
		}

		packagePaths, buildError := service.BuildAndPackage(executionContext, target, buildVersion)
		if buildError != nil {
			return buildError
		}

		for _, packagePath := range packagePaths {
			fmt.Fprintln(service.outputWriter, ui.StyleSuccess.Render(fmt.Sprintf(builtPackageTemplateConstant, packagePath)))
		}

		if options.Local {
			dependentRoots := dependentDirectories(options.Selection, target)
			substitutionCount, substitutionError := SubstitutePackageVersion(dependentRoots, target.Name, buildVersion)
			if substitutionError != nil {
				return substitutionError
			}
			fmt.Fprintln(service.outputWriter, ui.StyleMuted.Render(fmt.Sprintf(localUpdateSummaryTemplateConstant, target.Name, buildVersion, substitutionCount)))
		}
	}

	return nil
}

// RunPush builds and publishes every selected repository's package.
func (service *Service) RunPush(executionContext context.Context, options PushOptions) error {
	if validationError := service.validateSelection(options.Selection); validationError != nil {
		return validationError
	}

	for _, target := range options.Selection.Targets {
		fmt.Fprintln(service.outputWriter, ui.StyleHeading.Render(fmt.Sprintf(repositoryHeadingTemplateConstant, target.Name)))

		resolvedVersion, resolveError := service.ResolveVersion(executionContext, target)
		if resolveError != nil {
			return resolveError
		}

		packagePaths, buildError := service.BuildAndPackage(executionContext, target, resolvedVersion)
		if buildError != nil {
			return buildError
		}

		if pushError := service.Push(executionContext, packagePaths, options.SourceURL); pushError != nil {
			return pushError
		}
	}

	return nil
}

func dependentDirectories(selection workspace.Selection, builtTarget workspace.RepositoryTarget) []string {
	var directories []string
	for _, target := range selection.Targets {
		if target.Name == builtTarget.Name {
			continue
		}
		directories = append(directories, target.Directory)
	}
	return directories
}
