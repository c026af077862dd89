package depgraph

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/temirov/fleet/internal/catalog"
	"github.com/temirov/fleet/internal/manifest"
	"github.com/temirov/fleet/internal/utils/flags"
	"github.com/temirov/fleet/internal/workspace"
)

const (
	commandUseConstant                    = "graph"
	commandShortDescriptionConstant       = "Emit the project-to-package dependency graph"
	commandLongDescriptionConstant        = "graph aggregates dependency manifests across the selected repositories and emits the dependency graph as indexed node and edge lists."
	commandExecutionErrorTemplateConstant = "dependency graph failed: %w"
	unexpectedArgumentsMessageConstant    = "graph does not accept positional arguments"
	flagRepositoriesNameConstant          = "repos"
	flagRepositoriesDescriptionConstant   = "Repositories to include (comma separated names or 'all')"
	flagSkipDevelopmentNameConstant       = "skip-dev"
	flagSkipDevelopmentDescription        = "Exclude development-only dependencies from the graph"
	flagOutputNameConstant                = "output"
	flagOutputDescriptionConstant         = "File to write the graph to instead of standard output"
	flagUnknownPolicyNameConstant         = "on-unknown"
	flagUnknownPolicyDescriptionConstant  = "Behavior when a selector names an unknown repository"
	workspaceNotConfiguredMessage         = "workspace provider not configured"
	outputWriteErrorTemplateConstant      = "failed to write graph output %s: %w"
	outputFilePermissions                 = 0o644
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// ErrWorkspaceNotConfigured indicates the command builder was missing a workspace provider.
var ErrWorkspaceNotConfigured = errors.New(workspaceNotConfiguredMessage)

// WorkspaceProvider supplies the resolved fleet workspace.
type WorkspaceProvider func() (workspace.Workspace, error)

// ConfigurationProvider supplies the effective graph configuration.
type ConfigurationProvider func() CommandConfiguration

// CommandBuilder assembles the Cobra command for the dependency graph.
type CommandBuilder struct {
	WorkspaceProvider     WorkspaceProvider
	ConfigurationProvider ConfigurationProvider
	Scanner               manifest.RepositoryScanner
	OutputWriter          io.Writer
}

// Build constructs the graph command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	configuration := builder.resolveConfiguration()

	command.Flags().StringSlice(flagRepositoriesNameConstant, configuration.Repositories, flagRepositoriesDescriptionConstant)
	command.Flags().Bool(flagSkipDevelopmentNameConstant, configuration.SkipDevelopmentDependencies, flagSkipDevelopmentDescription)
	command.Flags().String(flagOutputNameConstant, configuration.OutputPath, flagOutputDescriptionConstant)
	command.Flags().String(
		flagUnknownPolicyNameConstant,
		configuration.UnknownRepositoryPolicy,
		flags.FormatChoiceUsage(configuration.UnknownRepositoryPolicy, catalog.SelectorPolicyValues(), flagUnknownPolicyDescriptionConstant),
	)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	configuration := builder.resolveConfiguration()

	selectors, _ := command.Flags().GetStringSlice(flagRepositoriesNameConstant)
	if !command.Flags().Changed(flagRepositoriesNameConstant) {
		selectors = configuration.Repositories
	}
	skipDevelopment, _ := command.Flags().GetBool(flagSkipDevelopmentNameConstant)
	if !command.Flags().Changed(flagSkipDevelopmentNameConstant) {
		skipDevelopment = configuration.SkipDevelopmentDependencies
	}
	outputPath, _ := command.Flags().GetString(flagOutputNameConstant)
	if !command.Flags().Changed(flagOutputNameConstant) {
		outputPath = configuration.OutputPath
	}
	policyValue, _ := command.Flags().GetString(flagUnknownPolicyNameConstant)
	if !command.Flags().Changed(flagUnknownPolicyNameConstant) {
		policyValue = configuration.UnknownRepositoryPolicy
	}

	selectorPolicy, policyError := catalog.ParseSelectorPolicy(policyValue)
	if policyError != nil {
		return policyError
	}

	commandWorkspace, workspaceError := builder.resolveWorkspace()
	if workspaceError != nil {
		return workspaceError
	}

	selection, selectionError := commandWorkspace.Select(selectors, selectorPolicy)
	if selectionError != nil {
		return selectionError
	}

	repositoryRoots := make([]string, 0, len(selection.Targets))
	for _, target := range selection.Targets {
		repositoryRoots = append(repositoryRoots, target.Directory)
	}

	scanner := builder.Scanner
	if scanner == nil {
		scanner = manifest.NewScanner()
	}

	aggregatedRecords, aggregateError := manifest.Aggregate(scanner, repositoryRoots)
	if aggregateError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, aggregateError)
	}

	renderedGraph := Build(aggregatedRecords, skipDevelopment).Render()

	if len(outputPath) > 0 {
		if writeError := os.WriteFile(outputPath, []byte(renderedGraph), outputFilePermissions); writeError != nil {
			return fmt.Errorf(outputWriteErrorTemplateConstant, outputPath, writeError)
		}
		return nil
	}

	fmt.Fprint(builder.resolveOutputWriter(command), renderedGraph)
	return nil
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	configuration := DefaultCommandConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}
	configuration = configuration.sanitize()

	if len(configuration.Repositories) == 0 {
		configuration.Repositories = []string{catalog.AllSelector}
	}
	if len(configuration.UnknownRepositoryPolicy) == 0 {
		configuration.UnknownRepositoryPolicy = string(catalog.SelectorPolicySkip)
	}

	return configuration
}

func (builder *CommandBuilder) resolveWorkspace() (workspace.Workspace, error) {
	if builder.WorkspaceProvider == nil {
		return workspace.Workspace{}, ErrWorkspaceNotConfigured
	}
	return builder.WorkspaceProvider()
}

func (builder *CommandBuilder) resolveOutputWriter(command *cobra.Command) io.Writer {
	if builder.OutputWriter != nil {
		return builder.OutputWriter
	}
	return command.OutOrStdout()
}
