package audit

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/temirov/fleet/internal/catalog"
	"github.com/temirov/fleet/internal/manifest"
	"github.com/temirov/fleet/internal/utils/flags"
	"github.com/temirov/fleet/internal/workspace"
)

const (
	commandUseConstant                    = "audit"
	commandShortDescriptionConstant       = "Detect conflicting package versions across repositories"
	commandLongDescriptionConstant        = "audit scans dependency manifests across the selected repositories and reports packages referenced at more than one version."
	commandExecutionErrorTemplateConstant = "dependency audit failed: %w"
	unexpectedArgumentsMessageConstant    = "audit does not accept positional arguments"
	flagRepositoriesNameConstant          = "repos"
	flagRepositoriesDescriptionConstant   = "Repositories to audit (comma separated names or 'all')"
	flagSkipDevelopmentNameConstant       = "skip-dev"
	flagSkipDevelopmentDescription        = "Exclude development-only dependencies from the audit"
	flagUnknownPolicyNameConstant         = "on-unknown"
	flagUnknownPolicyDescriptionConstant  = "Behavior when a selector names an unknown repository"
	workspaceNotConfiguredMessage         = "workspace provider not configured"
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// ErrWorkspaceNotConfigured indicates the command builder was missing a workspace provider.
var ErrWorkspaceNotConfigured = errors.New(workspaceNotConfiguredMessage)

// WorkspaceProvider supplies the resolved fleet workspace.
type WorkspaceProvider func() (workspace.Workspace, error)

// ConfigurationProvider supplies the effective audit configuration.
type ConfigurationProvider func() CommandConfiguration

// CommandBuilder assembles the Cobra command for the dependency audit.
type CommandBuilder struct {
	WorkspaceProvider     WorkspaceProvider
	ConfigurationProvider ConfigurationProvider
	Scanner               manifest.RepositoryScanner
	OutputWriter          io.Writer
	ErrorWriter           io.Writer
}

// Build constructs the audit command.
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

	scanner := builder.Scanner
	if scanner == nil {
		scanner = manifest.NewScanner()
	}

	service, serviceError := NewService(scanner, builder.resolveOutputWriter(command), builder.resolveErrorWriter(command))
	if serviceError != nil {
		return serviceError
	}

	runError := service.Run(command.Context(), CommandOptions{
		Selection:                   selection,
		SkipDevelopmentDependencies: skipDevelopment,
	})
	if runError != nil {
		if errors.Is(runError, ErrConflictsFound) {
			return runError
		}
		return fmt.Errorf(commandExecutionErrorTemplateConstant, runError)
	}

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

func (builder *CommandBuilder) resolveErrorWriter(command *cobra.Command) io.Writer {
	if builder.ErrorWriter != nil {
		return builder.ErrorWriter
	}
	return command.ErrOrStderr()
}
