package hooks

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/temirov/fleet/internal/catalog"
	"github.com/temirov/fleet/internal/utils/flags"
	"github.com/temirov/fleet/internal/workspace"
)

const (
	parentCommandUseConstant              = "hooks"
	parentCommandShortConstant            = "Manage shared git hooks across the fleet"
	installCommandUseConstant             = "install"
	installCommandShortConstant           = "Install shared git hooks into each repository"
	installCommandLongConstant            = "install copies every hook script from the shared hook directory into the .git/hooks directory of each selected repository."
	installExecutionErrorTemplateConstant = "hook installation failed: %w"
	unexpectedArgumentsMessageConstant    = "hooks install does not accept positional arguments"
	flagRepositoriesNameConstant          = "repos"
	flagRepositoriesDescriptionConstant   = "Repositories to include (comma separated names or 'all')"
	flagSourceNameConstant                = "source"
	flagSourceDescriptionConstant         = "Directory containing the shared hook scripts"
	flagOnErrorNameConstant               = "on-error"
	flagOnErrorDescriptionConstant        = "Behavior when installation fails for one repository"
	flagUnknownPolicyNameConstant         = "on-unknown"
	flagUnknownPolicyDescriptionConstant  = "Behavior when a selector names an unknown repository"
	workspaceNotConfiguredMessage         = "workspace provider not configured"
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// ErrWorkspaceNotConfigured indicates the command builder was missing a workspace provider.
var ErrWorkspaceNotConfigured = errors.New(workspaceNotConfiguredMessage)

// WorkspaceProvider supplies the resolved fleet workspace.
type WorkspaceProvider func() (workspace.Workspace, error)

// ConfigurationProvider supplies the effective hooks configuration.
type ConfigurationProvider func() CommandConfiguration

// CommandBuilder assembles the Cobra command tree for hook management.
type CommandBuilder struct {
	WorkspaceProvider     WorkspaceProvider
	ConfigurationProvider ConfigurationProvider
	OutputWriter          io.Writer
	ErrorWriter           io.Writer
}

// Build constructs the hooks command with its install subcommand.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	parentCommand := &cobra.Command{
		Use:   parentCommandUseConstant,
		Short: parentCommandShortConstant,
	}

	configuration := builder.resolveConfiguration()

	installCommand := &cobra.Command{
		Use:   installCommandUseConstant,
		Short: installCommandShortConstant,
		Long:  installCommandLongConstant,
		RunE:  builder.runInstall,
	}

	installCommand.Flags().StringSlice(flagRepositoriesNameConstant, configuration.Repositories, flagRepositoriesDescriptionConstant)
	installCommand.Flags().String(flagSourceNameConstant, configuration.SourceDirectory, flagSourceDescriptionConstant)
	installCommand.Flags().String(
		flagOnErrorNameConstant,
		configuration.OnError,
		flags.FormatChoiceUsage(configuration.OnError, ErrorPolicyValues(), flagOnErrorDescriptionConstant),
	)
	installCommand.Flags().String(
		flagUnknownPolicyNameConstant,
		configuration.UnknownRepositoryPolicy,
		flags.FormatChoiceUsage(configuration.UnknownRepositoryPolicy, catalog.SelectorPolicyValues(), flagUnknownPolicyDescriptionConstant),
	)

	parentCommand.AddCommand(installCommand)

	return parentCommand, nil
}

func (builder *CommandBuilder) runInstall(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	configuration := builder.resolveConfiguration()

	selectors, _ := command.Flags().GetStringSlice(flagRepositoriesNameConstant)
	if !command.Flags().Changed(flagRepositoriesNameConstant) {
		selectors = configuration.Repositories
	}
	sourceDirectory, _ := command.Flags().GetString(flagSourceNameConstant)
	if !command.Flags().Changed(flagSourceNameConstant) {
		sourceDirectory = configuration.SourceDirectory
	}
	onErrorValue, _ := command.Flags().GetString(flagOnErrorNameConstant)
	if !command.Flags().Changed(flagOnErrorNameConstant) {
		onErrorValue = configuration.OnError
	}
	policyValue, _ := command.Flags().GetString(flagUnknownPolicyNameConstant)
	if !command.Flags().Changed(flagUnknownPolicyNameConstant) {
		policyValue = configuration.UnknownRepositoryPolicy
	}

	errorPolicy, errorPolicyError := ParseErrorPolicy(onErrorValue)
	if errorPolicyError != nil {
		return errorPolicyError
	}

	selectorPolicy, selectorPolicyError := catalog.ParseSelectorPolicy(policyValue)
	if selectorPolicyError != nil {
		return selectorPolicyError
	}

	if builder.WorkspaceProvider == nil {
		return ErrWorkspaceNotConfigured
	}
	commandWorkspace, workspaceError := builder.WorkspaceProvider()
	if workspaceError != nil {
		return workspaceError
	}

	selection, selectionError := commandWorkspace.Select(selectors, selectorPolicy)
	if selectionError != nil {
		return selectionError
	}

	installer := NewInstaller(builder.resolveOutputWriter(command), builder.resolveErrorWriter(command))

	installError := installer.Install(InstallOptions{
		Selection:       selection,
		SourceDirectory: sourceDirectory,
		OnError:         errorPolicy,
	})
	if installError != nil {
		return fmt.Errorf(installExecutionErrorTemplateConstant, installError)
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
	if len(configuration.OnError) == 0 {
		configuration.OnError = string(ErrorPolicySkip)
	}
	if len(configuration.UnknownRepositoryPolicy) == 0 {
		configuration.UnknownRepositoryPolicy = string(catalog.SelectorPolicySkip)
	}

	return configuration
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
