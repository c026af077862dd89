package gitops

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/fleet/internal/catalog"
	"github.com/temirov/fleet/internal/execshell"
	"github.com/temirov/fleet/internal/ui"
	"github.com/temirov/fleet/internal/utils/flags"
	"github.com/temirov/fleet/internal/workspace"
)

const (
	statusCommandUseConstant              = "status"
	statusCommandShortDescriptionConstant = "Show git worktree status for each repository"
	statusCommandLongDescription          = "status prints the short git status of every selected repository in catalog order."
	statusExecutionErrorTemplateConstant  = "fleet status failed: %w"
	pullCommandUseConstant                = "pull"
	pullCommandShortDescriptionConstant   = "Fast-forward each repository from its remote"
	pullCommandLongDescriptionConstant    = "pull runs a pruning fetch followed by a fast-forward-only pull in every selected repository."
	pullExecutionErrorTemplateConstant    = "fleet pull failed: %w"
	unexpectedArgumentsMessageConstant    = "repository commands do not accept positional arguments"
	flagRepositoriesNameConstant          = "repos"
	flagRepositoriesDescriptionConstant   = "Repositories to include (comma separated names or 'all')"
	flagRequireCleanNameConstant          = "require-clean"
	flagRequireCleanDescriptionConstant   = "Refuse to pull repositories with uncommitted changes"
	flagUnknownPolicyNameConstant         = "on-unknown"
	flagUnknownPolicyDescriptionConstant  = "Behavior when a selector names an unknown repository"
	workspaceNotConfiguredMessage         = "workspace provider not configured"
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// ErrWorkspaceNotConfigured indicates the command builder was missing a workspace provider.
var ErrWorkspaceNotConfigured = errors.New(workspaceNotConfiguredMessage)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// WorkspaceProvider supplies the resolved fleet workspace.
type WorkspaceProvider func() (workspace.Workspace, error)

// ConfigurationProvider supplies the effective repository command configuration.
type ConfigurationProvider func() CommandConfiguration

// CommandBuilder assembles the Cobra commands for fleet git operations.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	WorkspaceProvider     WorkspaceProvider
	ConfigurationProvider ConfigurationProvider
	Executor              GitExecutor
	OutputWriter          io.Writer
	ErrorWriter           io.Writer
}

// BuildStatusCommand constructs the status command.
func (builder *CommandBuilder) BuildStatusCommand() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   statusCommandUseConstant,
		Short: statusCommandShortDescriptionConstant,
		Long:  statusCommandLongDescription,
		RunE:  builder.runStatus,
	}

	builder.registerSelectionFlags(command)

	return command, nil
}

// BuildPullCommand constructs the pull command.
func (builder *CommandBuilder) BuildPullCommand() (*cobra.Command, error) {
	configuration := builder.resolveConfiguration()

	command := &cobra.Command{
		Use:   pullCommandUseConstant,
		Short: pullCommandShortDescriptionConstant,
		Long:  pullCommandLongDescriptionConstant,
		RunE:  builder.runPull,
	}

	builder.registerSelectionFlags(command)
	command.Flags().Bool(flagRequireCleanNameConstant, configuration.RequireClean, flagRequireCleanDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) registerSelectionFlags(command *cobra.Command) {
	configuration := builder.resolveConfiguration()

	command.Flags().StringSlice(flagRepositoriesNameConstant, configuration.Repositories, flagRepositoriesDescriptionConstant)
	command.Flags().String(
		flagUnknownPolicyNameConstant,
		configuration.UnknownRepositoryPolicy,
		flags.FormatChoiceUsage(configuration.UnknownRepositoryPolicy, catalog.SelectorPolicyValues(), flagUnknownPolicyDescriptionConstant),
	)
}

func (builder *CommandBuilder) runStatus(command *cobra.Command, arguments []string) error {
	service, selection, resolveError := builder.prepare(command, arguments)
	if resolveError != nil {
		return resolveError
	}

	if statusError := service.Status(command.Context(), selection); statusError != nil {
		return fmt.Errorf(statusExecutionErrorTemplateConstant, statusError)
	}
	return nil
}

func (builder *CommandBuilder) runPull(command *cobra.Command, arguments []string) error {
	service, selection, resolveError := builder.prepare(command, arguments)
	if resolveError != nil {
		return resolveError
	}

	requireClean, _ := command.Flags().GetBool(flagRequireCleanNameConstant)
	if !command.Flags().Changed(flagRequireCleanNameConstant) {
		requireClean = builder.resolveConfiguration().RequireClean
	}

	pullError := service.Pull(command.Context(), PullOptions{Selection: selection, RequireClean: requireClean})
	if pullError != nil {
		return fmt.Errorf(pullExecutionErrorTemplateConstant, pullError)
	}
	return nil
}

func (builder *CommandBuilder) prepare(command *cobra.Command, arguments []string) (*Service, workspace.Selection, error) {
	if len(arguments) > 0 {
		return nil, workspace.Selection{}, errUnexpectedArguments
	}

	configuration := builder.resolveConfiguration()

	selectors, _ := command.Flags().GetStringSlice(flagRepositoriesNameConstant)
	if !command.Flags().Changed(flagRepositoriesNameConstant) {
		selectors = configuration.Repositories
	}
	policyValue, _ := command.Flags().GetString(flagUnknownPolicyNameConstant)
	if !command.Flags().Changed(flagUnknownPolicyNameConstant) {
		policyValue = configuration.UnknownRepositoryPolicy
	}

	selectorPolicy, policyError := catalog.ParseSelectorPolicy(policyValue)
	if policyError != nil {
		return nil, workspace.Selection{}, policyError
	}

	if builder.WorkspaceProvider == nil {
		return nil, workspace.Selection{}, ErrWorkspaceNotConfigured
	}
	commandWorkspace, workspaceError := builder.WorkspaceProvider()
	if workspaceError != nil {
		return nil, workspace.Selection{}, workspaceError
	}

	selection, selectionError := commandWorkspace.Select(selectors, selectorPolicy)
	if selectionError != nil {
		return nil, workspace.Selection{}, selectionError
	}

	executor, executorError := builder.resolveExecutor()
	if executorError != nil {
		return nil, workspace.Selection{}, executorError
	}

	service, serviceError := NewService(executor, builder.resolveOutputWriter(command), builder.resolveErrorWriter(command))
	if serviceError != nil {
		return nil, workspace.Selection{}, serviceError
	}

	return service, selection, nil
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

func (builder *CommandBuilder) resolveExecutor() (GitExecutor, error) {
	if builder.Executor != nil {
		return builder.Executor, nil
	}

	logger := builder.resolveLogger()
	commandRunner := execshell.NewOSCommandRunner()
	shellExecutor, creationError := execshell.NewShellExecutor(logger, commandRunner, ui.NewConsoleCommandEventLogger(logger))
	if creationError != nil {
		return nil, creationError
	}

	return shellExecutor, nil
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}

	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}

	return logger
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
