package packages

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
	parentCommandUseConstant               = "packages"
	parentCommandShortDescriptionConstant  = "Build, version, and publish fleet packages"
	versionCommandUseConstant              = "version"
	versionCommandShortDescription         = "Resolve the package version of each repository"
	versionExecutionErrorTemplateConstant  = "package version resolution failed: %w"
	buildCommandUseConstant                = "build"
	buildCommandShortDescriptionConstant   = "Build and pack each repository"
	buildCommandLongDescriptionConstant    = "build restores, builds, and packs the selected repositories. With --local the package carries a locally-scoped version suffix and is substituted into the manifests of the other selected repositories."
	buildExecutionErrorTemplateConstant    = "package build failed: %w"
	pushCommandUseConstant                 = "push"
	pushCommandShortDescriptionConstant    = "Build and publish each repository's package"
	pushExecutionErrorTemplateConstant     = "package publish failed: %w"
	unexpectedArgumentsMessageConstant     = "package commands do not accept positional arguments"
	flagRepositoriesNameConstant           = "repos"
	flagRepositoriesDescriptionConstant    = "Repositories to include (comma separated names or 'all')"
	flagLocalNameConstant                  = "local"
	flagLocalDescriptionConstant           = "Build a locally-scoped package and substitute it into dependent repositories"
	flagSourceNameConstant                 = "source"
	flagSourceDescriptionConstant          = "Package source URL to publish to"
	flagUnknownPolicyNameConstant          = "on-unknown"
	flagUnknownPolicyDescriptionConstant   = "Behavior when a selector names an unknown repository"
	workspaceNotConfiguredMessage          = "workspace provider not configured"
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// ErrWorkspaceNotConfigured indicates the command builder was missing a workspace provider.
var ErrWorkspaceNotConfigured = errors.New(workspaceNotConfiguredMessage)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// WorkspaceProvider supplies the resolved fleet workspace.
type WorkspaceProvider func() (workspace.Workspace, error)

// ConfigurationProvider supplies the effective packages configuration.
type ConfigurationProvider func() CommandConfiguration

// CommandBuilder assembles the Cobra command tree for package workflows.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	WorkspaceProvider     WorkspaceProvider
	ConfigurationProvider ConfigurationProvider
	Executor              ToolExecutor
	OutputWriter          io.Writer
	ErrorWriter           io.Writer
}

// Build constructs the packages command with its version, build, and push subcommands.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	parentCommand := &cobra.Command{
		Use:   parentCommandUseConstant,
		Short: parentCommandShortDescriptionConstant,
	}

	configuration := builder.resolveConfiguration()

	versionCommand := &cobra.Command{
		Use:   versionCommandUseConstant,
		Short: versionCommandShortDescription,
		RunE:  builder.runVersion,
	}
	builder.registerSelectionFlags(versionCommand, configuration)

	buildCommand := &cobra.Command{
		Use:   buildCommandUseConstant,
		Short: buildCommandShortDescriptionConstant,
		Long:  buildCommandLongDescriptionConstant,
		RunE:  builder.runBuild,
	}
	builder.registerSelectionFlags(buildCommand, configuration)
	buildCommand.Flags().Bool(flagLocalNameConstant, configuration.Local, flagLocalDescriptionConstant)

	pushCommand := &cobra.Command{
		Use:   pushCommandUseConstant,
		Short: pushCommandShortDescriptionConstant,
		RunE:  builder.runPush,
	}
	builder.registerSelectionFlags(pushCommand, configuration)
	pushCommand.Flags().String(flagSourceNameConstant, configuration.SourceURL, flagSourceDescriptionConstant)

	parentCommand.AddCommand(versionCommand, buildCommand, pushCommand)

	return parentCommand, nil
}

func (builder *CommandBuilder) registerSelectionFlags(command *cobra.Command, configuration CommandConfiguration) {
	command.Flags().StringSlice(flagRepositoriesNameConstant, configuration.Repositories, flagRepositoriesDescriptionConstant)
	command.Flags().String(
		flagUnknownPolicyNameConstant,
		configuration.UnknownRepositoryPolicy,
		flags.FormatChoiceUsage(configuration.UnknownRepositoryPolicy, catalog.SelectorPolicyValues(), flagUnknownPolicyDescriptionConstant),
	)
}

func (builder *CommandBuilder) runVersion(command *cobra.Command, arguments []string) error {
	service, selection, prepareError := builder.prepare(command, arguments)
	if prepareError != nil {
		return prepareError
	}

	if versionError := service.RunVersion(command.Context(), selection); versionError != nil {
		return fmt.Errorf(versionExecutionErrorTemplateConstant, versionError)
	}
	return nil
}

func (builder *CommandBuilder) runBuild(command *cobra.Command, arguments []string) error {
	service, selection, prepareError := builder.prepare(command, arguments)
	if prepareError != nil {
		return prepareError
	}

	localBuild, _ := command.Flags().GetBool(flagLocalNameConstant)
	if !command.Flags().Changed(flagLocalNameConstant) {
		localBuild = builder.resolveConfiguration().Local
	}

	buildError := service.RunBuild(command.Context(), BuildOptions{Selection: selection, Local: localBuild})
	if buildError != nil {
		return fmt.Errorf(buildExecutionErrorTemplateConstant, buildError)
	}
	return nil
}

func (builder *CommandBuilder) runPush(command *cobra.Command, arguments []string) error {
	service, selection, prepareError := builder.prepare(command, arguments)
	if prepareError != nil {
		return prepareError
	}

	sourceURL, _ := command.Flags().GetString(flagSourceNameConstant)
	if !command.Flags().Changed(flagSourceNameConstant) {
		sourceURL = builder.resolveConfiguration().SourceURL
	}

	pushError := service.RunPush(command.Context(), PushOptions{Selection: selection, SourceURL: sourceURL})
	if pushError != nil {
		return fmt.Errorf(pushExecutionErrorTemplateConstant, pushError)
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

func (builder *CommandBuilder) resolveExecutor() (ToolExecutor, error) {
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
