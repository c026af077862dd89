package cli

import (
	"context"
	"errors"
	"fmt"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/fleet/internal/audit"
	"github.com/temirov/fleet/internal/catalog"
	"github.com/temirov/fleet/internal/depgraph"
	"github.com/temirov/fleet/internal/gitops"
	"github.com/temirov/fleet/internal/hooks"
	"github.com/temirov/fleet/internal/packages"
	"github.com/temirov/fleet/internal/utils"
	"github.com/temirov/fleet/internal/workspace"
)

const (
	applicationNameConstant                 = "fleet"
	applicationShortDescriptionConstant     = "Repository-management automation for a multi-repository product line"
	applicationLongDescriptionConstant      = "fleet orchestrates git operations, package dependency auditing, dependency graph export, package builds, and git hook installation across a fixed set of product repositories."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format (structured or console)."
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	fleetConfigurationKeyConstant           = "fleet"
	fleetRootConfigKeyConstant              = fleetConfigurationKeyConstant + ".root"
	fleetCatalogConfigKeyConstant           = fleetConfigurationKeyConstant + ".catalog"
	environmentPrefixConstant               = "FLEET"
	configurationNameConstant               = "fleet"
	configurationTypeConstant               = "yaml"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	loggerNotInitializedMessageConstant     = "logger not initialized"
	rootCommandInfoMessageConstant          = "fleet CLI executed"
	logFieldCommandNameConstant             = "command_name"
	logFieldArgumentCountConstant           = "argument_count"
	defaultConfigurationSearchPathConstant  = "."
	commandsConfigurationKeyConstant        = "commands"
	auditConfigurationKeyConstant           = commandsConfigurationKeyConstant + ".audit"
	graphConfigurationKeyConstant           = commandsConfigurationKeyConstant + ".graph"
	gitConfigurationKeyConstant             = commandsConfigurationKeyConstant + ".git"
	packagesConfigurationKeyConstant        = commandsConfigurationKeyConstant + ".packages"
	hooksConfigurationKeyConstant           = commandsConfigurationKeyConstant + ".hooks"
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common   ApplicationCommonConfiguration   `mapstructure:"common"`
	Fleet    FleetConfiguration               `mapstructure:"fleet"`
	Commands ApplicationCommandsConfiguration `mapstructure:"commands"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// FleetConfiguration locates the fleet root directory and the repository catalog.
//
// Repositories may be listed inline; otherwise the catalog file at
// CatalogPath is loaded.
type FleetConfiguration struct {
	Root         string               `mapstructure:"root"`
	CatalogPath  string               `mapstructure:"catalog"`
	Repositories []catalog.Repository `mapstructure:"repositories"`
}

// ApplicationCommandsConfiguration holds per-command configuration sections.
type ApplicationCommandsConfiguration struct {
	Audit    audit.CommandConfiguration    `mapstructure:"audit"`
	Graph    depgraph.CommandConfiguration `mapstructure:"graph"`
	Git      gitops.CommandConfiguration   `mapstructure:"git"`
	Packages packages.CommandConfiguration `mapstructure:"packages"`
	Hooks    hooks.CommandConfiguration    `mapstructure:"hooks"`
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand           *cobra.Command
	configurationLoader   *utils.ConfigurationLoader
	loggerFactory         *utils.LoggerFactory
	logger                *zap.Logger
	configuration         ApplicationConfiguration
	configurationMetadata utils.LoadedConfiguration
	configurationFilePath string
	logLevelFlagValue     string
	logFormatFlagValue    string
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		[]string{defaultConfigurationSearchPathConstant},
	)

	application := &Application{
		configurationLoader: configurationLoader,
		loggerFactory:       utils.NewLoggerFactory(),
		logger:              zap.NewNop(),
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRootCommand(command, arguments)
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)

	loggerProvider := func() *zap.Logger {
		return application.logger
	}
	workspaceProvider := application.resolveWorkspace

	gitBuilder := gitops.CommandBuilder{
		LoggerProvider:    loggerProvider,
		WorkspaceProvider: workspaceProvider,
		ConfigurationProvider: func() gitops.CommandConfiguration {
			return application.configuration.Commands.Git
		},
	}
	if statusCommand, statusBuildError := gitBuilder.BuildStatusCommand(); statusBuildError == nil {
		cobraCommand.AddCommand(statusCommand)
	}
	if pullCommand, pullBuildError := gitBuilder.BuildPullCommand(); pullBuildError == nil {
		cobraCommand.AddCommand(pullCommand)
	}

	auditBuilder := audit.CommandBuilder{
		WorkspaceProvider: workspaceProvider,
		ConfigurationProvider: func() audit.CommandConfiguration {
			return application.configuration.Commands.Audit
		},
	}
	if auditCommand, auditBuildError := auditBuilder.Build(); auditBuildError == nil {
		cobraCommand.AddCommand(auditCommand)
	}

	graphBuilder := depgraph.CommandBuilder{
		WorkspaceProvider: workspaceProvider,
		ConfigurationProvider: func() depgraph.CommandConfiguration {
			return application.configuration.Commands.Graph
		},
	}
	if graphCommand, graphBuildError := graphBuilder.Build(); graphBuildError == nil {
		cobraCommand.AddCommand(graphCommand)
	}

	packagesBuilder := packages.CommandBuilder{
		LoggerProvider:    loggerProvider,
		WorkspaceProvider: workspaceProvider,
		ConfigurationProvider: func() packages.CommandConfiguration {
			return application.configuration.Commands.Packages
		},
	}
	if packagesCommand, packagesBuildError := packagesBuilder.Build(); packagesBuildError == nil {
		cobraCommand.AddCommand(packagesCommand)
	}

	hooksBuilder := hooks.CommandBuilder{
		WorkspaceProvider: workspaceProvider,
		ConfigurationProvider: func() hooks.CommandConfiguration {
			return application.configuration.Commands.Hooks
		},
	}
	if hooksCommand, hooksBuildError := hooksBuilder.Build(); hooksBuildError == nil {
		cobraCommand.AddCommand(hooksCommand)
	}

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// ExecuteWithArguments runs the command hierarchy with explicit arguments
// instead of os.Args.
func (application *Application) ExecuteWithArguments(arguments []string) error {
	application.rootCommand.SetArgs(arguments)
	return application.Execute()
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatStructured),
		fleetRootConfigKeyConstant:       "",
		fleetCatalogConfigKeyConstant:    "",
	}
	for configurationKey, configurationValue := range audit.DefaultConfigurationValues(auditConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}
	for configurationKey, configurationValue := range depgraph.DefaultConfigurationValues(graphConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}
	for configurationKey, configurationValue := range gitops.DefaultConfigurationValues(gitConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}
	for configurationKey, configurationValue := range packages.DefaultConfigurationValues(packagesConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}
	for configurationKey, configurationValue := range hooks.DefaultConfigurationValues(hooksConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	logger, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = logger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)

	return nil
}

func (application *Application) resolveWorkspace() (workspace.Workspace, error) {
	repositoryCatalog, catalogError := application.resolveCatalog()
	if catalogError != nil {
		return workspace.Workspace{}, catalogError
	}

	return workspace.New(application.configuration.Fleet.Root, repositoryCatalog)
}

func (application *Application) resolveCatalog() (catalog.Catalog, error) {
	if len(application.configuration.Fleet.Repositories) > 0 {
		return catalog.New(application.configuration.Fleet.Repositories)
	}
	return catalog.Load(application.configuration.Fleet.CatalogPath)
}

func (application *Application) runRootCommand(command *cobra.Command, arguments []string) error {
	if application.logger == nil {
		return errors.New(loggerNotInitializedMessageConstant)
	}

	application.logger.Debug(
		rootCommandInfoMessageConstant,
		zap.String(logFieldCommandNameConstant, command.Name()),
		zap.Int(logFieldArgumentCountConstant, len(arguments)),
	)

	return command.Help()
}

func (application *Application) flushLogger() error {
	return application.syncLoggerInstance(application.logger)
}

func (application *Application) syncLoggerInstance(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}

	syncError := logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}
