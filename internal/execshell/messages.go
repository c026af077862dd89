package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackSubjectLabelConstant            = "package"
)

const (
	gitStatusSubcommandNameConstant  = "status"
	gitPullSubcommandNameConstant    = "pull"
	gitFetchSubcommandNameConstant   = "fetch"
	nugetRestoreSubcommandConstant   = "restore"
	nugetPackSubcommandConstant      = "pack"
	nugetPushSubcommandConstant      = "push"
	dotnetBuildSubcommandConstant    = "build"
	gitStatusStartTemplateConstant   = "Reviewing working tree status in %s"
	gitStatusSuccessTemplate         = "Collected working tree status for %s"
	gitStatusFailureTemplate         = "Failed to review working tree status in %s (exit code %d%s)"
	gitStatusExecutionFailureFormat  = "Unable to review working tree status in %s: %s"
	gitPullStartTemplateConstant     = "Pulling latest changes in %s"
	gitPullSuccessTemplateConstant   = "Pulled latest changes in %s"
	gitPullFailureTemplateConstant   = "Failed to pull latest changes in %s (exit code %d%s)"
	gitPullExecutionFailureTemplate  = "Unable to pull latest changes in %s: %s"
	gitFetchStartTemplateConstant    = "Fetching updates in %s"
	gitFetchSuccessTemplateConstant  = "Fetched updates in %s"
	gitFetchFailureTemplateConstant  = "Failed to fetch updates in %s (exit code %d%s)"
	gitFetchExecutionFailureTemplate = "Unable to fetch updates in %s: %s"
	restoreStartTemplateConstant     = "Restoring packages in %s"
	restoreSuccessTemplateConstant   = "Restored packages in %s"
	restoreFailureTemplateConstant   = "Failed to restore packages in %s (exit code %d%s)"
	restoreExecutionFailureTemplate  = "Unable to restore packages in %s: %s"
	packStartTemplateConstant        = "Packing %s in %s"
	packSuccessTemplateConstant      = "Packed %s in %s"
	packFailureTemplateConstant      = "Failed to pack %s in %s (exit code %d%s)"
	packExecutionFailureTemplate     = "Unable to pack %s in %s: %s"
	pushStartTemplateConstant        = "Pushing package %s"
	pushSuccessTemplateConstant      = "Pushed package %s"
	pushFailureTemplateConstant      = "Failed to push package %s (exit code %d%s)"
	pushExecutionFailureTemplate     = "Unable to push package %s: %s"
	buildStartTemplateConstant       = "Building solution in %s"
	buildSuccessTemplateConstant     = "Built solution in %s"
	buildFailureTemplateConstant     = "Failed to build solution in %s (exit code %d%s)"
	buildExecutionFailureTemplate    = "Unable to build solution in %s: %s"
)

// CommandMessageFormatter builds human-readable messages describing command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	switch command.Name {
	case CommandGit:
		return formatter.describeGitMessage(command, result, failure, stage)
	case CommandNuget:
		return formatter.describeNugetMessage(command, result, failure, stage)
	case CommandDotnet:
		return formatter.describeDotnetMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if len(command.Details.Arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	workingDirectory := formatter.describeWorkingDirectory(command)
	switch command.Details.Arguments[0] {
	case gitStatusSubcommandNameConstant:
		return formatter.renderStagedMessage(stage,
			fmt.Sprintf(gitStatusStartTemplateConstant, workingDirectory),
			fmt.Sprintf(gitStatusSuccessTemplate, workingDirectory),
			fmt.Sprintf(gitStatusFailureTemplate, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError)),
			fmt.Sprintf(gitStatusExecutionFailureFormat, workingDirectory, formatter.describeFailure(failure)),
		)
	case gitPullSubcommandNameConstant:
		return formatter.renderStagedMessage(stage,
			fmt.Sprintf(gitPullStartTemplateConstant, workingDirectory),
			fmt.Sprintf(gitPullSuccessTemplateConstant, workingDirectory),
			fmt.Sprintf(gitPullFailureTemplateConstant, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError)),
			fmt.Sprintf(gitPullExecutionFailureTemplate, workingDirectory, formatter.describeFailure(failure)),
		)
	case gitFetchSubcommandNameConstant:
		return formatter.renderStagedMessage(stage,
			fmt.Sprintf(gitFetchStartTemplateConstant, workingDirectory),
			fmt.Sprintf(gitFetchSuccessTemplateConstant, workingDirectory),
			fmt.Sprintf(gitFetchFailureTemplateConstant, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError)),
			fmt.Sprintf(gitFetchExecutionFailureTemplate, workingDirectory, formatter.describeFailure(failure)),
		)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeNugetMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if len(command.Details.Arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	workingDirectory := formatter.describeWorkingDirectory(command)
	switch command.Details.Arguments[0] {
	case nugetRestoreSubcommandConstant:
		return formatter.renderStagedMessage(stage,
			fmt.Sprintf(restoreStartTemplateConstant, workingDirectory),
			fmt.Sprintf(restoreSuccessTemplateConstant, workingDirectory),
			fmt.Sprintf(restoreFailureTemplateConstant, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError)),
			fmt.Sprintf(restoreExecutionFailureTemplate, workingDirectory, formatter.describeFailure(failure)),
		)
	case nugetPackSubcommandConstant:
		subject := formatter.describeArgument(command.Details.Arguments, 1)
		return formatter.renderStagedMessage(stage,
			fmt.Sprintf(packStartTemplateConstant, subject, workingDirectory),
			fmt.Sprintf(packSuccessTemplateConstant, subject, workingDirectory),
			fmt.Sprintf(packFailureTemplateConstant, subject, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError)),
			fmt.Sprintf(packExecutionFailureTemplate, subject, workingDirectory, formatter.describeFailure(failure)),
		)
	case nugetPushSubcommandConstant:
		subject := formatter.describeArgument(command.Details.Arguments, 1)
		return formatter.renderStagedMessage(stage,
			fmt.Sprintf(pushStartTemplateConstant, subject),
			fmt.Sprintf(pushSuccessTemplateConstant, subject),
			fmt.Sprintf(pushFailureTemplateConstant, subject, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError)),
			fmt.Sprintf(pushExecutionFailureTemplate, subject, formatter.describeFailure(failure)),
		)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeDotnetMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if len(command.Details.Arguments) == 0 || command.Details.Arguments[0] != dotnetBuildSubcommandConstant {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	workingDirectory := formatter.describeWorkingDirectory(command)
	return formatter.renderStagedMessage(stage,
		fmt.Sprintf(buildStartTemplateConstant, workingDirectory),
		fmt.Sprintf(buildSuccessTemplateConstant, workingDirectory),
		fmt.Sprintf(buildFailureTemplateConstant, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError)),
		fmt.Sprintf(buildExecutionFailureTemplate, workingDirectory, formatter.describeFailure(failure)),
	)
}

func (formatter CommandMessageFormatter) renderStagedMessage(stage messageStage, startMessage string, successMessage string, failureMessage string, executionFailureMessage string) string {
	switch stage {
	case messageStageStart:
		return startMessage
	case messageStageSuccess:
		return successMessage
	case messageStageFailure:
		return failureMessage
	default:
		return executionFailureMessage
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandParts := []string{string(command.Name)}
	if len(command.Details.Arguments) > 0 {
		commandParts = append(commandParts, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	commandLabel := strings.Join(commandParts, commandArgumentsJoinSeparatorConstant)
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, formatter.formatWorkingDirectorySuffix(command))
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeArgument(arguments []string, index int) string {
	if index >= len(arguments) {
		return fallbackSubjectLabelConstant
	}
	return arguments[index]
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}
