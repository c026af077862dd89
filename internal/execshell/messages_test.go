package execshell

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildStartedMessageForGitPullNamesWorkingDirectory(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name: CommandGit,
		Details: CommandDetails{
			Arguments:        []string{"pull", "--ff-only"},
			WorkingDirectory: "/workspace/repo",
		},
	}

	message := formatter.BuildStartedMessage(command)

	require.Equal(t, "Pulling latest changes in /workspace/repo", message)
}

func TestBuildFailureMessageForNugetPushIncludesExitCodeAndStandardError(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name: CommandNuget,
		Details: CommandDetails{
			Arguments: []string{"push", "Product.Core.1.2.3.nupkg"},
		},
	}
	result := ExecutionResult{ExitCode: 1, StandardError: "409 Conflict"}

	message := formatter.BuildFailureMessage(command, result)

	require.Equal(t, "Failed to push package Product.Core.1.2.3.nupkg (exit code 1: 409 Conflict)", message)
}

func TestBuildSuccessMessageForDotnetBuildNamesWorkingDirectory(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name: CommandDotnet,
		Details: CommandDetails{
			Arguments:        []string{"build", "Product.sln"},
			WorkingDirectory: "/workspace/product",
		},
	}

	message := formatter.BuildSuccessMessage(command)

	require.Equal(t, "Built solution in /workspace/product", message)
}

func TestBuildExecutionFailureMessageFallsBackToGenericLabel(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name:    CommandGit,
		Details: CommandDetails{Arguments: []string{"rev-parse", "HEAD"}},
	}

	message := formatter.BuildExecutionFailureMessage(command, errors.New("executable not found"))

	require.Equal(t, "git rev-parse HEAD failed: executable not found", message)
}

func TestBuildStartedMessageWithoutWorkingDirectoryUsesCurrentDirectoryLabel(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name:    CommandNuget,
		Details: CommandDetails{Arguments: []string{"restore"}},
	}

	message := formatter.BuildStartedMessage(command)

	require.Equal(t, "Restoring packages in current directory", message)
}
