package gitops_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/fleet/internal/catalog"
	"github.com/temirov/fleet/internal/gitops"
	"github.com/temirov/fleet/internal/workspace"
)

func buildWorkspaceProvider(testInstance *testing.T, repositoryNames ...string) gitops.WorkspaceProvider {
	testInstance.Helper()

	repositories := make([]catalog.Repository, 0, len(repositoryNames))
	for _, repositoryName := range repositoryNames {
		repositories = append(repositories, catalog.Repository{Name: repositoryName})
	}

	repositoryCatalog, catalogError := catalog.New(repositories)
	require.NoError(testInstance, catalogError)

	return func() (workspace.Workspace, error) {
		return workspace.New("/fleet", repositoryCatalog)
	}
}

func TestStatusCommandRunsAcrossSelection(testInstance *testing.T) {
	executor := &stubGitExecutor{}
	outputBuffer := &bytes.Buffer{}
	builder := &gitops.CommandBuilder{
		WorkspaceProvider: buildWorkspaceProvider(testInstance, "alpha", "beta"),
		Executor:          executor,
		OutputWriter:      outputBuffer,
		ErrorWriter:       &bytes.Buffer{},
	}

	command, buildError := builder.BuildStatusCommand()
	require.NoError(testInstance, buildError)

	command.SetContext(context.Background())
	require.NoError(testInstance, command.RunE(command, nil))

	require.Len(testInstance, executor.recordedCommands, 2)
	require.Contains(testInstance, outputBuffer.String(), "== alpha")
	require.Contains(testInstance, outputBuffer.String(), "== beta")
}

func TestStatusCommandHonorsSelectors(testInstance *testing.T) {
	executor := &stubGitExecutor{}
	builder := &gitops.CommandBuilder{
		WorkspaceProvider: buildWorkspaceProvider(testInstance, "alpha", "beta"),
		Executor:          executor,
		OutputWriter:      &bytes.Buffer{},
		ErrorWriter:       &bytes.Buffer{},
	}

	command, buildError := builder.BuildStatusCommand()
	require.NoError(testInstance, buildError)
	require.NoError(testInstance, command.Flags().Set("repos", "beta"))

	command.SetContext(context.Background())
	require.NoError(testInstance, command.RunE(command, nil))

	require.Len(testInstance, executor.recordedCommands, 1)
	require.Equal(testInstance, "/fleet/beta", executor.recordedCommands[0].WorkingDirectory)
}

func TestPullCommandPassesRequireCleanFlag(testInstance *testing.T) {
	executor := &stubGitExecutor{}
	builder := &gitops.CommandBuilder{
		WorkspaceProvider: buildWorkspaceProvider(testInstance, "alpha"),
		Executor:          executor,
		OutputWriter:      &bytes.Buffer{},
		ErrorWriter:       &bytes.Buffer{},
	}

	command, buildError := builder.BuildPullCommand()
	require.NoError(testInstance, buildError)
	require.NoError(testInstance, command.Flags().Set("require-clean", "true"))

	command.SetContext(context.Background())
	require.NoError(testInstance, command.RunE(command, nil))

	require.Len(testInstance, executor.recordedCommands, 3)
	require.Equal(testInstance, []string{"status", "--porcelain"}, executor.recordedCommands[0].Arguments)
	require.Equal(testInstance, []string{"fetch", "--prune"}, executor.recordedCommands[1].Arguments)
	require.Equal(testInstance, []string{"pull", "--ff-only"}, executor.recordedCommands[2].Arguments)
}

func TestCommandsRejectPositionalArguments(testInstance *testing.T) {
	builder := &gitops.CommandBuilder{
		WorkspaceProvider: buildWorkspaceProvider(testInstance, "alpha"),
		Executor:          &stubGitExecutor{},
	}

	statusCommand, statusBuildError := builder.BuildStatusCommand()
	require.NoError(testInstance, statusBuildError)
	statusCommand.SetContext(context.Background())
	require.Error(testInstance, statusCommand.RunE(statusCommand, []string{"unexpected"}))

	pullCommand, pullBuildError := builder.BuildPullCommand()
	require.NoError(testInstance, pullBuildError)
	pullCommand.SetContext(context.Background())
	require.Error(testInstance, pullCommand.RunE(pullCommand, []string{"unexpected"}))
}

func TestCommandsRequireWorkspaceProvider(testInstance *testing.T) {
	builder := &gitops.CommandBuilder{Executor: &stubGitExecutor{}}

	command, buildError := builder.BuildStatusCommand()
	require.NoError(testInstance, buildError)

	command.SetContext(context.Background())
	require.ErrorIs(testInstance, command.RunE(command, nil), gitops.ErrWorkspaceNotConfigured)
}
