package packages_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/fleet/internal/execshell"
	"github.com/temirov/fleet/internal/packages"
	"github.com/temirov/fleet/internal/workspace"
)

type recordedInvocation struct {
	tool      execshell.CommandName
	arguments []string
}

type scriptedResult struct {
	result         execshell.ExecutionResult
	executionError error
}

type stubToolExecutor struct {
	scriptedResults     []scriptedResult
	recordedInvocations []recordedInvocation
}

func (executor *stubToolExecutor) nextResult() (execshell.ExecutionResult, error) {
	if len(executor.scriptedResults) == 0 {
		return execshell.ExecutionResult{}, nil
	}
	scripted := executor.scriptedResults[0]
	executor.scriptedResults = executor.scriptedResults[1:]
	return scripted.result, scripted.executionError
}

func (executor *stubToolExecutor) ExecuteNuget(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedInvocations = append(executor.recordedInvocations, recordedInvocation{tool: execshell.CommandNuget, arguments: details.Arguments})
	return executor.nextResult()
}

func (executor *stubToolExecutor) ExecuteDotnet(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedInvocations = append(executor.recordedInvocations, recordedInvocation{tool: execshell.CommandDotnet, arguments: details.Arguments})
	return executor.nextResult()
}

func buildTarget(repositoryName string, directory string) workspace.RepositoryTarget {
	return workspace.RepositoryTarget{Name: repositoryName, Directory: directory}
}

func TestNewServiceRequiresExecutor(testInstance *testing.T) {
	service, creationError := packages.NewService(nil, &bytes.Buffer{}, &bytes.Buffer{})

	require.ErrorIs(testInstance, creationError, packages.ErrToolExecutorNotConfigured)
	require.Nil(testInstance, service)
}

func TestResolveVersionParsesListingOutput(testInstance *testing.T) {
	executor := &stubToolExecutor{
		scriptedResults: []scriptedResult{
			{result: execshell.ExecutionResult{StandardOutput: "Fleet.Core 3.2.1\n"}},
		},
	}

	service, creationError := packages.NewService(executor, &bytes.Buffer{}, &bytes.Buffer{})
	require.NoError(testInstance, creationError)

	resolvedVersion, resolveError := service.ResolveVersion(context.Background(), buildTarget("Fleet.Core", "/fleet/core"))

	require.NoError(testInstance, resolveError)
	require.Equal(testInstance, "3.2.1", resolvedVersion)
	require.Len(testInstance, executor.recordedInvocations, 1)
	require.Equal(testInstance, execshell.CommandNuget, executor.recordedInvocations[0].tool)
	require.Equal(testInstance, []string{"list", "Fleet.Core", "-NonInteractive"}, executor.recordedInvocations[0].arguments)
}

func TestResolveVersionFailsWhenTokenMissing(testInstance *testing.T) {
	executor := &stubToolExecutor{
		scriptedResults: []scriptedResult{
			{result: execshell.ExecutionResult{StandardOutput: "No packages found.\n"}},
		},
	}

	service, creationError := packages.NewService(executor, &bytes.Buffer{}, &bytes.Buffer{})
	require.NoError(testInstance, creationError)

	_, resolveError := service.ResolveVersion(context.Background(), buildTarget("Fleet.Core", "/fleet/core"))

	require.Error(testInstance, resolveError)
	require.Contains(testInstance, resolveError.Error(), "failed to resolve version of Fleet.Core")
}

func TestBuildAndPackageRunsRestoreBuildPack(testInstance *testing.T) {
	executor := &stubToolExecutor{
		scriptedResults: []scriptedResult{
			{},
			{},
			{result: execshell.ExecutionResult{StandardOutput: "Attempting to build package.\nSuccessfully created package '/fleet/core/artifacts/Fleet.Core.3.2.1.nupkg'.\n"}},
		},
	}

	service, creationError := packages.NewService(executor, &bytes.Buffer{}, &bytes.Buffer{})
	require.NoError(testInstance, creationError)

	packagePaths, buildError := service.BuildAndPackage(context.Background(), buildTarget("Fleet.Core", "/fleet/core"), "3.2.1")

	require.NoError(testInstance, buildError)
	require.Equal(testInstance, []string{"/fleet/core/artifacts/Fleet.Core.3.2.1.nupkg"}, packagePaths)

	require.Len(testInstance, executor.recordedInvocations, 3)
	require.Equal(testInstance, execshell.CommandNuget, executor.recordedInvocations[0].tool)
	require.Equal(testInstance, "restore", executor.recordedInvocations[0].arguments[0])
	require.Equal(testInstance, execshell.CommandDotnet, executor.recordedInvocations[1].tool)
	require.Equal(testInstance, []string{"build", "/fleet/core/source", "--configuration", "Release"}, executor.recordedInvocations[1].arguments)
	require.Equal(testInstance, execshell.CommandNuget, executor.recordedInvocations[2].tool)
	require.Contains(testInstance, executor.recordedInvocations[2].arguments, "-Version")
	require.Contains(testInstance, executor.recordedInvocations[2].arguments, "3.2.1")
}

func TestBuildAndPackageFailsWithoutProducedPackages(testInstance *testing.T) {
	executor := &stubToolExecutor{
		scriptedResults: []scriptedResult{
			{},
			{},
			{result: execshell.ExecutionResult{StandardOutput: "Attempting to build package.\n"}},
		},
	}

	service, creationError := packages.NewService(executor, &bytes.Buffer{}, &bytes.Buffer{})
	require.NoError(testInstance, creationError)

	_, buildError := service.BuildAndPackage(context.Background(), buildTarget("Fleet.Core", "/fleet/core"), "3.2.1")

	require.Error(testInstance, buildError)
	require.Contains(testInstance, buildError.Error(), "pack produced no package files for Fleet.Core")
}

func TestBuildAndPackageAbortsWhenBuildFails(testInstance *testing.T) {
	executor := &stubToolExecutor{
		scriptedResults: []scriptedResult{
			{},
			{executionError: errors.New("compilation error")},
		},
	}

	service, creationError := packages.NewService(executor, &bytes.Buffer{}, &bytes.Buffer{})
	require.NoError(testInstance, creationError)

	_, buildError := service.BuildAndPackage(context.Background(), buildTarget("Fleet.Core", "/fleet/core"), "3.2.1")

	require.Error(testInstance, buildError)
	require.Contains(testInstance, buildError.Error(), "failed to build Fleet.Core")
	require.Len(testInstance, executor.recordedInvocations, 2)
}

func TestPushPublishesEveryPackage(testInstance *testing.T) {
	executor := &stubToolExecutor{}
	outputBuffer := &bytes.Buffer{}
	service, creationError := packages.NewService(executor, outputBuffer, &bytes.Buffer{})
	require.NoError(testInstance, creationError)

	pushError := service.Push(context.Background(), []string{"/a/one.nupkg", "/a/two.nupkg"}, "https://packages.example.test/feed")

	require.NoError(testInstance, pushError)
	require.Len(testInstance, executor.recordedInvocations, 2)
	require.Equal(testInstance, []string{"push", "/a/one.nupkg", "-NonInteractive", "-Source", "https://packages.example.test/feed"}, executor.recordedInvocations[0].arguments)
	require.Contains(testInstance, outputBuffer.String(), "/a/two.nupkg")
}

func TestPushAbortsOnFirstFailure(testInstance *testing.T) {
	executor := &stubToolExecutor{
		scriptedResults: []scriptedResult{
			{executionError: errors.New("unauthorized")},
		},
	}

	service, creationError := packages.NewService(executor, &bytes.Buffer{}, &bytes.Buffer{})
	require.NoError(testInstance, creationError)

	pushError := service.Push(context.Background(), []string{"/a/one.nupkg", "/a/two.nupkg"}, "")

	require.Error(testInstance, pushError)
	require.Contains(testInstance, pushError.Error(), "failed to push package /a/one.nupkg")
	require.Len(testInstance, executor.recordedInvocations, 1)
}
