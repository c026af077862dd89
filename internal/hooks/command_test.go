package hooks_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/temirov/fleet/internal/catalog"
	"github.com/temirov/fleet/internal/hooks"
	"github.com/temirov/fleet/internal/workspace"
)

func buildInstallCommand(testInstance *testing.T, builder *hooks.CommandBuilder) *cobra.Command {
	testInstance.Helper()

	parentCommand, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	for _, subcommand := range parentCommand.Commands() {
		if subcommand.Name() == "install" {
			subcommand.SetContext(context.Background())
			return subcommand
		}
	}

	testInstance.Fatal("install subcommand not registered")
	return nil
}

func buildWorkspaceProvider(testInstance *testing.T, root string, repositoryNames ...string) hooks.WorkspaceProvider {
	testInstance.Helper()

	repositories := make([]catalog.Repository, 0, len(repositoryNames))
	for _, repositoryName := range repositoryNames {
		repositories = append(repositories, catalog.Repository{Name: repositoryName})
	}

	repositoryCatalog, catalogError := catalog.New(repositories)
	require.NoError(testInstance, catalogError)

	return func() (workspace.Workspace, error) {
		return workspace.New(root, repositoryCatalog)
	}
}

func TestInstallCommandInstallsHooks(testInstance *testing.T) {
	fleetRoot := testInstance.TempDir()
	target := createRepository(testInstance, fleetRoot, "alpha")
	sourceDirectory := writeHookSource(testInstance, "pre-commit")

	builder := &hooks.CommandBuilder{
		WorkspaceProvider: buildWorkspaceProvider(testInstance, fleetRoot, "alpha"),
		OutputWriter:      &bytes.Buffer{},
		ErrorWriter:       &bytes.Buffer{},
	}

	installCommand := buildInstallCommand(testInstance, builder)
	require.NoError(testInstance, installCommand.Flags().Set("source", sourceDirectory))

	require.NoError(testInstance, installCommand.RunE(installCommand, nil))

	_, statError := os.Stat(filepath.Join(target.Directory, ".git", "hooks", "pre-commit"))
	require.NoError(testInstance, statError)
}

func TestInstallCommandHonorsOnErrorFlag(testInstance *testing.T) {
	fleetRoot := testInstance.TempDir()
	require.NoError(testInstance, os.MkdirAll(filepath.Join(fleetRoot, "broken"), 0o755))
	sourceDirectory := writeHookSource(testInstance, "pre-commit")

	builder := &hooks.CommandBuilder{
		WorkspaceProvider: buildWorkspaceProvider(testInstance, fleetRoot, "broken"),
		OutputWriter:      &bytes.Buffer{},
		ErrorWriter:       &bytes.Buffer{},
	}

	installCommand := buildInstallCommand(testInstance, builder)
	require.NoError(testInstance, installCommand.Flags().Set("source", sourceDirectory))
	require.NoError(testInstance, installCommand.Flags().Set("on-error", "abort"))

	installError := installCommand.RunE(installCommand, nil)

	require.Error(testInstance, installError)
	require.Contains(testInstance, installError.Error(), "has no .git directory")
}

func TestInstallCommandDefaultsToSkipPolicy(testInstance *testing.T) {
	fleetRoot := testInstance.TempDir()
	require.NoError(testInstance, os.MkdirAll(filepath.Join(fleetRoot, "broken"), 0o755))
	healthyTarget := createRepository(testInstance, fleetRoot, "healthy")
	sourceDirectory := writeHookSource(testInstance, "pre-commit")

	errorBuffer := &bytes.Buffer{}
	builder := &hooks.CommandBuilder{
		WorkspaceProvider: buildWorkspaceProvider(testInstance, fleetRoot, "broken", "healthy"),
		OutputWriter:      &bytes.Buffer{},
		ErrorWriter:       errorBuffer,
	}

	installCommand := buildInstallCommand(testInstance, builder)
	require.NoError(testInstance, installCommand.Flags().Set("source", sourceDirectory))

	require.NoError(testInstance, installCommand.RunE(installCommand, nil))
	require.Contains(testInstance, errorBuffer.String(), "skipping broken")

	_, statError := os.Stat(filepath.Join(healthyTarget.Directory, ".git", "hooks", "pre-commit"))
	require.NoError(testInstance, statError)
}

func TestInstallCommandRejectsPositionalArguments(testInstance *testing.T) {
	builder := &hooks.CommandBuilder{
		WorkspaceProvider: buildWorkspaceProvider(testInstance, testInstance.TempDir(), "alpha"),
	}

	installCommand := buildInstallCommand(testInstance, builder)

	require.Error(testInstance, installCommand.RunE(installCommand, []string{"unexpected"}))
}

func TestInstallCommandRequiresWorkspaceProvider(testInstance *testing.T) {
	builder := &hooks.CommandBuilder{}

	installCommand := buildInstallCommand(testInstance, builder)

	require.ErrorIs(testInstance, installCommand.RunE(installCommand, nil), hooks.ErrWorkspaceNotConfigured)
}
