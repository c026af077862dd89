package cli_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/stretchr/testify/require"

	"github.com/temirov/fleet/cmd/cli"
	"github.com/temirov/fleet/internal/audit"
)

const (
	testConfigurationFileNameConstant = "fleet.yaml"
	testConfigurationTemplateConstant = "common:\n" +
		"  log_level: error\n" +
		"  log_format: structured\n" +
		"fleet:\n" +
		"  root: %s\n" +
		"  repositories:\n" +
		"%s"
	testRepositoryEntryTemplateConstant = "    - name: %s\n"
	conflictingManifestTemplateConstant = "<?xml version=\"1.0\" encoding=\"utf-8\"?>\n" +
		"<packages>\n" +
		"  <package id=\"PkgX\" version=\"%s\" />\n" +
		"</packages>\n"
)

func writeConfiguration(testInstance *testing.T, fleetRoot string, repositoryNames ...string) string {
	testInstance.Helper()

	repositoryEntries := ""
	for _, repositoryName := range repositoryNames {
		repositoryEntries += fmt.Sprintf(testRepositoryEntryTemplateConstant, repositoryName)
	}

	configurationPath := filepath.Join(testInstance.TempDir(), testConfigurationFileNameConstant)
	configurationContent := fmt.Sprintf(testConfigurationTemplateConstant, fleetRoot, repositoryEntries)
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(configurationContent), 0o644))

	return configurationPath
}

func writeRepositoryManifest(testInstance *testing.T, fleetRoot string, repositoryName string, projectName string, packageVersion string) {
	testInstance.Helper()

	projectDirectory := filepath.Join(fleetRoot, repositoryName, "source", projectName)
	require.NoError(testInstance, os.MkdirAll(projectDirectory, 0o755))

	manifestContent := fmt.Sprintf(conflictingManifestTemplateConstant, packageVersion)
	require.NoError(testInstance, os.WriteFile(filepath.Join(projectDirectory, "packages.config"), []byte(manifestContent), 0o644))
}

func TestExecuteAuditSignalsConflicts(testInstance *testing.T) {
	fleetRoot := testInstance.TempDir()
	writeRepositoryManifest(testInstance, fleetRoot, "alpha", "ProjectA", "1.0.0")
	writeRepositoryManifest(testInstance, fleetRoot, "beta", "ProjectB", "2.0.0")
	configurationPath := writeConfiguration(testInstance, fleetRoot, "alpha", "beta")

	application := cli.NewApplication()
	executionError := application.ExecuteWithArguments([]string{"--config", configurationPath, "audit"})

	require.ErrorIs(testInstance, executionError, audit.ErrConflictsFound)
}

func TestExecuteAuditPassesWithoutConflicts(testInstance *testing.T) {
	fleetRoot := testInstance.TempDir()
	writeRepositoryManifest(testInstance, fleetRoot, "alpha", "ProjectA", "1.0.0")
	writeRepositoryManifest(testInstance, fleetRoot, "beta", "ProjectB", "1.0.0")
	configurationPath := writeConfiguration(testInstance, fleetRoot, "alpha", "beta")

	application := cli.NewApplication()
	executionError := application.ExecuteWithArguments([]string{"--config", configurationPath, "audit"})

	require.NoError(testInstance, executionError)
}

func TestExecuteGraphWritesOutputFile(testInstance *testing.T) {
	fleetRoot := testInstance.TempDir()
	writeRepositoryManifest(testInstance, fleetRoot, "alpha", "ProjectA", "1.0.0")
	configurationPath := writeConfiguration(testInstance, fleetRoot, "alpha")
	outputPath := filepath.Join(testInstance.TempDir(), "graph.txt")

	application := cli.NewApplication()
	executionError := application.ExecuteWithArguments([]string{
		"--config", configurationPath,
		"graph", "--output", outputPath,
	})

	require.NoError(testInstance, executionError)

	graphContent, readError := os.ReadFile(outputPath)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, "1 ProjectA\n2 PkgX\n#\n1 2\n", string(graphContent))
}

func TestExecuteAuditRequiresCatalog(testInstance *testing.T) {
	application := cli.NewApplication()

	executionError := application.ExecuteWithArguments([]string{"audit"})

	require.Error(testInstance, executionError)
	require.Contains(testInstance, executionError.Error(), "catalog path must be provided")
}

func TestExecuteHonorsRepositorySelectors(testInstance *testing.T) {
	fleetRoot := testInstance.TempDir()
	writeRepositoryManifest(testInstance, fleetRoot, "alpha", "ProjectA", "1.0.0")
	writeRepositoryManifest(testInstance, fleetRoot, "beta", "ProjectB", "2.0.0")
	configurationPath := writeConfiguration(testInstance, fleetRoot, "alpha", "beta")

	application := cli.NewApplication()
	executionError := application.ExecuteWithArguments([]string{
		"--config", configurationPath,
		"audit", "--repos", "alpha",
	})

	require.NoError(testInstance, executionError)
}

func TestApplicationConfigurationDecoding(testInstance *testing.T) {
	rawConfiguration := map[string]any{
		"common": map[string]any{
			"log_level":  "debug",
			"log_format": "console",
		},
		"fleet": map[string]any{
			"root":    "~/fleet",
			"catalog": "/etc/fleet/catalog.yaml",
		},
		"commands": map[string]any{
			"audit": map[string]any{
				"repos":    []string{"alpha", "beta"},
				"skip_dev": true,
			},
			"hooks": map[string]any{
				"source":   "/etc/fleet/hooks",
				"on_error": "abort",
			},
		},
	}

	var decodedConfiguration cli.ApplicationConfiguration
	decoder, decoderError := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "mapstructure",
		Result:  &decodedConfiguration,
	})
	require.NoError(testInstance, decoderError)
	require.NoError(testInstance, decoder.Decode(rawConfiguration))

	require.Equal(testInstance, "debug", decodedConfiguration.Common.LogLevel)
	require.Equal(testInstance, "~/fleet", decodedConfiguration.Fleet.Root)
	require.Equal(testInstance, "/etc/fleet/catalog.yaml", decodedConfiguration.Fleet.CatalogPath)
	require.Equal(testInstance, []string{"alpha", "beta"}, decodedConfiguration.Commands.Audit.Repositories)
	require.True(testInstance, decodedConfiguration.Commands.Audit.SkipDevelopmentDependencies)
	require.Equal(testInstance, "abort", decodedConfiguration.Commands.Hooks.OnError)
}

func TestNewApplicationRegistersCommandSurface(testInstance *testing.T) {
	fleetRoot := testInstance.TempDir()
	writeRepositoryManifest(testInstance, fleetRoot, "alpha", "ProjectA", "1.0.0")
	configurationPath := writeConfiguration(testInstance, fleetRoot, "alpha")

	for _, commandArguments := range [][]string{
		{"status", "--help"},
		{"pull", "--help"},
		{"audit", "--help"},
		{"graph", "--help"},
		{"packages", "--help"},
		{"hooks", "--help"},
	} {
		application := cli.NewApplication()
		arguments := append([]string{"--config", configurationPath}, commandArguments...)
		require.NoError(testInstance, application.ExecuteWithArguments(arguments))
	}
}
