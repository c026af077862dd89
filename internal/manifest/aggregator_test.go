package manifest_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/fleet/internal/manifest"
)

type stubScanner struct {
	recordsByRoot map[string][]manifest.DependencyRecord
	scanErrors    map[string]error
	scannedRoots  []string
}

func (scanner *stubScanner) Scan(repositoryRoot string) ([]manifest.DependencyRecord, error) {
	scanner.scannedRoots = append(scanner.scannedRoots, repositoryRoot)
	if scanError, exists := scanner.scanErrors[repositoryRoot]; exists {
		return nil, scanError
	}
	return scanner.recordsByRoot[repositoryRoot], nil
}

func TestAggregatePreservesRepositoryThenDiscoveryOrder(testInstance *testing.T) {
	scanner := &stubScanner{
		recordsByRoot: map[string][]manifest.DependencyRecord{
			"/fleet/core": {
				{ReferencingProject: "Core.Lib", PackageID: "PkgA", Version: "1.0.0"},
				{ReferencingProject: "Core.Lib", PackageID: "PkgB", Version: "2.0.0"},
			},
			"/fleet/web": {
				{ReferencingProject: "Web.App", PackageID: "PkgA", Version: "1.0.0"},
			},
		},
	}

	aggregated, aggregateError := manifest.Aggregate(scanner, []string{"/fleet/core", "/fleet/web"})
	require.NoError(testInstance, aggregateError)
	require.Equal(testInstance, []string{"/fleet/core", "/fleet/web"}, scanner.scannedRoots)
	require.Len(testInstance, aggregated, 3)
	require.Equal(testInstance, "Core.Lib", aggregated[0].ReferencingProject)
	require.Equal(testInstance, "PkgB", aggregated[1].PackageID)
	require.Equal(testInstance, "Web.App", aggregated[2].ReferencingProject)
}

func TestAggregateAbortsOnFirstScanError(testInstance *testing.T) {
	scanError := errors.New("malformed manifest")
	scanner := &stubScanner{
		recordsByRoot: map[string][]manifest.DependencyRecord{
			"/fleet/web": {{ReferencingProject: "Web.App", PackageID: "PkgA", Version: "1.0.0"}},
		},
		scanErrors: map[string]error{"/fleet/core": scanError},
	}

	aggregated, aggregateError := manifest.Aggregate(scanner, []string{"/fleet/core", "/fleet/web"})
	require.ErrorIs(testInstance, aggregateError, scanError)
	require.Nil(testInstance, aggregated)
	require.Equal(testInstance, []string{"/fleet/core"}, scanner.scannedRoots)
}

func TestFilterDevelopmentDependenciesRemovesFlaggedRecords(testInstance *testing.T) {
	records := []manifest.DependencyRecord{
		{ReferencingProject: "Web.App", PackageID: "PkgA", Version: "1.0.0"},
		{ReferencingProject: "Web.App", PackageID: "PkgDevOnly", Version: "0.1.0", IsDevelopmentDependency: true},
		{ReferencingProject: "Web.App", PackageID: "PkgB", Version: "2.0.0"},
	}

	filtered := manifest.FilterDevelopmentDependencies(records)
	require.Len(testInstance, filtered, 2)
	for _, record := range filtered {
		require.False(testInstance, record.IsDevelopmentDependency)
		require.NotEqual(testInstance, "PkgDevOnly", record.PackageID)
	}
}
