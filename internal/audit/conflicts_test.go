package audit_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/fleet/internal/audit"
	"github.com/temirov/fleet/internal/manifest"
)

func buildDependencyRecord(projectName string, packageID string, version string, isDevelopmentDependency bool) manifest.DependencyRecord {
	return manifest.DependencyRecord{
		ReferencingProject:      projectName,
		PackageID:               packageID,
		Version:                 version,
		IsDevelopmentDependency: isDevelopmentDependency,
	}
}

func TestDetectConflicts(testInstance *testing.T) {
	testCases := []struct {
		name                        string
		records                     []manifest.DependencyRecord
		skipDevelopmentDependencies bool
		expectedConflicts           []audit.ConflictGroup
	}{
		{
			name: "two_distinct_versions_conflict",
			records: []manifest.DependencyRecord{
				buildDependencyRecord("ProjectA", "PkgX", "1.0.0", false),
				buildDependencyRecord("ProjectB", "PkgX", "2.0.0", false),
			},
			expectedConflicts: []audit.ConflictGroup{
				{PackageID: "PkgX", Versions: []string{"1.0.0", "2.0.0"}},
			},
		},
		{
			name: "single_version_across_projects_is_clean",
			records: []manifest.DependencyRecord{
				buildDependencyRecord("ProjectA", "PkgX", "1.0.0", false),
				buildDependencyRecord("ProjectB", "PkgX", "1.0.0", false),
				buildDependencyRecord("ProjectC", "PkgX", "1.0.0", false),
			},
			expectedConflicts: nil,
		},
		{
			name: "development_dependency_excluded_when_skipped",
			records: []manifest.DependencyRecord{
				buildDependencyRecord("ProjectA", "PkgDevOnly", "1.0.0", true),
				buildDependencyRecord("ProjectB", "PkgDevOnly", "2.0.0", true),
				buildDependencyRecord("ProjectA", "PkgX", "1.0.0", false),
			},
			skipDevelopmentDependencies: true,
			expectedConflicts:           nil,
		},
		{
			name: "development_dependency_counted_by_default",
			records: []manifest.DependencyRecord{
				buildDependencyRecord("ProjectA", "PkgDevOnly", "1.0.0", true),
				buildDependencyRecord("ProjectB", "PkgDevOnly", "2.0.0", true),
			},
			expectedConflicts: []audit.ConflictGroup{
				{PackageID: "PkgDevOnly", Versions: []string{"1.0.0", "2.0.0"}},
			},
		},
		{
			name: "conflict_groups_sorted_by_package_id",
			records: []manifest.DependencyRecord{
				buildDependencyRecord("ProjectA", "Zeta", "1.0.0", false),
				buildDependencyRecord("ProjectB", "Zeta", "2.0.0", false),
				buildDependencyRecord("ProjectA", "Alpha", "3.0.0", false),
				buildDependencyRecord("ProjectB", "Alpha", "4.0.0", false),
			},
			expectedConflicts: []audit.ConflictGroup{
				{PackageID: "Alpha", Versions: []string{"3.0.0", "4.0.0"}},
				{PackageID: "Zeta", Versions: []string{"1.0.0", "2.0.0"}},
			},
		},
		{
			name: "duplicate_pairs_count_once",
			records: []manifest.DependencyRecord{
				buildDependencyRecord("ProjectA", "PkgX", "1.0.0", false),
				buildDependencyRecord("ProjectB", "PkgX", "1.0.0", false),
				buildDependencyRecord("ProjectC", "PkgX", "1.0.0", false),
				buildDependencyRecord("ProjectD", "PkgX", "2.0.0", false),
			},
			expectedConflicts: []audit.ConflictGroup{
				{PackageID: "PkgX", Versions: []string{"1.0.0", "2.0.0"}},
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			detection := audit.DetectConflicts(testCase.records, testCase.skipDevelopmentDependencies)

			require.Equal(subtestInstance, testCase.expectedConflicts, detection.Conflicts)
			require.Equal(subtestInstance, len(testCase.expectedConflicts) > 0, detection.HasConflicts())
		})
	}
}

func TestDetectConflictsIsOrderInvariant(testInstance *testing.T) {
	records := []manifest.DependencyRecord{
		buildDependencyRecord("ProjectA", "PkgX", "1.0.0", false),
		buildDependencyRecord("ProjectB", "PkgX", "2.0.0", false),
		buildDependencyRecord("ProjectC", "PkgY", "5.0.0", false),
	}
	reversedRecords := []manifest.DependencyRecord{records[2], records[1], records[0]}

	forwardDetection := audit.DetectConflicts(records, false)
	reversedDetection := audit.DetectConflicts(reversedRecords, false)

	require.Equal(testInstance, forwardDetection.Conflicts, reversedDetection.Conflicts)
}

func TestDetectConflictsIndexesConflictingPackages(testInstance *testing.T) {
	records := []manifest.DependencyRecord{
		buildDependencyRecord("ProjectA", "PkgX", "1.0.0", false),
		buildDependencyRecord("ProjectB", "PkgX", "2.0.0", false),
		buildDependencyRecord("ProjectA", "PkgY", "1.0.0", false),
	}

	detection := audit.DetectConflicts(records, false)

	require.True(testInstance, detection.IsConflicting("PkgX"))
	require.False(testInstance, detection.IsConflicting("PkgY"))
	require.False(testInstance, detection.IsConflicting("PkgMissing"))
}
