package audit

import (
	"sort"

	"github.com/temirov/fleet/internal/manifest"
)

// ConflictGroup reports a package id referenced at more than one distinct version.
type ConflictGroup struct {
	PackageID string
	Versions  []string
}

// Detection captures the outcome of one conflict-detection pass.
type Detection struct {
	Records       []manifest.DependencyRecord
	Conflicts     []ConflictGroup
	conflictIndex map[string]struct{}
}

// HasConflicts reports whether any package id is referenced at multiple versions.
func (detection Detection) HasConflicts() bool {
	return len(detection.Conflicts) > 0
}

// IsConflicting reports whether the given package id belongs to a conflict group.
func (detection Detection) IsConflicting(packageID string) bool {
	_, conflicting := detection.conflictIndex[packageID]
	return conflicting
}

// DetectConflicts groups dependency records by package id and flags ids with
// more than one distinct version.
//
// The detection is a pure function of record content: identical record sets
// produce identical conflict groups regardless of input order. Duplicate
// (package id, version) pairs count once no matter how many projects declare
// them. When skipDevelopmentDependencies is set, development-only records are
// discarded before any grouping and never appear in the returned table.
func DetectConflicts(records []manifest.DependencyRecord, skipDevelopmentDependencies bool) Detection {
	consideredRecords := records
	if skipDevelopmentDependencies {
		consideredRecords = manifest.FilterDevelopmentDependencies(records)
	}

	distinctVersionsByPackage := make(map[string]map[string]struct{})
	for _, record := range consideredRecords {
		versions, exists := distinctVersionsByPackage[record.PackageID]
		if !exists {
			versions = make(map[string]struct{})
			distinctVersionsByPackage[record.PackageID] = versions
		}
		versions[record.Version] = struct{}{}
	}

	conflictIndex := make(map[string]struct{})
	var conflicts []ConflictGroup
	for packageID, versions := range distinctVersionsByPackage {
		if len(versions) < 2 {
			continue
		}

		sortedVersions := make([]string, 0, len(versions))
		for version := range versions {
			sortedVersions = append(sortedVersions, version)
		}
		sort.Strings(sortedVersions)

		conflictIndex[packageID] = struct{}{}
		conflicts = append(conflicts, ConflictGroup{PackageID: packageID, Versions: sortedVersions})
	}

	sort.Slice(conflicts, func(firstIndex int, secondIndex int) bool {
		return conflicts[firstIndex].PackageID < conflicts[secondIndex].PackageID
	})

	return Detection{Records: consideredRecords, Conflicts: conflicts, conflictIndex: conflictIndex}
}
