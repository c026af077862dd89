package packages

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/temirov/fleet/internal/workspace"
)

const (
	packageFileExtensionConstant          = ".nupkg"
	manifestFileNameConstant              = "packages.config"
	artifactListFailureTemplateConstant   = "failed to list artifacts of %s: %w"
	substitutionWalkFailureTemplate       = "failed to scan dependent repository %s: %w"
	substitutionWriteFailureTemplate      = "failed to update manifest %s: %w"
	versionAttributePatternTemplate       = `(?i)(<package\b[^>]*\bid="%s"[^>]*\bversion=")[^"]*(")`
	versionAttributeReplacementTemplate   = "${1}%s${2}"
	manifestFilePermissionsConstant       = 0o644
)

// ListArtifactVersions reads previously packed versions of the repository's
// package from its artifacts directory. A missing directory means no
// artifacts have been produced yet.
func ListArtifactVersions(target workspace.RepositoryTarget) ([]string, error) {
	artifactsDirectory := filepath.Join(target.Directory, artifactsDirectoryNameConstant)

	directoryEntries, readError := os.ReadDir(artifactsDirectory)
	if readError != nil {
		if os.IsNotExist(readError) {
			return nil, nil
		}
		return nil, fmt.Errorf(artifactListFailureTemplateConstant, target.Name, readError)
	}

	packageFilePrefix := target.Name + "."
	var versions []string
	for _, directoryEntry := range directoryEntries {
		fileName := directoryEntry.Name()
		if !strings.HasPrefix(fileName, packageFilePrefix) || !strings.HasSuffix(fileName, packageFileExtensionConstant) {
			continue
		}
		version := strings.TrimSuffix(strings.TrimPrefix(fileName, packageFilePrefix), packageFileExtensionConstant)
		if len(version) > 0 {
			versions = append(versions, version)
		}
	}

	return versions, nil
}

// SubstitutePackageVersion rewrites the version attribute of every manifest
// entry referencing the package across the dependent repository trees. It
// returns the number of manifests modified.
//
// The rewrite is textual so manifest formatting survives; entries are
// expected to carry the id attribute before the version attribute.
func SubstitutePackageVersion(repositoryRoots []string, packageID string, newVersion string) (int, error) {
	versionPattern, compileError := regexp.Compile(fmt.Sprintf(versionAttributePatternTemplate, regexp.QuoteMeta(packageID)))
	if compileError != nil {
		return 0, compileError
	}
	replacement := fmt.Sprintf(versionAttributeReplacementTemplate, newVersion)

	modifiedCount := 0
	for _, repositoryRoot := range repositoryRoots {
		walkError := filepath.WalkDir(repositoryRoot, func(currentPath string, directoryEntry fs.DirEntry, visitError error) error {
			if visitError != nil {
				return visitError
			}
			if directoryEntry.IsDir() || !strings.EqualFold(directoryEntry.Name(), manifestFileNameConstant) {
				return nil
			}

			manifestContent, readError := os.ReadFile(currentPath)
			if readError != nil {
				return readError
			}

			rewrittenContent := versionPattern.ReplaceAll(manifestContent, []byte(replacement))
			if string(rewrittenContent) == string(manifestContent) {
				return nil
			}

			if writeError := os.WriteFile(currentPath, rewrittenContent, manifestFilePermissionsConstant); writeError != nil {
				return fmt.Errorf(substitutionWriteFailureTemplate, currentPath, writeError)
			}
			modifiedCount++
			return nil
		})
		if walkError != nil {
			return modifiedCount, fmt.Errorf(substitutionWalkFailureTemplate, repositoryRoot, walkError)
		}
	}

	return modifiedCount, nil
}
