package manifest

import (
	"encoding/xml"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	manifestFileNameConstant               = "packages.config"
	manifestReadErrorTemplateConstant      = "failed to read manifest %s: %w"
	manifestParseErrorTemplateConstant     = "failed to parse manifest %s: %w"
	manifestAttributeErrorTemplateConstant = "failed to parse manifest %s: invalid developmentDependency value %q for package %s"
	manifestWalkErrorTemplateConstant      = "failed to scan repository %s: %w"
)

// DependencyRecord captures one package reference declared by a project manifest.
type DependencyRecord struct {
	ReferencingProject      string
	PackageID               string
	Version                 string
	IsDevelopmentDependency bool
}

type manifestDocument struct {
	XMLName  xml.Name        `xml:"packages"`
	Packages []manifestEntry `xml:"package"`
}

type manifestEntry struct {
	ID                    string `xml:"id,attr"`
	Version               string `xml:"version,attr"`
	DevelopmentDependency string `xml:"developmentDependency,attr"`
}

// Scanner locates and parses package manifests beneath a repository root.
type Scanner struct{}

// NewScanner constructs a manifest Scanner.
func NewScanner() *Scanner {
	return &Scanner{}
}

// Scan walks the repository tree and returns one DependencyRecord per manifest entry.
//
// The owning project name is derived from the manifest's parent directory.
// A malformed manifest fails the whole scan rather than being skipped.
func (scanner *Scanner) Scan(repositoryRoot string) ([]DependencyRecord, error) {
	var records []DependencyRecord

	walkError := filepath.WalkDir(repositoryRoot, func(candidatePath string, directoryEntry fs.DirEntry, entryError error) error {
		if entryError != nil {
			return entryError
		}
		if directoryEntry.IsDir() {
			return nil
		}
		if !strings.EqualFold(directoryEntry.Name(), manifestFileNameConstant) {
			return nil
		}

		manifestRecords, parseError := parseManifestFile(candidatePath)
		if parseError != nil {
			return parseError
		}
		records = append(records, manifestRecords...)
		return nil
	})
	if walkError != nil {
		return nil, fmt.Errorf(manifestWalkErrorTemplateConstant, repositoryRoot, walkError)
	}

	return records, nil
}

func parseManifestFile(manifestPath string) ([]DependencyRecord, error) {
	contentBytes, readError := os.ReadFile(manifestPath)
	if readError != nil {
		return nil, fmt.Errorf(manifestReadErrorTemplateConstant, manifestPath, readError)
	}

	var document manifestDocument
	if unmarshalError := xml.Unmarshal(contentBytes, &document); unmarshalError != nil {
		return nil, fmt.Errorf(manifestParseErrorTemplateConstant, manifestPath, unmarshalError)
	}

	referencingProject := filepath.Base(filepath.Dir(manifestPath))

	records := make([]DependencyRecord, 0, len(document.Packages))
	for _, packageEntry := range document.Packages {
		isDevelopmentDependency := false
		trimmedAttribute := strings.TrimSpace(packageEntry.DevelopmentDependency)
		if len(trimmedAttribute) > 0 {
			parsedValue, parseError := strconv.ParseBool(strings.ToLower(trimmedAttribute))
			if parseError != nil {
				return nil, fmt.Errorf(manifestAttributeErrorTemplateConstant, manifestPath, packageEntry.DevelopmentDependency, packageEntry.ID)
			}
			isDevelopmentDependency = parsedValue
		}

		records = append(records, DependencyRecord{
			ReferencingProject:      referencingProject,
			PackageID:               packageEntry.ID,
			Version:                 packageEntry.Version,
			IsDevelopmentDependency: isDevelopmentDependency,
		})
	}

	return records, nil
}
