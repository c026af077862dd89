package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	pathutils "github.com/temirov/fleet/internal/utils/path"
)

const (
	// AllSelector symbolically expands to every repository in the catalog.
	AllSelector = "all"

	selectorSeparatorConstant                 = ","
	catalogPathRequiredMessageConstant        = "catalog path must be provided"
	catalogLoadErrorTemplateConstant          = "failed to load repository catalog: %w"
	catalogParseErrorTemplateConstant         = "failed to parse repository catalog: %w"
	catalogEmptyMessageConstant               = "repository catalog must define at least one repository"
	catalogNameRequiredMessageConstant        = "repository catalog entries must have non-empty names"
	catalogDuplicateNameTemplateConstant      = "repository catalog defines duplicate name %q"
	unknownRepositoryErrorTemplateConstant    = "unknown repository %q"
	unsupportedPolicyErrorTemplateConstant    = "unsupported selector policy: %s"
	emptySelectorsErrorMessageConstant        = "at least one repository selector must be provided"
	mixedAllSelectorErrorMessageConstant      = "the all selector cannot be combined with explicit repository names"
)

var catalogHomeDirectoryExpander = pathutils.NewHomeExpander()

// ErrEmptyCatalog indicates the catalog document listed no repositories.
var ErrEmptyCatalog = errors.New(catalogEmptyMessageConstant)

// ErrEmptySelectors indicates no repository selector was supplied.
var ErrEmptySelectors = errors.New(emptySelectorsErrorMessageConstant)

// ErrMixedAllSelector indicates the symbolic all selector was combined with explicit names.
var ErrMixedAllSelector = errors.New(mixedAllSelectorErrorMessageConstant)

// UnknownRepositoryError reports a selector naming a repository outside the catalog.
type UnknownRepositoryError struct {
	Name string
}

// Error describes the unknown repository selector.
func (unknownError UnknownRepositoryError) Error() string {
	return fmt.Sprintf(unknownRepositoryErrorTemplateConstant, unknownError.Name)
}

// SelectorPolicy controls how unknown repository selectors are treated during resolution.
type SelectorPolicy string

// Supported selector policies.
const (
	SelectorPolicySkip  SelectorPolicy = "skip"
	SelectorPolicyAbort SelectorPolicy = "abort"
)

// SelectorPolicyValues lists the accepted selector policy names for flag usage strings.
func SelectorPolicyValues() []string {
	return []string{string(SelectorPolicySkip), string(SelectorPolicyAbort)}
}

// ParseSelectorPolicy validates a textual policy value.
func ParseSelectorPolicy(candidate string) (SelectorPolicy, error) {
	normalized := strings.ToLower(strings.TrimSpace(candidate))
	switch SelectorPolicy(normalized) {
	case SelectorPolicySkip:
		return SelectorPolicySkip, nil
	case SelectorPolicyAbort:
		return SelectorPolicyAbort, nil
	default:
		return "", fmt.Errorf(unsupportedPolicyErrorTemplateConstant, candidate)
	}
}

// Repository identifies one known product repository in the fleet.
type Repository struct {
	Name string `yaml:"name" mapstructure:"name"`
	Path string `yaml:"path" mapstructure:"path"`
}

// Directory resolves the repository worktree location beneath the provided root.
func (repository Repository) Directory(root string) string {
	relativePath := repository.Path
	if len(strings.TrimSpace(relativePath)) == 0 {
		relativePath = repository.Name
	}
	return filepath.Join(catalogHomeDirectoryExpander.Expand(root), relativePath)
}

type catalogDocument struct {
	Repositories []Repository `yaml:"repositories"`
}

// Catalog holds the canonical ordered list of known repositories.
type Catalog struct {
	repositories []Repository
	nameIndex    map[string]int
}

// New constructs a Catalog from the provided repositories, validating names.
func New(repositories []Repository) (Catalog, error) {
	if len(repositories) == 0 {
		return Catalog{}, ErrEmptyCatalog
	}

	nameIndex := make(map[string]int, len(repositories))
	orderedRepositories := make([]Repository, 0, len(repositories))
	for _, repository := range repositories {
		trimmedName := strings.TrimSpace(repository.Name)
		if len(trimmedName) == 0 {
			return Catalog{}, errors.New(catalogNameRequiredMessageConstant)
		}
		normalizedName := strings.ToLower(trimmedName)
		if _, exists := nameIndex[normalizedName]; exists {
			return Catalog{}, fmt.Errorf(catalogDuplicateNameTemplateConstant, trimmedName)
		}
		repository.Name = trimmedName
		nameIndex[normalizedName] = len(orderedRepositories)
		orderedRepositories = append(orderedRepositories, repository)
	}

	return Catalog{repositories: orderedRepositories, nameIndex: nameIndex}, nil
}

// Load reads a YAML catalog document from disk and validates it.
func Load(catalogPath string) (Catalog, error) {
	trimmedPath := strings.TrimSpace(catalogPath)
	if len(trimmedPath) == 0 {
		return Catalog{}, errors.New(catalogPathRequiredMessageConstant)
	}

	contentBytes, readError := os.ReadFile(catalogHomeDirectoryExpander.Expand(trimmedPath))
	if readError != nil {
		return Catalog{}, fmt.Errorf(catalogLoadErrorTemplateConstant, readError)
	}

	var document catalogDocument
	if unmarshalError := yaml.Unmarshal(contentBytes, &document); unmarshalError != nil {
		return Catalog{}, fmt.Errorf(catalogParseErrorTemplateConstant, unmarshalError)
	}

	return New(document.Repositories)
}

// Repositories returns the catalog entries in declaration order.
func (catalog Catalog) Repositories() []Repository {
	duplicated := make([]Repository, len(catalog.repositories))
	copy(duplicated, catalog.repositories)
	return duplicated
}

// Resolution captures the outcome of expanding repository selectors.
type Resolution struct {
	Repositories []Repository
	Skipped      []string
}

// Resolve expands selectors against the catalog honoring the supplied policy.
//
// The symbolic all selector expands to every repository in declaration order.
// Explicit selectors resolve case-insensitively and preserve caller order;
// unknown names either abort resolution or are collected into Skipped.
func (catalog Catalog) Resolve(selectors []string, policy SelectorPolicy) (Resolution, error) {
	normalizedSelectors := splitSelectors(selectors)
	if len(normalizedSelectors) == 0 {
		return Resolution{}, ErrEmptySelectors
	}

	if containsAllSelector(normalizedSelectors) {
		if len(normalizedSelectors) > 1 {
			return Resolution{}, ErrMixedAllSelector
		}
		return Resolution{Repositories: catalog.Repositories()}, nil
	}

	resolution := Resolution{}
	for _, selector := range normalizedSelectors {
		repositoryIndex, known := catalog.nameIndex[strings.ToLower(selector)]
		if !known {
			if policy == SelectorPolicyAbort {
				return Resolution{}, UnknownRepositoryError{Name: selector}
			}
			resolution.Skipped = append(resolution.Skipped, selector)
			continue
		}
		resolution.Repositories = append(resolution.Repositories, catalog.repositories[repositoryIndex])
	}

	return resolution, nil
}

func splitSelectors(selectors []string) []string {
	var normalized []string
	for _, selector := range selectors {
		for _, fragment := range strings.Split(selector, selectorSeparatorConstant) {
			trimmedFragment := strings.TrimSpace(fragment)
			if len(trimmedFragment) == 0 {
				continue
			}
			normalized = append(normalized, trimmedFragment)
		}
	}
	return normalized
}

func containsAllSelector(selectors []string) bool {
	for _, selector := range selectors {
		if strings.EqualFold(selector, AllSelector) {
			return true
		}
	}
	return false
}
