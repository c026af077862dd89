package workspace

import (
	"errors"

	"github.com/temirov/fleet/internal/catalog"
)

const rootRequiredMessageConstant = "fleet root directory must be configured"

// ErrRootNotConfigured indicates the fleet root directory was missing.
var ErrRootNotConfigured = errors.New(rootRequiredMessageConstant)

// RepositoryTarget pairs a catalog entry with its resolved worktree directory.
type RepositoryTarget struct {
	Name      string
	Directory string
}

// Workspace combines the fleet root directory with the repository catalog.
type Workspace struct {
	Root    string
	Catalog catalog.Catalog
}

// New validates and constructs a Workspace.
func New(root string, repositoryCatalog catalog.Catalog) (Workspace, error) {
	if len(root) == 0 {
		return Workspace{}, ErrRootNotConfigured
	}
	return Workspace{Root: root, Catalog: repositoryCatalog}, nil
}

// Selection captures resolved repository targets plus skipped selector names.
type Selection struct {
	Targets []RepositoryTarget
	Skipped []string
}

// Select expands repository selectors into concrete worktree directories.
func (workspace Workspace) Select(selectors []string, policy catalog.SelectorPolicy) (Selection, error) {
	resolution, resolveError := workspace.Catalog.Resolve(selectors, policy)
	if resolveError != nil {
		return Selection{}, resolveError
	}

	selection := Selection{Skipped: resolution.Skipped}
	for _, repository := range resolution.Repositories {
		selection.Targets = append(selection.Targets, RepositoryTarget{
			Name:      repository.Name,
			Directory: repository.Directory(workspace.Root),
		})
	}
	return selection, nil
}
