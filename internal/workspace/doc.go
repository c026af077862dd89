// Package workspace resolves repository selectors into concrete worktree
// directories by combining the configured fleet root with the catalog.
package workspace
