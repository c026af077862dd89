// Package depgraph builds the project-to-package dependency graph from
// aggregated manifests and serializes it as indexed node and edge lists.
package depgraph
