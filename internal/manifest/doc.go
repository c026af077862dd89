// Package manifest discovers and parses per-project package manifests.
//
// Scanner walks a repository tree for packages.config documents and emits one
// DependencyRecord per declared package; Aggregate unions the records across an
// ordered list of repository roots, preserving discovery order for downstream
// graph index assignment.
package manifest
