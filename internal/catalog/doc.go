// Package catalog maintains the canonical list of known fleet repositories.
//
// Every command validates its repository selector against one shared Catalog,
// loaded from a YAML document, and expands the symbolic "all" selector through
// Resolve. Unknown selectors are skipped or abort resolution depending on the
// configured SelectorPolicy.
package catalog
