// Package gitops runs git status and fast-forward pulls across the fleet
// repositories sequentially, in selection order.
package gitops
