// Package audit detects conflicting package versions across repository manifests
// and renders the conflict report.
package audit
