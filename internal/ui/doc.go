// Package ui formats command lifecycle events and report output for the console.
//
// ConsoleCommandEventLogger adapts execshell command events into human-readable
// log lines, and the style helpers give errors, warnings, and the final
// pass/fail banner a consistent visual treatment.
package ui
