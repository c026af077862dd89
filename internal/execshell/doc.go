// Package execshell provides structured helpers for invoking external tools.
//
// It wraps os/exec with logging via ShellExecutor, exposes OSCommandRunner for
// default process execution, and defines the abstractions fleet uses to run
// git, nuget, and dotnet in a testable manner.
package execshell
