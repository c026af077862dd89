package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/temirov/fleet/cmd/cli"
	"github.com/temirov/fleet/internal/audit"
)

const (
	exitErrorTemplateConstant = "%v\n"
	exitCodeFailureConstant   = 1
	exitCodeConflictsConstant = 2
)

// main executes the fleet command-line application. Audits that complete but
// find conflicting package versions exit with a distinguished code.
func main() {
	executionError := cli.Execute()
	if executionError == nil {
		return
	}

	fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
	if errors.Is(executionError, audit.ErrConflictsFound) {
		os.Exit(exitCodeConflictsConstant)
	}
	os.Exit(exitCodeFailureConstant)
}
