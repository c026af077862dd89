package gitops

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/temirov/fleet/internal/execshell"
	"github.com/temirov/fleet/internal/ui"
	"github.com/temirov/fleet/internal/workspace"
)

const (
	gitExecutorMissingMessageConstant           = "git executor not configured"
	worktreeNotCleanTemplateConstant            = "repository %s worktree is not clean"
	selectionRequiredMessageConstant            = "at least one repository must be selected"
	skippedSelectorWarningTemplate              = "skipping unknown repository %q"
	repositoryHeadingTemplateConstant           = "== %s"
	statusFailureTemplateConstant               = "failed to read status of %s: %w"
	cleanVerificationErrorTemplateConstant      = "failed to verify clean worktree in %s: %w"
	gitFetchFailureTemplateConstant             = "failed to fetch updates in %s: %w"
	gitPullFailureTemplateConstant              = "failed to pull latest changes in %s: %w"
	cleanWorktreeMessageConstant                = "worktree clean"
	pulledMessageTemplateConstant               = "%s is up to date"
	gitStatusSubcommandConstant                 = "status"
	gitStatusShortFlagConstant                  = "--short"
	gitStatusBranchFlagConstant                 = "--branch"
	gitStatusPorcelainFlagConstant              = "--porcelain"
	gitFetchSubcommandConstant                  = "fetch"
	gitFetchPruneFlagConstant                   = "--prune"
	gitPullSubcommandConstant                   = "pull"
	gitPullFastForwardFlagConstant              = "--ff-only"
	gitTerminalPromptEnvironmentNameConstant    = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptEnvironmentDisableConstant = "0"
)

// ErrGitExecutorNotConfigured indicates the git executor dependency was missing.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// ErrNoRepositoriesSelected indicates selector resolution produced no repositories.
var ErrNoRepositoriesSelected = errors.New(selectionRequiredMessageConstant)

// WorktreeNotCleanError reports uncommitted changes blocking a pull.
type WorktreeNotCleanError struct {
	RepositoryName string
}

// Error describes the dirty worktree.
func (dirtyError WorktreeNotCleanError) Error() string {
	return fmt.Sprintf(worktreeNotCleanTemplateConstant, dirtyError.RepositoryName)
}

// GitExecutor runs git commands.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// PullOptions configures one pull pass over the selected repositories.
type PullOptions struct {
	Selection    workspace.Selection
	RequireClean bool
}

// Service runs git status and pull across fleet repositories, one at a time,
// in selection order.
type Service struct {
	executor     GitExecutor
	outputWriter io.Writer
	errorWriter  io.Writer
}

// NewService constructs a Service from the provided collaborators.
func NewService(executor GitExecutor, outputWriter io.Writer, errorWriter io.Writer) (*Service, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &Service{executor: executor, outputWriter: outputWriter, errorWriter: errorWriter}, nil
}

// Status prints the worktree status of every selected repository. The first
// repository whose status command fails aborts the pass.
func (service *Service) Status(executionContext context.Context, selection workspace.Selection) error {
	if validationError := service.validateSelection(selection); validationError != nil {
		return validationError
	}

	for _, target := range selection.Targets {
		fmt.Fprintln(service.outputWriter, ui.StyleHeading.Render(fmt.Sprintf(repositoryHeadingTemplateConstant, target.Name)))

		statusResult, statusError := service.executeGit(executionContext, target.Directory,
			gitStatusSubcommandConstant, gitStatusShortFlagConstant, gitStatusBranchFlagConstant)
		if statusError != nil {
			return fmt.Errorf(statusFailureTemplateConstant, target.Name, statusError)
		}

		fmt.Fprint(service.outputWriter, statusResult.StandardOutput)
	}

	return nil
}

// Pull fast-forwards every selected repository after a pruning fetch. With
// RequireClean set, a dirty worktree aborts the pass before any remote access.
func (service *Service) Pull(executionContext context.Context, options PullOptions) error {
	if validationError := service.validateSelection(options.Selection); validationError != nil {
		return validationError
	}

	for _, target := range options.Selection.Targets {
		fmt.Fprintln(service.outputWriter, ui.StyleHeading.Render(fmt.Sprintf(repositoryHeadingTemplateConstant, target.Name)))

		if options.RequireClean {
			porcelainResult, porcelainError := service.executeGit(executionContext, target.Directory,
				gitStatusSubcommandConstant, gitStatusPorcelainFlagConstant)
			if porcelainError != nil {
				return fmt.Errorf(cleanVerificationErrorTemplateConstant, target.Name, porcelainError)
			}
			if len(strings.TrimSpace(porcelainResult.StandardOutput)) > 0 {
				return WorktreeNotCleanError{RepositoryName: target.Name}
			}
			fmt.Fprintln(service.outputWriter, ui.StyleMuted.Render(cleanWorktreeMessageConstant))
		}

		if _, fetchError := service.executeGit(executionContext, target.Directory,
			gitFetchSubcommandConstant, gitFetchPruneFlagConstant); fetchError != nil {
			return fmt.Errorf(gitFetchFailureTemplateConstant, target.Name, fetchError)
		}

		if _, pullError := service.executeGit(executionContext, target.Directory,
			gitPullSubcommandConstant, gitPullFastForwardFlagConstant); pullError != nil {
			return fmt.Errorf(gitPullFailureTemplateConstant, target.Name, pullError)
		}

		fmt.Fprintln(service.outputWriter, ui.StyleSuccess.Render(fmt.Sprintf(pulledMessageTemplateConstant, target.Name)))
	}

	return nil
}

func (service *Service) validateSelection(selection workspace.Selection) error {
	for _, skippedSelector := range selection.Skipped {
		ui.WriteWarningLine(service.errorWriter, fmt.Sprintf(skippedSelectorWarningTemplate, skippedSelector))
	}

	if len(selection.Targets) == 0 {
		return ErrNoRepositoriesSelected
	}
	return nil
}

func (service *Service) executeGit(executionContext context.Context, workingDirectory string, arguments ...string) (execshell.ExecutionResult, error) {
	return service.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: workingDirectory,
		EnvironmentVariables: map[string]string{
			gitTerminalPromptEnvironmentNameConstant: gitTerminalPromptEnvironmentDisableConstant,
		},
	})
}
