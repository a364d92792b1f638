// Package git wraps the git binary for committing archived session files.
package git

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// CommandTimeout bounds every git invocation.
const CommandTimeout = 30 * time.Second

var (
	// ErrGitUnavailable means no git binary is on PATH.
	ErrGitUnavailable = errors.New("git binary not found")
	// ErrNotRepository means the working directory is not inside a work tree.
	ErrNotRepository = errors.New("not a git repository")
	// ErrNothingToCommit means staging produced no difference from HEAD.
	ErrNothingToCommit = errors.New("nothing to commit")
)

// Manager handles git operations rooted at a working directory
type Manager struct {
	workDir string
	binary  string
}

// NewManager creates a git manager for workDir
func NewManager(workDir string) *Manager {
	return &Manager{
		workDir: workDir,
		binary:  "git",
	}
}

// CheckRepository returns ErrGitUnavailable or ErrNotRepository when commits
// are impossible from the working directory.
func (m *Manager) CheckRepository(ctx context.Context) error {
	if _, err := exec.LookPath(m.binary); err != nil {
		return ErrGitUnavailable
	}

	output, err := m.execGit(ctx, "rev-parse", "--is-inside-work-tree")
	if err != nil || strings.TrimSpace(output) != "true" {
		return ErrNotRepository
	}
	return nil
}

// Stage adds the given paths to the index
func (m *Manager) Stage(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return fmt.Errorf("no files to stage")
	}

	args := append([]string{"add", "--"}, paths...)
	if _, err := m.execGit(ctx, args...); err != nil {
		return fmt.Errorf("failed to stage files: %w", err)
	}
	return nil
}

// HasStagedChanges reports whether the index differs from HEAD for paths
func (m *Manager) HasStagedChanges(ctx context.Context, paths []string) (bool, error) {
	args := append([]string{"diff", "--cached", "--quiet", "--"}, paths...)
	_, err := m.execGit(ctx, args...)
	if err == nil {
		return false, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		return true, nil
	}
	return false, fmt.Errorf("failed to diff staged changes: %w", err)
}

// Commit records exactly the given paths, leaving any other staged changes
// in the index. --no-verify keeps repository hooks from re-entering the
// agent's hook chain.
func (m *Manager) Commit(ctx context.Context, message string, paths []string) (string, error) {
	args := []string{"commit", "--no-verify", "-m", message, "--"}
	args = append(args, paths...)

	if _, err := m.execGit(ctx, args...); err != nil {
		return "", fmt.Errorf("failed to create commit: %w", err)
	}

	hash, err := m.execGit(ctx, "rev-parse", "--short", "HEAD")
	if err != nil {
		return "", fmt.Errorf("failed to get commit hash: %w", err)
	}
	return strings.TrimSpace(hash), nil
}

// CommitFiles stages paths and commits them. It returns ErrGitUnavailable,
// ErrNotRepository or ErrNothingToCommit for the cases callers skip silently.
func (m *Manager) CommitFiles(ctx context.Context, message string, paths []string) (string, error) {
	if err := m.CheckRepository(ctx); err != nil {
		return "", err
	}

	if err := m.Stage(ctx, paths); err != nil {
		return "", err
	}

	changed, err := m.HasStagedChanges(ctx, paths)
	if err != nil {
		return "", err
	}
	if !changed {
		return "", ErrNothingToCommit
	}

	return m.Commit(ctx, message, paths)
}

// IsSkippable reports whether err is one of the silent-skip conditions.
func IsSkippable(err error) bool {
	return errors.Is(err, ErrGitUnavailable) ||
		errors.Is(err, ErrNotRepository) ||
		errors.Is(err, ErrNothingToCommit)
}

// execGit executes a git command and returns its output
func (m *Manager) execGit(ctx context.Context, args ...string) (string, error) {
	execCtx, cancel := context.WithTimeout(ctx, CommandTimeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, m.binary, args...)
	cmd.Dir = m.workDir

	output, err := cmd.CombinedOutput()
	if err != nil {
		return string(output), &CommandError{Args: args, Output: strings.TrimSpace(string(output)), Err: err}
	}

	return string(output), nil
}

// CommandError describes a failed git invocation.
type CommandError struct {
	Args   []string
	Output string
	Err    error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("git %s failed: %v\nOutput: %s", strings.Join(e.Args, " "), e.Err, e.Output)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}
