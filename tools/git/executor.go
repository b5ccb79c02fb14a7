// Package git commits regenerated icon output.
package git

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
)

// ErrNothingToCommit is returned when no staged changes exist.
var ErrNothingToCommit = errors.New("nothing to commit")

// conventionalCommitPattern matches conventional commit format
var conventionalCommitPattern = regexp.MustCompile(`^(feat|fix|docs|style|refactor|test|chore|perf|ci|build|revert)(\([a-zA-Z0-9_-]+\))?: .+`)

// ValidateConventionalCommit checks if a message follows conventional commit format
func ValidateConventionalCommit(message string) bool {
	return conventionalCommitPattern.MatchString(message)
}

// FileStatus is one line of `git status --porcelain`.
type FileStatus struct {
	Path string
	// Staged and Worktree are the two porcelain status columns.
	Staged   byte
	Worktree byte
}

// Untracked reports whether the file is not yet tracked.
func (s FileStatus) Untracked() bool {
	return s.Staged == '?' && s.Worktree == '?'
}

// FileChange is a file recorded in a commit.
type FileChange struct {
	Path      string
	Operation string
}

// ParseFileOperation converts a git name-status code to an operation name.
func ParseFileOperation(statusCode string) string {
	if len(statusCode) == 0 {
		return "modify"
	}
	switch statusCode[0] {
	case 'A':
		return "add"
	case 'D':
		return "delete"
	case 'R':
		return "rename"
	default:
		return "modify"
	}
}

// Commit describes a created commit.
type Commit struct {
	Hash    string
	Message string
	Files   []FileChange
}

// Executor runs git in a repository root
type Executor struct {
	repoRoot string
	logger   *slog.Logger
}

// NewExecutor creates a new git executor with the given repository root
func NewExecutor(repoRoot string, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{repoRoot: repoRoot, logger: logger}
}

// IsRepo reports whether the root is inside a git work tree.
func (e *Executor) IsRepo(ctx context.Context) bool {
	out, err := e.runGit(ctx, "rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(out) == "true"
}

// Status returns the porcelain status, limited to paths when given.
func (e *Executor) Status(ctx context.Context, paths ...string) ([]FileStatus, error) {
	rel, err := e.relPaths(paths)
	if err != nil {
		return nil, err
	}
	args := append([]string{"status", "--porcelain", "-z", "--untracked-files=all"}, pathspec(rel)...)
	output, err := e.runGit(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("git status: %w", err)
	}
	return parsePorcelain(output), nil
}

// parsePorcelain parses NUL-separated porcelain v1 output. Rename and
// copy entries are followed by their source path, which is skipped.
func parsePorcelain(output string) []FileStatus {
	var statuses []FileStatus
	fields := strings.Split(output, "\x00")
	for i := 0; i < len(fields); i++ {
		entry := fields[i]
		if len(entry) < 4 {
			continue
		}
		st := FileStatus{Path: entry[3:], Staged: entry[0], Worktree: entry[1]}
		statuses = append(statuses, st)
		if st.Staged == 'R' || st.Staged == 'C' {
			i++
		}
	}
	return statuses
}

// HasChanges reports whether any of paths differ from HEAD or are untracked.
func (e *Executor) HasChanges(ctx context.Context, paths ...string) (bool, error) {
	statuses, err := e.Status(ctx, paths...)
	if err != nil {
		return false, err
	}
	return len(statuses) > 0, nil
}

// Add stages paths, including deletions.
func (e *Executor) Add(ctx context.Context, paths ...string) error {
	rel, err := e.relPaths(paths)
	if err != nil {
		return err
	}
	if len(rel) == 0 {
		return fmt.Errorf("no paths to stage")
	}
	args := append([]string{"add", "--all"}, pathspec(rel)...)
	if _, err := e.runGit(ctx, args...); err != nil {
		return fmt.Errorf("failed to stage changes: %w", err)
	}
	return nil
}

// Commit commits the staged changes. The message must follow the
// conventional commit format.
func (e *Executor) Commit(ctx context.Context, message string) (*Commit, error) {
	if !ValidateConventionalCommit(message) {
		return nil, fmt.Errorf("commit message does not follow conventional commit format: %s", message)
	}

	staged, _ := e.runGit(ctx, "diff", "--cached", "--name-only")
	if strings.TrimSpace(staged) == "" {
		return nil, ErrNothingToCommit
	}

	if _, err := e.runGit(ctx, "commit", "-m", message); err != nil {
		return nil, fmt.Errorf("commit failed: %w", err)
	}

	hash, _ := e.runGit(ctx, "rev-parse", "--short", "HEAD")
	c := &Commit{Hash: strings.TrimSpace(hash), Message: message}

	// Format: "A\tfile" or "M\tfile"
	filesOutput, _ := e.runGit(ctx, "diff-tree", "--no-commit-id", "--name-status", "-r", "--root", "HEAD")
	for _, line := range strings.Split(strings.TrimSpace(filesOutput), "\n") {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "\t", 2)
		if len(parts) == 2 {
			c.Files = append(c.Files, FileChange{Path: parts[1], Operation: ParseFileOperation(parts[0])})
		} else {
			c.Files = append(c.Files, FileChange{Path: line, Operation: "modify"})
		}
	}

	e.logger.Info("Committed icon output", "hash", c.Hash, "files", len(c.Files))
	return c, nil
}

// CommitPaths stages paths and commits them when anything changed. It
// returns nil without error when there is nothing to commit.
func (e *Executor) CommitPaths(ctx context.Context, message string, paths ...string) (*Commit, error) {
	if !e.IsRepo(ctx) {
		return nil, fmt.Errorf("not a git repository: %s", e.repoRoot)
	}
	statuses, err := e.Status(ctx, paths...)
	if err != nil {
		return nil, err
	}
	if len(statuses) == 0 {
		e.logger.Debug("No icon output changes to commit")
		return nil, nil
	}
	// Porcelain paths are relative to the top level, not the root.
	args := []string{"add", "--all", "--"}
	for _, st := range statuses {
		args = append(args, ":(top)"+st.Path)
	}
	if _, err := e.runGit(ctx, args...); err != nil {
		return nil, fmt.Errorf("failed to stage changes: %w", err)
	}
	c, err := e.Commit(ctx, message)
	if errors.Is(err, ErrNothingToCommit) {
		return nil, nil
	}
	return c, err
}

// relPaths converts paths to repo-relative form, rejecting any outside
// the repository.
func (e *Executor) relPaths(paths []string) ([]string, error) {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if err := validatePath(e.repoRoot, p); err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		if filepath.IsAbs(p) {
			rel, err := filepath.Rel(e.repoRoot, p)
			if err != nil {
				return nil, err
			}
			p = rel
		}
		out = append(out, filepath.ToSlash(p))
	}
	return out, nil
}

// validatePath validates that a path is within baseDir. Relative paths
// are taken relative to baseDir.
func validatePath(baseDir, path string) error {
	if path == "" {
		return fmt.Errorf("path is required")
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}

	absPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	absBase, err := filepath.Abs(filepath.Clean(baseDir))
	if err != nil {
		return fmt.Errorf("invalid base path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) && absPath != absBase {
		return fmt.Errorf("path must be within %s", absBase)
	}
	return nil
}

func pathspec(paths []string) []string {
	if len(paths) == 0 {
		return nil
	}
	return append([]string{"--"}, paths...)
}

func (e *Executor) runGit(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = e.repoRoot

	output, err := cmd.CombinedOutput()
	if err != nil {
		return string(output), fmt.Errorf("%w: %s", err, string(output))
	}
	return string(output), nil
}
