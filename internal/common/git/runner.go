package git

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

var (
	ErrFileNotFound        = errors.New("file not found")
	ErrPathOutsideWorkTree = errors.New("path is outside project directory")
	ErrInvalidPath         = errors.New("invalid path")
	ErrGitCommand          = errors.New("git command failed")
)

// GitRunner executes git commands in a specific working directory
type GitRunner struct {
	workDir string
}

// NewGitRunner creates a new GitRunner for the specified working directory
func NewGitRunner(workDir string) *GitRunner {
	return &GitRunner{
		workDir: workDir,
	}
}

// WorkDir returns the working directory of the GitRunner
func (g *GitRunner) WorkDir() string {
	return g.workDir
}

// runCommand executes a git command and returns stdout, stderr, and any error
func (g *GitRunner) runCommand(args ...string) (stdout, stderr string, err error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = g.workDir

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if err != nil && stderr != "" {
		err = errors.Join(ErrGitCommand, errors.New(strings.TrimSpace(stderr)))
	}

	return stdout, stderr, err
}

// IsRepository reports whether the working directory is inside a git work tree
func (g *GitRunner) IsRepository() bool {
	stdout, _, err := g.runCommand("rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(stdout) == "true"
}

// StatusEntry represents a single entry from git status --porcelain
type StatusEntry struct {
	Status   string // A, M, D, R, ??
	FilePath string
}

// Status returns the current git status as a list of StatusEntry
func (g *GitRunner) Status() ([]StatusEntry, error) {
	stdout, _, err := g.runCommand("status", "--porcelain")
	if err != nil {
		return nil, err
	}

	return ParseStatusOutput(stdout), nil
}

// ParseStatusOutput parses git status --porcelain output into StatusEntry slice
func ParseStatusOutput(output string) []StatusEntry {
	var entries []StatusEntry

	for _, line := range strings.Split(output, "\n") {
		if len(line) < 3 {
			continue
		}

		// XY filename: X = index status, Y = worktree status
		status := strings.TrimSpace(line[:2])
		filePath := line[3:]

		// R  old -> new
		if strings.HasPrefix(status, "R") {
			if parts := strings.Split(filePath, " -> "); len(parts) == 2 {
				filePath = parts[1]
			}
		}

		entries = append(entries, StatusEntry{
			Status:   status,
			FilePath: filePath,
		})
	}

	return entries
}

// Add stages paths for commit, removals included. Paths may be absolute or
// relative to the work dir and must stay inside it.
func (g *GitRunner) Add(paths ...string) error {
	for _, path := range paths {
		if err := g.validateAndAddPath(path); err != nil {
			return err
		}
	}

	return nil
}

// validateAndAddPath validates a single path and adds it to staging
func (g *GitRunner) validateAndAddPath(path string) error {
	absPath := path
	if !filepath.IsAbs(path) {
		absPath = filepath.Join(g.workDir, path)
	}
	absPath = filepath.Clean(absPath)

	relPath, err := filepath.Rel(filepath.Clean(g.workDir), absPath)
	if err != nil {
		return errors.Join(ErrInvalidPath, err)
	}
	if relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return ErrPathOutsideWorkTree
	}

	// Deleted paths are staged as removals, so only require existence in the index or on disk
	if _, err := os.Lstat(absPath); err != nil {
		stdout, _, lsErr := g.runCommand("ls-files", "--", relPath)
		if lsErr != nil || strings.TrimSpace(stdout) == "" {
			return ErrFileNotFound
		}
	}

	_, _, err = g.runCommand("add", "--all", "--", relPath)
	return err
}

// Commit creates a git commit with the specified message and author
func (g *GitRunner) Commit(message, user, email string) error {
	args := []string{"commit", "-m", message}

	if user != "" && email != "" {
		args = append(args, "--author", user+" <"+email+">")
	}

	_, _, err := g.runCommand(args...)
	return err
}
