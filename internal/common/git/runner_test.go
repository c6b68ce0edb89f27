package git

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func TestParseStatusOutput(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []StatusEntry
	}{
		{
			name:     "empty output",
			input:    "",
			expected: nil,
		},
		{
			name:  "modified module file",
			input: " M docroot/sites/all/modules/views/views.module\n",
			expected: []StatusEntry{
				{Status: "M", FilePath: "docroot/sites/all/modules/views/views.module"},
			},
		},
		{
			name:  "untracked file",
			input: "?? docroot/sites/all/modules/views/views.tar.gz\n",
			expected: []StatusEntry{
				{Status: "??", FilePath: "docroot/sites/all/modules/views/views.tar.gz"},
			},
		},
		{
			name:  "renamed file",
			input: "R  old-name.txt -> new-name.txt\n",
			expected: []StatusEntry{
				{Status: "R", FilePath: "new-name.txt"},
			},
		},
		{
			name: "core update",
			input: `M  docroot/index.php
M  docroot/includes/bootstrap.inc
D  docroot/modules/old/old.info
A  docroot/modules/new/new.info
`,
			expected: []StatusEntry{
				{Status: "M", FilePath: "docroot/index.php"},
				{Status: "M", FilePath: "docroot/includes/bootstrap.inc"},
				{Status: "D", FilePath: "docroot/modules/old/old.info"},
				{Status: "A", FilePath: "docroot/modules/new/new.info"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParseStatusOutput(tt.input)

			if len(result) != len(tt.expected) {
				t.Errorf("expected %d entries, got %d", len(tt.expected), len(result))
				return
			}

			for i, entry := range result {
				if entry.Status != tt.expected[i].Status {
					t.Errorf("entry %d: expected status %q, got %q", i, tt.expected[i].Status, entry.Status)
				}
				if entry.FilePath != tt.expected[i].FilePath {
					t.Errorf("entry %d: expected path %q, got %q", i, tt.expected[i].FilePath, entry.FilePath)
				}
			}
		})
	}
}

// initRepo creates a git repository in a temp dir, skipping when git is unavailable
func initRepo(t *testing.T) *GitRunner {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	runner := NewGitRunner(t.TempDir())
	if _, _, err := runner.runCommand("init"); err != nil {
		t.Fatalf("failed to init git repo: %v", err)
	}
	runner.runCommand("config", "user.email", "test@example.com")
	runner.runCommand("config", "user.name", "Test User")
	runner.runCommand("config", "commit.gpgsign", "false")
	return runner
}

func TestIsRepository(t *testing.T) {
	runner := initRepo(t)
	if !runner.IsRepository() {
		t.Error("initialized directory should be a repository")
	}

	plain := NewGitRunner(t.TempDir())
	if plain.IsRepository() {
		t.Error("plain temp directory should not be a repository")
	}
}

func TestAddPathValidation(t *testing.T) {
	runner := initRepo(t)
	tmpDir := runner.WorkDir()

	if err := os.WriteFile(filepath.Join(tmpDir, "index.php"), []byte("<?php"), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	t.Run("add existing file succeeds", func(t *testing.T) {
		if err := runner.Add("index.php"); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("add non-existent file returns file not found error", func(t *testing.T) {
		if err := runner.Add("nonexistent.txt"); !errors.Is(err, ErrFileNotFound) {
			t.Errorf("expected ErrFileNotFound, got %v", err)
		}
	})

	t.Run("add path outside project returns error", func(t *testing.T) {
		if err := runner.Add("../outside.txt"); !errors.Is(err, ErrPathOutsideWorkTree) {
			t.Errorf("expected ErrPathOutsideWorkTree, got %v", err)
		}
	})

	t.Run("add absolute path outside project returns error", func(t *testing.T) {
		if err := runner.Add("/etc/passwd"); !errors.Is(err, ErrPathOutsideWorkTree) {
			t.Errorf("expected ErrPathOutsideWorkTree, got %v", err)
		}
	})

	t.Run("add absolute directory inside project succeeds", func(t *testing.T) {
		dir := filepath.Join(tmpDir, "sites", "all", "modules", "views")
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("failed to create dir: %v", err)
		}
		if err := os.WriteFile(filepath.Join(dir, "views.info"), []byte("name = Views"), 0644); err != nil {
			t.Fatalf("failed to create file: %v", err)
		}
		if err := runner.Add(dir); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("add with no paths stages nothing", func(t *testing.T) {
		if err := os.WriteFile(filepath.Join(tmpDir, "cron.php"), []byte("<?php"), 0644); err != nil {
			t.Fatalf("failed to create file: %v", err)
		}
		if err := runner.Add(); err != nil {
			t.Errorf("expected no error for Add(), got %v", err)
		}
		entries, err := runner.Status()
		if err != nil {
			t.Fatalf("Status failed: %v", err)
		}
		for _, e := range entries {
			if e.FilePath == "cron.php" && e.Status != "??" {
				t.Errorf("cron.php should stay untracked, got %q", e.Status)
			}
		}
	})
}

func TestGitRunnerCommit(t *testing.T) {
	runner := initRepo(t)

	if err := os.WriteFile(filepath.Join(runner.WorkDir(), "index.php"), []byte("<?php"), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	if err := runner.Add("index.php"); err != nil {
		t.Fatalf("failed to add file: %v", err)
	}

	if err := runner.Commit("drupal: 7.59 -> 7.98", "Custom User", "custom@example.com"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	entries, err := runner.Status()
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected clean tree after commit, got %v", entries)
	}
}

func TestGitRunnerStatus(t *testing.T) {
	runner := initRepo(t)

	entries, err := runner.Status()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected 0 entries, got %d", len(entries))
	}

	if err := os.WriteFile(filepath.Join(runner.WorkDir(), "untracked.txt"), []byte("untracked"), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	entries, err = runner.Status()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(entries) != 1 || entries[0].Status != "??" {
		t.Errorf("expected one untracked entry, got %v", entries)
	}
}
