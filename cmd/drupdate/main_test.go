package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mholt/archiver/v3"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obentoo/drupdate/internal/common/config"
	"github.com/obentoo/drupdate/internal/common/drupal"
	"github.com/obentoo/drupdate/internal/common/git"
	"github.com/obentoo/drupdate/internal/engine"
	"github.com/obentoo/drupdate/internal/history"
	"github.com/obentoo/drupdate/internal/plan"
	"github.com/obentoo/drupdate/internal/resolver"
)

// TestCommandsExist tests that every subcommand is registered
func TestCommandsExist(t *testing.T) {
	want := []string{"check", "update", "history", "cache", "version", "completion"}
	registered := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		registered[strings.Fields(cmd.Use)[0]] = true
	}
	for _, name := range want {
		if !registered[name] {
			t.Errorf("%s subcommand should exist", name)
		}
	}
}

// TestCommandFlags tests that all flags are present with the right types
func TestCommandFlags(t *testing.T) {
	commands := map[string]*cobra.Command{
		"root":    rootCmd,
		"check":   checkCmd,
		"update":  updateCmd,
		"history": historyCmd,
	}

	tests := []struct {
		cmdName  string
		flagName string
		flagType string
	}{
		{"root", "verbose", "bool"},
		{"root", "quiet", "bool"},
		{"root", "no-color", "bool"},
		{"root", "log-file", "bool"},
		{"root", "root", "string"},
		{"root", "config", "string"},
		{"check", "force", "bool"},
		{"check", "csv", "bool"},
		{"update", "force", "bool"},
		{"update", "commit", "bool"},
		{"history", "status", "string"},
		{"history", "clear", "bool"},
	}

	for _, tt := range tests {
		t.Run(tt.cmdName+"/"+tt.flagName, func(t *testing.T) {
			flag := commands[tt.cmdName].Flag(tt.flagName)
			if flag == nil {
				t.Fatalf("%s should have --%s", tt.cmdName, tt.flagName)
			}
			if flag.Value.Type() != tt.flagType {
				t.Errorf("--%s should be %s, got %s", tt.flagName, tt.flagType, flag.Value.Type())
			}
		})
	}
}

// projectFixture creates a Drupal 7 tree with views 7.x-3.20 and an
// unreleased custom module
func projectFixture(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	modules := filepath.Join(root, "docroot", "sites", "all", "modules")
	writeFile(t, filepath.Join(modules, "views", "views.info"),
		"name = Views\ncore = 7.x\nversion = \"7.x-3.20\"\nproject = \"views\"\n")
	writeFile(t, filepath.Join(modules, "views", "views.module"), "<?php // 3.20")
	writeFile(t, filepath.Join(modules, "custom", "mysite", "mysite.info"),
		"name = My site\ncore = 7.x\n")
	return root
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// catalogServer serves views release history and its archive; everything
// else is unknown
func catalogServer(t *testing.T) *httptest.Server {
	t.Helper()

	src := t.TempDir()
	writeFile(t, filepath.Join(src, "views", "views.info"),
		"name = Views\ncore = 7.x\nversion = \"7.x-3.25\"\nproject = \"views\"\n")
	archive := filepath.Join(t.TempDir(), "views-7.x-3.25.tar.gz")
	require.NoError(t, archiver.NewTarGz().Archive([]string{filepath.Join(src, "views")}, archive))

	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/release-history/views/7.x":
			fmt.Fprintf(w, `<?xml version="1.0" encoding="utf-8"?>
<project>
  <short_name>views</short_name>
  <type>project_module</type>
  <releases>
    <release>
      <version>7.x-3.25</version>
      <status>published</status>
      <download_link>%s/files/views-7.x-3.25.tar.gz</download_link>
      <terms><term><name>Release type</name><value>Bug fixes</value></term></terms>
    </release>
  </releases>
</project>`, server.URL)
		case "/files/views-7.x-3.25.tar.gz":
			http.ServeFile(w, r, archive)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func testApp(t *testing.T, root, catalogURL string) *app {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv("XDG_STATE_HOME", t.TempDir())

	cfg := config.Default()
	cfg.Catalog.URL = catalogURL
	return &app{cfg: cfg, root: root}
}

func TestCheckPrintsPlan(t *testing.T) {
	server := catalogServer(t)
	a := testApp(t, projectFixture(t), server.URL+"/release-history")

	var out bytes.Buffer
	require.NoError(t, check(context.Background(), a, &out))

	text := out.String()
	assert.Contains(t, text, "Package Name")
	assert.Contains(t, text, "7.x-3.25")
	assert.Contains(t, text, "Bug fixes")
	assert.NotContains(t, text, "mysite", "unreleased packages are warnings, not rows")
}

func TestCheckCSV(t *testing.T) {
	server := catalogServer(t)
	a := testApp(t, projectFixture(t), server.URL+"/release-history")

	checkCSV = true
	defer func() { checkCSV = false }()

	var out bytes.Buffer
	require.NoError(t, check(context.Background(), a, &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Package Name,Package Type,Current Version,Latest Version,Update Type,Download Link,File Path", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "views,module,7.x-3.20,7.x-3.25,Bug fixes,"))
}

func TestCheckRejectsNonDrupalRoot(t *testing.T) {
	a := testApp(t, t.TempDir(), "http://127.0.0.1:1")
	err := check(context.Background(), a, &bytes.Buffer{})
	assert.ErrorIs(t, err, errNotDrupal7)
}

func TestUpdateAppliesAndRecordsHistory(t *testing.T) {
	server := catalogServer(t)
	root := projectFixture(t)
	a := testApp(t, root, server.URL+"/release-history")

	var out bytes.Buffer
	p, updated, err := update(context.Background(), a, &out)
	require.NoError(t, err)
	require.True(t, updated)
	assert.Equal(t, 2, p.Len())

	modules := filepath.Join(root, "docroot", "sites", "all", "modules")
	info, err := os.ReadFile(filepath.Join(modules, "views", "views.info"))
	require.NoError(t, err)
	assert.Contains(t, string(info), "7.x-3.25")
	assert.NoFileExists(t, filepath.Join(modules, "views", "views.module"))
	assert.NoFileExists(t, filepath.Join(modules, "views.tar.gz"))
	assert.NoFileExists(t, filepath.Join(root, engine.LockFileName))
	assert.Contains(t, out.String(), "Updated packages")

	dir, err := history.DefaultDir()
	require.NoError(t, err)
	hist, err := history.Open(dir, root)
	require.NoError(t, err)
	entry, ok := hist.Get("views")
	require.True(t, ok)
	assert.Equal(t, history.StatusApplied, entry.Status)
	assert.Equal(t, "7.x-3.25", entry.To)

	// A second run finds nothing to do and says so once
	out.Reset()
	_, updated, err = update(context.Background(), a, &out)
	require.NoError(t, err)
	assert.False(t, updated)
	assert.Equal(t, 1, strings.Count(out.String(), "Branch already up to date"))
}

func TestUpdateFailsWhileLocked(t *testing.T) {
	root := projectFixture(t)
	a := testApp(t, root, "http://127.0.0.1:1")

	lock, err := engine.AcquireLock(root)
	require.NoError(t, err)
	defer lock.Release()

	_, _, err = update(context.Background(), a, &bytes.Buffer{})
	assert.ErrorIs(t, err, engine.ErrLocked)
}

func TestCommitUpdates(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	writeFile(t, filepath.Join(home, ".gitconfig"), "[user]\n\tname = Jane Doe\n\temail = jane@example.org\n")

	p := plan.New()
	p.Add(plan.Row{
		Name:           "views",
		Kind:           drupal.KindModule,
		CurrentVersion: "7.x-3.20",
		LatestVersion:  "7.x-3.25",
		UpdateType:     "Bug fixes",
		Paths:          resolver.Single("/srv/site/docroot/sites/all/modules"),
	})

	var added []string
	var message, author string
	mock := git.NewMockGitRunner("/srv/site")
	mock.StatusFunc = func() ([]git.StatusEntry, error) {
		return []git.StatusEntry{{Status: "M", FilePath: "docroot/sites/all/modules/views/views.info"}}, nil
	}
	mock.AddFunc = func(paths ...string) error {
		added = paths
		return nil
	}
	mock.CommitFunc = func(msg, user, email string) error {
		message, author = msg, user+" <"+email+">"
		return nil
	}

	require.NoError(t, commitUpdates(mock, &app{cfg: config.Default(), root: "/srv/site"}, p))
	assert.Equal(t, []string{"/srv/site/docroot/sites/all/modules/views"}, added)
	assert.Equal(t, "views: 7.x-3.20 -> 7.x-3.25 (Bug fixes)", message)
	assert.Equal(t, "Jane Doe <jane@example.org>", author)
}

func TestCommitUpdatesCleanTree(t *testing.T) {
	p := plan.New()
	p.Add(plan.Row{Name: "views", Kind: drupal.KindModule, Paths: resolver.Single("/srv/site/docroot/sites/all/modules")})

	mock := git.NewMockGitRunner("/srv/site")
	mock.AddFunc = func(paths ...string) error {
		t.Error("nothing should be staged in a clean tree")
		return nil
	}
	mock.CommitFunc = func(msg, user, email string) error {
		t.Error("nothing should be committed in a clean tree")
		return nil
	}

	require.NoError(t, commitUpdates(mock, &app{cfg: config.Default(), root: "/srv/site"}, p))
}

func TestCommitUpdatesOutsideRepository(t *testing.T) {
	mock := git.NewMockGitRunner("/srv/site")
	mock.IsRepositoryFunc = func() bool { return false }

	err := commitUpdates(mock, &app{cfg: config.Default()}, plan.New())
	assert.True(t, errors.Is(err, errNotRepository))
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "subject", firstLine("subject\n\nbody"))
	assert.Equal(t, "single", firstLine("single"))
}
