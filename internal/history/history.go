// Package history records the planned, applied and failed updates of a project.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Error variables for history errors
var (
	// ErrHistoryCorrupted is returned when the history file cannot be parsed
	ErrHistoryCorrupted = errors.New("history file is corrupted")
	// ErrPackageNotInHistory is returned when a package has no history entry
	ErrPackageNotInHistory = errors.New("package not found in history")
	// ErrInvalidStatus is returned for statuses outside planned, applied and failed
	ErrInvalidStatus = errors.New("invalid status")
)

// Status is the state of a recorded update.
type Status string

const (
	// StatusPlanned indicates the update is in the current plan
	StatusPlanned Status = "planned"
	// StatusApplied indicates the new release was merged
	StatusApplied Status = "applied"
	// StatusFailed indicates the update aborted the run
	StatusFailed Status = "failed"
)

// ValidStatuses returns all valid statuses
func ValidStatuses() []Status {
	return []Status{StatusPlanned, StatusApplied, StatusFailed}
}

// IsValidStatus checks if a status is valid
func IsValidStatus(s Status) bool {
	for _, valid := range ValidStatuses() {
		if s == valid {
			return true
		}
	}
	return false
}

// Entry is the latest recorded update of one package.
type Entry struct {
	Package    string    `json:"package"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	UpdateType string    `json:"update_type,omitempty"`
	Status     Status    `json:"status"`
	DetectedAt time.Time `json:"detected_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Error      string    `json:"error,omitempty"`
}

// historyFile is the JSON structure stored on disk
type historyFile struct {
	Project string           `json:"project,omitempty"`
	Entries map[string]Entry `json:"entries"`
}

// History persists update entries of one project
type History struct {
	Project string
	entries map[string]Entry
	path    string
	mu      sync.RWMutex
	nowFunc func() time.Time
}

// Option is a functional option for configuring History
type Option func(*History)

// WithNowFunc sets a custom time function for testing
func WithNowFunc(fn func() time.Time) Option {
	return func(h *History) {
		h.nowFunc = fn
	}
}

// DefaultDir returns $XDG_STATE_HOME/drupdate/history, or ~/.local/state/drupdate/history
func DefaultDir() (string, error) {
	state := os.Getenv("XDG_STATE_HOME")
	if state == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		state = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(state, "drupdate", "history"), nil
}

// FileName returns the history file name of the project at root
func FileName(root string) string {
	name := strings.Trim(filepath.ToSlash(filepath.Clean(root)), "/")
	name = strings.NewReplacer("/", "_", ":", "_", " ", "_").Replace(name)
	if name == "" {
		name = "root"
	}
	return name + ".json"
}

// Open loads the history of the project at root from dir. A missing file
// yields an empty history; a corrupted one is replaced on the next save.
func Open(dir, root string, opts ...Option) (*History, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	h := &History{
		Project: root,
		entries: make(map[string]Entry),
		path:    filepath.Join(dir, FileName(root)),
		nowFunc: time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}

	if err := h.load(); err != nil && !os.IsNotExist(err) {
		h.entries = make(map[string]Entry)
	}
	return h, nil
}

// Path returns the history file path
func (h *History) Path() string {
	return h.path
}

func (h *History) load() error {
	data, err := os.ReadFile(h.path)
	if err != nil {
		return err
	}

	var hf historyFile
	if err := json.Unmarshal(data, &hf); err != nil {
		return fmt.Errorf("%w: %v", ErrHistoryCorrupted, err)
	}
	if hf.Entries != nil {
		h.entries = hf.Entries
	}
	return nil
}

// Plan records a planned update, replacing any previous entry of the package
func (h *History) Plan(pkg, from, to, updateType string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.nowFunc()
	h.entries[pkg] = Entry{
		Package:    pkg,
		From:       from,
		To:         to,
		UpdateType: updateType,
		Status:     StatusPlanned,
		DetectedAt: now,
		UpdatedAt:  now,
	}
	return h.saveUnsafe()
}

// SetStatus updates the status of pkg. errMsg is kept only for StatusFailed.
func (h *History) SetStatus(pkg string, status Status, errMsg string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	entry, exists := h.entries[pkg]
	if !exists {
		return fmt.Errorf("%w: %s", ErrPackageNotInHistory, pkg)
	}
	if !IsValidStatus(status) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	entry.Status = status
	entry.UpdatedAt = h.nowFunc()
	if status == StatusFailed {
		entry.Error = errMsg
	} else {
		entry.Error = ""
	}

	h.entries[pkg] = entry
	return h.saveUnsafe()
}

// Get returns the entry of pkg
func (h *History) Get(pkg string) (Entry, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	entry, ok := h.entries[pkg]
	return entry, ok
}

// List returns all entries, most recently updated first, then by package name
func (h *History) List() []Entry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	entries := make([]Entry, 0, len(h.entries))
	for _, entry := range h.entries {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].UpdatedAt.Equal(entries[j].UpdatedAt) {
			return entries[i].UpdatedAt.After(entries[j].UpdatedAt)
		}
		return entries[i].Package < entries[j].Package
	})
	return entries
}

// ListByStatus returns the entries with the given status, in List order
func (h *History) ListByStatus(status Status) []Entry {
	var entries []Entry
	for _, entry := range h.List() {
		if entry.Status == status {
			entries = append(entries, entry)
		}
	}
	return entries
}

// Len returns the number of entries
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

// Clear removes all entries
func (h *History) Clear() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = make(map[string]Entry)
	return h.saveUnsafe()
}

// saveUnsafe writes the history atomically. Caller must hold the write lock.
func (h *History) saveUnsafe() error {
	data, err := json.MarshalIndent(historyFile{Project: h.Project, Entries: h.entries}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	tmpPath := h.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}
	if err := os.Rename(tmpPath, h.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename history file: %w", err)
	}
	return nil
}
