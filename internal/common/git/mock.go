package git

// MockGitRunner implements GitExecutor for testing.
// Each method can be configured with a custom function to control behavior.
type MockGitRunner struct {
	IsRepositoryFunc func() bool
	StatusFunc       func() ([]StatusEntry, error)
	AddFunc          func(paths ...string) error
	CommitFunc       func(message, user, email string) error
	workDir          string
}

// NewMockGitRunner creates a new MockGitRunner with the specified working directory
func NewMockGitRunner(workDir string) *MockGitRunner {
	return &MockGitRunner{
		workDir: workDir,
	}
}

// IsRepository reports true unless configured otherwise
func (m *MockGitRunner) IsRepository() bool {
	if m.IsRepositoryFunc != nil {
		return m.IsRepositoryFunc()
	}
	return true
}

// Status returns the current git status as a list of StatusEntry
func (m *MockGitRunner) Status() ([]StatusEntry, error) {
	if m.StatusFunc != nil {
		return m.StatusFunc()
	}
	return nil, nil
}

// Add stages files for commit
func (m *MockGitRunner) Add(paths ...string) error {
	if m.AddFunc != nil {
		return m.AddFunc(paths...)
	}
	return nil
}

// Commit creates a git commit with the specified message and author
func (m *MockGitRunner) Commit(message, user, email string) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(message, user, email)
	}
	return nil
}

// WorkDir returns the working directory of the git repository
func (m *MockGitRunner) WorkDir() string {
	return m.workDir
}

var _ GitExecutor = (*MockGitRunner)(nil)
var _ GitExecutor = (*GitRunner)(nil)
