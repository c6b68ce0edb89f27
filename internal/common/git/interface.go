package git

// GitExecutor defines the interface for git operations.
// This interface allows for mocking git operations in tests.
type GitExecutor interface {
	// IsRepository reports whether the working directory is inside a git work tree
	IsRepository() bool

	// Status returns the current git status as a list of StatusEntry
	Status() ([]StatusEntry, error)

	// Add stages files for commit
	Add(paths ...string) error

	// Commit creates a git commit with the specified message and author
	Commit(message, user, email string) error

	// WorkDir returns the working directory of the git repository
	WorkDir() string
}
