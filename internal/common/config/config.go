package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

var (
	ErrRootNotFound         = errors.New("project root does not exist")
	ErrGitUserNotConfigured = errors.New("git user is not configured: set user.name and user.email in ~/.gitconfig or drupdate config")
)

// Default locations relative to the project root and docroot
const (
	DefaultDocroot       = "docroot"
	DefaultModulesDir    = "sites/all/modules"
	DefaultCatalogURL    = "https://updates.drupal.org/release-history"
	DefaultAPIVersion    = "7.x"
	DefaultArchiveFormat = "tar.gz"
)

// Config represents the application configuration
type Config struct {
	Project ProjectConfig `yaml:"project"`
	Catalog CatalogConfig `yaml:"catalog"`
	HTTP    HTTPConfig    `yaml:"http"`
	Archive ArchiveConfig `yaml:"archive"`
	Git     GitConfig     `yaml:"git"`
}

// ProjectConfig locates the Drupal installation
type ProjectConfig struct {
	Root       string `yaml:"root"`        // Project root; empty means the working directory
	Docroot    string `yaml:"docroot"`     // Relative to Root
	ModulesDir string `yaml:"modules_dir"` // Relative to Docroot
}

// CatalogConfig holds release-history settings
type CatalogConfig struct {
	URL        string        `yaml:"url"`
	APIVersion string        `yaml:"api_version"`
	CacheTTL   time.Duration `yaml:"cache_ttl"`
}

// HTTPConfig holds transport and retry settings
type HTTPConfig struct {
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
	BaseDelay  time.Duration `yaml:"base_delay"`
	MaxDelay   time.Duration `yaml:"max_delay"`
}

// ArchiveConfig holds the release archive format
type ArchiveConfig struct {
	Extension string `yaml:"extension"`
}

// GitConfig holds git user settings
type GitConfig struct {
	User  string `yaml:"user"`
	Email string `yaml:"email"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	return &Config{
		Project: ProjectConfig{
			Docroot:    DefaultDocroot,
			ModulesDir: DefaultModulesDir,
		},
		Catalog: CatalogConfig{
			URL:        DefaultCatalogURL,
			APIVersion: DefaultAPIVersion,
			CacheTTL:   time.Hour,
		},
		HTTP: HTTPConfig{
			Timeout:    60 * time.Second,
			MaxRetries: 3,
			BaseDelay:  1 * time.Second,
			MaxDelay:   4 * time.Second,
		},
		Archive: ArchiveConfig{
			Extension: DefaultArchiveFormat,
		},
	}
}

// ConfigPaths returns all possible config file paths in priority order
// 1. ~/.config/drupdate/config.yaml (XDG standard - priority)
// 2. ~/.drupdate/config.yaml (legacy fallback)
func ConfigPaths() ([]string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}

	return []string{
		filepath.Join(xdgConfig, "drupdate", "config.yaml"),
		filepath.Join(home, ".drupdate", "config.yaml"),
	}, nil
}

// DefaultConfigPath returns the default config file path (XDG standard)
func DefaultConfigPath() (string, error) {
	paths, err := ConfigPaths()
	if err != nil {
		return "", err
	}
	return paths[0], nil
}

// FindConfigPath returns the first existing config file path
// Returns the default path if no config file exists yet
func FindConfigPath() (string, error) {
	paths, err := ConfigPaths()
	if err != nil {
		return "", err
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return paths[0], nil
}

// Load reads configuration from the first available config file
func Load() (*Config, error) {
	configPath, err := FindConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

// LoadFrom reads configuration from a specific file path.
// A missing file is created with the defaults. Keys absent from an existing
// file keep their default values.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if saveErr := cfg.SaveTo(path); saveErr != nil {
				return nil, saveErr
			}
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes configuration to the default config file
func (c *Config) Save() error {
	configPath, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(configPath)
}

// SaveTo writes configuration to a specific file path
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ResolveRoot returns the absolute project root. The override (from --root)
// wins over the configured root, and cwd is used when neither is set.
func (c *Config) ResolveRoot(override, cwd string) (string, error) {
	root := override
	if root == "" {
		root = c.Project.Root
	}
	if root == "" {
		root = cwd
	}

	root, err := expandHome(root)
	if err != nil {
		return "", err
	}
	root, err = filepath.Abs(root)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrRootNotFound, root)
	}
	return root, nil
}

// DocrootDir returns the docroot below root
func (c *Config) DocrootDir(root string) string {
	docroot := c.Project.Docroot
	if docroot == "" {
		docroot = DefaultDocroot
	}
	if filepath.IsAbs(docroot) {
		return docroot
	}
	return filepath.Join(root, docroot)
}

// ModulesDir returns the default contrib module directory below the docroot
func (c *Config) ModulesDir(root string) string {
	modules := c.Project.ModulesDir
	if modules == "" {
		modules = DefaultModulesDir
	}
	return filepath.Join(c.DocrootDir(root), modules)
}

func expandHome(path string) (string, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// GetGitUser returns the git user name and email.
// It first tries to read from ~/.gitconfig, then falls back to drupdate config.
func (c *Config) GetGitUser() (user, email string, err error) {
	gitconfigPath, err := defaultGitconfigPath()
	if err == nil {
		user, email, err = parseGitconfig(gitconfigPath)
		if err == nil && user != "" && email != "" {
			return user, email, nil
		}
	}

	if c.Git.User != "" && c.Git.Email != "" {
		return c.Git.User, c.Git.Email, nil
	}

	return "", "", ErrGitUserNotConfigured
}

// defaultGitconfigPath returns the default gitconfig file path
func defaultGitconfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".gitconfig"), nil
}

// parseGitconfig reads user.name and user.email from a gitconfig file.
func parseGitconfig(path string) (user, email string, err error) {
	file, err := os.Open(path)
	if err != nil {
		return "", "", err
	}
	defer file.Close()

	return ParseGitconfigContent(file)
}

// ParseGitconfigContent parses gitconfig content from an io.Reader.
// The gitconfig file uses INI format with case-insensitive section and key names.
func ParseGitconfigContent(r io.Reader) (user, email string, err error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", "", err
	}

	f, err := ini.LoadSources(ini.LoadOptions{
		Insensitive:             true,
		AllowBooleanKeys:        true,
		SkipUnrecognizableLines: true,
	}, data)
	if err != nil {
		return "", "", err
	}

	section, err := f.GetSection("user")
	if err != nil {
		return "", "", nil
	}
	return section.Key("name").String(), section.Key("email").String(), nil
}
