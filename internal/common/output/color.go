package output

import (
	"os"
	"strings"

	"github.com/fatih/color"
)

var (
	// Update type colors
	Security = color.New(color.FgRed, color.Bold)
	BugFix   = color.New(color.FgYellow)
	Feature  = color.New(color.FgCyan)

	// Message colors
	Success = color.New(color.FgGreen)
	Warning = color.New(color.FgYellow)
	Error   = color.New(color.FgRed)
	Info    = color.New(color.FgCyan)
	Dim     = color.New(color.Faint)

	// Structural colors
	Header  = color.New(color.FgWhite, color.Bold)
	Package = color.New(color.FgBlue, color.Bold)
)

// NoColor disables color output
func NoColor() {
	color.NoColor = true
}

// UpdateTypeColor returns the color for a release type label
// ("Security update", "Bug fixes", "New features").
func UpdateTypeColor(updateType string) *color.Color {
	lower := strings.ToLower(updateType)
	switch {
	case strings.Contains(lower, "security"):
		return Security
	case strings.Contains(lower, "bug"):
		return BugFix
	case strings.Contains(lower, "feature"):
		return Feature
	default:
		return color.New(color.Reset)
	}
}

// PrintSuccess prints a success message
func PrintSuccess(format string, args ...interface{}) {
	Success.Printf("✓ "+format+"\n", args...)
}

// PrintError prints an error message
func PrintError(format string, args ...interface{}) {
	Error.Fprintf(os.Stderr, "✗ "+format+"\n", args...)
}

// PrintWarning prints a warning message on stderr, leaving stdout to reports
func PrintWarning(format string, args ...interface{}) {
	Warning.Fprintf(os.Stderr, "⚠ "+format+"\n", args...)
}

// PrintInfo prints an info message
func PrintInfo(format string, args ...interface{}) {
	Info.Printf("→ "+format+"\n", args...)
}

// FormatUpdateType formats a release type label with its color
func FormatUpdateType(updateType string) string {
	if updateType == "" {
		return Dim.Sprint("-")
	}
	return UpdateTypeColor(updateType).Sprint(updateType)
}

// FormatPackage formats a package name with color
func FormatPackage(name string) string {
	return Package.Sprint(name)
}
