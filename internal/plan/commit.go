package plan

import (
	"fmt"
	"strings"
)

// ChangeLine describes one package update, e.g. "views: 7.x-3.20 -> 7.x-3.25 (Bug fixes)"
func (r Row) ChangeLine() string {
	from := r.CurrentVersion
	if from == "" {
		from = "unknown"
	}
	line := fmt.Sprintf("%s: %s -> %s", r.Name, from, r.LatestVersion)
	if r.UpdateType != "" {
		line += " (" + r.UpdateType + ")"
	}
	return line
}

// CommitMessage returns the commit message for the package rows of p. A single
// update uses its change line as subject; several updates are listed in the body.
func (p *Plan) CommitMessage() string {
	rows := p.Packages()
	switch len(rows) {
	case 0:
		return ""
	case 1:
		return rows[0].ChangeLine()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Update %d Drupal packages\n\n", len(rows))
	for _, row := range rows {
		b.WriteString("- " + row.ChangeLine() + "\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}
