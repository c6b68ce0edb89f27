package version

import (
	"strings"
	"testing"
)

func TestInfoContainsBuildFields(t *testing.T) {
	Version = "1.2.0"
	Commit = "abc1234"
	defer func() { Version, Commit = "dev", "unknown" }()

	info := Info()
	for _, want := range []string{"drupdate version 1.2.0", "commit: abc1234", "go: "} {
		if !strings.Contains(info, want) {
			t.Errorf("Info() missing %q:\n%s", want, info)
		}
	}
	if Short() != "1.2.0" {
		t.Errorf("Short() = %q, want 1.2.0", Short())
	}
}
