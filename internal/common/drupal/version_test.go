package drupal

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		name string
		v1   string
		v2   string
		want int
	}{
		{"equal contrib", "7.x-3.20", "7.x-3.20", 0},
		{"newer patch", "7.x-3.25", "7.x-3.20", 1},
		{"older patch", "7.x-3.20", "7.x-3.25", -1},
		{"numeric not lexical", "7.x-3.9", "7.x-3.10", -1},
		{"newer major", "7.x-4.0", "7.x-3.30", 1},
		{"core versions", "7.98", "7.59", 1},
		{"rc before release", "7.x-3.0-rc1", "7.x-3.0", -1},
		{"beta before rc", "7.x-3.0-beta2", "7.x-3.0-rc1", -1},
		{"alpha numbers", "7.x-1.0-alpha3", "7.x-1.0-alpha2", 1},
		{"unstable before alpha", "7.x-1.0-unstable5", "7.x-1.0-alpha1", -1},
		{"dev lowest", "7.x-2.x-dev", "7.x-2.0-unstable1", -1},
		{"prefix ignored", "3.20", "7.x-3.20", 0},
		{"checkout above its release", "7.x-3.20+5-dev", "7.x-3.20", 1},
		{"checkout above older release", "7.x-3.20+5-dev", "7.x-3.19", 1},
		{"checkout below next release", "7.x-3.20+5-dev", "7.x-3.21", -1},
		{"checkout offsets ordered", "7.x-3.20+5-dev", "7.x-3.20+12-dev", -1},
		{"core checkout", "7.98+3-dev", "7.98", 1},
		{"checkout of an rc", "7.x-3.0-rc1+2-dev", "7.x-3.0-rc2", -1},
		{"checkout of an rc above it", "7.x-3.0-rc1+2-dev", "7.x-3.0-rc1", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompareVersions(tt.v1, tt.v2)
			if got != tt.want {
				t.Errorf("CompareVersions(%q, %q) = %d, want %d", tt.v1, tt.v2, got, tt.want)
			}
		})
	}
}

func TestIsDevVersion(t *testing.T) {
	if !IsDevVersion("7.x-2.x-dev") {
		t.Error("7.x-2.x-dev should be a dev version")
	}
	if IsDevVersion("7.x-2.5") {
		t.Error("7.x-2.5 should not be a dev version")
	}
}

// TestCompareVersionsAntisymmetric checks that swapping arguments negates the result
func TestCompareVersionsAntisymmetric(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	versionGen := gopter.CombineGens(
		gen.IntRange(0, 5),
		gen.IntRange(0, 40),
		gen.OneConstOf("", "-rc1", "-beta2", "-alpha1"),
	).Map(func(vals []interface{}) string {
		return fmt.Sprintf("7.x-%d.%d%s", vals[0].(int), vals[1].(int), vals[2].(string))
	})

	properties.Property("CompareVersions(a, b) == -CompareVersions(b, a)", prop.ForAll(
		func(a, b string) bool {
			return CompareVersions(a, b) == -CompareVersions(b, a)
		},
		versionGen,
		versionGen,
	))

	properties.TestingRun(t)
}

func TestKindFromProjectType(t *testing.T) {
	tests := map[string]Kind{
		"project_core":         KindCore,
		"project_module":       KindModule,
		"project_theme":        KindTheme,
		"project_distribution": KindProfile,
		"":                     KindModule,
	}
	for input, want := range tests {
		if got := KindFromProjectType(input); got != want {
			t.Errorf("KindFromProjectType(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestParseKind(t *testing.T) {
	if k, ok := ParseKind(" Theme "); !ok || k != KindTheme {
		t.Errorf("ParseKind(\" Theme \") = %q, %v", k, ok)
	}
	if _, ok := ParseKind("library"); ok {
		t.Error("library should not be a valid kind")
	}
}
