package inventory

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/obentoo/drupdate/internal/common/drupal"
)

// writeFile creates path below root with content
func writeFile(t *testing.T, root, path, content string) string {
	t.Helper()
	full := filepath.Join(root, path)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return full
}

// newProject builds a small Drupal 7 tree: core modules, one contrib module
// with a sub-module, a theme, and a module installed twice.
func newProject(t *testing.T) string {
	t.Helper()
	root, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	writeFile(t, root, "docroot/modules/system/system.info",
		"name = System\nversion = \"7.59\"\nproject = \"drupal\"\ncore = 7.x\n")
	writeFile(t, root, "docroot/modules/node/node.info",
		"name = Node\nversion = \"7.59\"\nproject = \"drupal\"\ncore = 7.x\n")
	writeFile(t, root, "docroot/sites/all/modules/views/views.info",
		"name = Views\ncore = 7.x\ndependencies[] = ctools\nversion = \"7.x-3.20\"\nproject = \"views\"\n")
	writeFile(t, root, "docroot/sites/all/modules/views/views_ui.info",
		"name = Views UI\nversion = \"7.x-3.20\"\nproject = \"views\"\n")
	writeFile(t, root, "docroot/sites/all/themes/zen/zen.info",
		"name = Zen\nversion = \"7.x-5.6\"\nproject = \"zen\"\ncore = 7.x\n")
	writeFile(t, root, "docroot/sites/all/modules/ctools/ctools.info",
		"name = Chaos tools\nversion = \"7.x-1.14\"\nproject = \"ctools\"\n")
	writeFile(t, root, "docroot/profiles/custom/modules/ctools/ctools.info",
		"name = Chaos tools\nversion = \"7.x-1.14\"\nproject = \"ctools\"\n")
	writeFile(t, root, "docroot/temp_drupal_core/drupal/modules/user/user.info",
		"name = User\nversion = \"7.98\"\nproject = \"drupal\"\n")
	return root
}

func TestScanGroupsByContainingDirectory(t *testing.T) {
	root := newProject(t)

	inv, err := Scan(root)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	ctools := inv.Paths("ctools")
	if len(ctools) != 2 {
		t.Fatalf("expected 2 ctools locations, got %v", ctools)
	}
	for _, p := range ctools {
		if !filepath.IsAbs(p) || !strings.HasSuffix(p, "ctools/ctools.info") {
			t.Errorf("unexpected ctools path %q", p)
		}
	}

	if len(inv.Paths("views")) != 1 {
		t.Errorf("views should have one location, got %v", inv.Paths("views"))
	}
	if paths := inv.Paths("views_ui"); len(paths) != 0 {
		t.Errorf("sub-module descriptors should not register a package, got %v", paths)
	}
	if paths := inv.Paths("user"); len(paths) != 0 {
		t.Errorf("staging directory should be skipped, got %v", paths)
	}
}

func TestScanDiscoveryOrderIsStable(t *testing.T) {
	root := newProject(t)

	first, err := Scan(root)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	second, err := Scan(root)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if !reflect.DeepEqual(first.Names(), second.Names()) {
		t.Errorf("scan order changed: %v vs %v", first.Names(), second.Names())
	}
}

func TestScanFollowsSymlinkedDescriptors(t *testing.T) {
	root, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	shared, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	target := writeFile(t, shared, "mymodule/mymodule.info", "name = My module\nversion = \"7.x-1.0\"\n")
	link := filepath.Join(root, "docroot", "sites", "all", "modules", "mymodule", "mymodule.info")
	if err := os.MkdirAll(filepath.Dir(link), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
	dangling := filepath.Join(root, "docroot", "sites", "all", "modules", "gone", "gone.info")
	if err := os.MkdirAll(filepath.Dir(dangling), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(filepath.Join(shared, "missing.info"), dangling); err != nil {
		t.Fatal(err)
	}

	inv, err := Scan(root)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if got := inv.Paths("mymodule"); !reflect.DeepEqual(got, []string{target}) {
		t.Errorf("Paths(mymodule) = %v, want the symlink target %q", got, target)
	}
	if got := inv.Paths("gone"); len(got) != 0 {
		t.Errorf("dangling descriptor should be skipped, got %v", got)
	}
}

func TestScanMissingRoot(t *testing.T) {
	if _, err := Scan(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for a missing root")
	}
}

func TestIsDrupal7Project(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "vendor/pkg/pkg.info", "name = vendored\n")
	if IsDrupal7Project(root) {
		t.Error("descriptors under vendor/ should not count")
	}

	writeFile(t, root, "docroot/modules/node/node.info", "name = Node\n")
	if !IsDrupal7Project(root) {
		t.Error("expected a Drupal 7 project")
	}

	if IsDrupal7Project("") {
		t.Error("empty root is never a project")
	}
}

func TestParseDescriptorStrict(t *testing.T) {
	path := writeFile(t, t.TempDir(), "views/views.info",
		"; $Id$\nname = Views\ndescription = Create customized lists; and queries\n"+
			"dependencies[] = ctools\ndependencies[] = entity\nversion = \"7.x-3.20\"\n")

	d, err := ParseDescriptor(path, RecordKeys)
	if err != nil {
		t.Fatalf("ParseDescriptor failed: %v", err)
	}

	want := map[string]string{
		"name":           "Views",
		"description":    "Create customized lists; and queries",
		"dependencies[]": "ctools,entity",
		"version":        "7.x-3.20",
	}
	for k, v := range want {
		if d.Get(k) != v {
			t.Errorf("%s = %q, want %q", k, d.Get(k), v)
		}
	}
}

// TestParseDescriptorFallback covers descriptors that are not valid INI
func TestParseDescriptorFallback(t *testing.T) {
	path := writeFile(t, t.TempDir(), "legacy/legacy.info",
		"name = Legacy\nthis line has no delimiter\nversion = 7.x-1.0\nproject = legacy\nfiles[] = legacy.module\n")

	d, err := ParseDescriptor(path, RecordKeys)
	if err != nil {
		t.Fatalf("ParseDescriptor failed: %v", err)
	}

	want := Descriptor{"name": "Legacy", "version": "7.x-1.0", "project": "legacy"}
	if !reflect.DeepEqual(d, want) {
		t.Errorf("fallback result = %v, want %v", d, want)
	}
}

func TestParseDescriptorMissingFile(t *testing.T) {
	if _, err := ParseDescriptor(filepath.Join(t.TempDir(), "none.info"), RecordKeys); err == nil {
		t.Error("expected error for a missing descriptor")
	}
}

func TestParseDescriptorLines(t *testing.T) {
	data := []byte("  name  =  Views \nno delimiter\nversion = \"7.x-3.20\"\nurl = http://x?a=b\ncore=7.x\n")

	got := ParseDescriptorLines(data, []string{"name", "version", "url", "core"})
	want := Descriptor{
		"name":    "Views",
		"version": "7.x-3.20",
		"url":     "http://x?a=b",
		"core":    "7.x",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseDescriptorLines() = %v, want %v", got, want)
	}
}

// TestParseDescriptorLinesKeepsOnlyWantedKeys checks the fallback never returns unrequested keys
func TestParseDescriptorLinesKeepsOnlyWantedKeys(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	keyGen := gen.OneConstOf("name", "version", "project", "core", "description", "package", "files[]")
	lineGen := gopter.CombineGens(keyGen, gen.AlphaString(), gen.Bool()).Map(func(vals []interface{}) string {
		if vals[2].(bool) {
			return vals[0].(string) + " = " + vals[1].(string)
		}
		return vals[0].(string) + " " + vals[1].(string)
	})

	properties.Property("only wanted keys from lines with '=' are returned", prop.ForAll(
		func(lines []string) bool {
			d := ParseDescriptorLines([]byte(strings.Join(lines, "\n")), RecordKeys)
			for k := range d {
				found := false
				for _, wanted := range RecordKeys {
					if k == wanted {
						found = true
					}
				}
				if !found {
					return false
				}
			}
			return true
		},
		gen.SliceOf(lineGen),
	))

	properties.TestingRun(t)
}

func TestBuildRecords(t *testing.T) {
	root := newProject(t)

	inv, err := Scan(root)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	records, err := BuildRecords(inv, nil)
	if err != nil {
		t.Fatalf("BuildRecords failed: %v", err)
	}

	byName := make(map[string]*PackageRecord)
	for _, r := range records {
		if _, dup := byName[r.Name]; dup {
			t.Errorf("duplicate record %s", r.Name)
		}
		byName[r.Name] = r
	}

	core, ok := byName["drupal"]
	if !ok {
		t.Fatal("core modules should fold into a drupal record")
	}
	if core.Kind != drupal.KindCore || core.CurrentVersion != "7.59" || len(core.Paths) != 0 {
		t.Errorf("unexpected core record %+v", core)
	}
	if _, ok := byName["system"]; ok {
		t.Error("core modules should not produce their own records")
	}

	views := byName["views"]
	if views == nil || views.CurrentVersion != "7.x-3.20" || views.APIVersion != "7.x" || len(views.Paths) != 1 {
		t.Errorf("unexpected views record %+v", views)
	}
	if views.Kind != "" {
		t.Errorf("contrib kind should be left to the catalog, got %q", views.Kind)
	}

	if ctools := byName["ctools"]; ctools == nil || len(ctools.Paths) != 2 {
		t.Errorf("ctools should keep both locations, got %+v", ctools)
	}
}

func TestBuildRecordsProjectWithoutOwnDescriptor(t *testing.T) {
	inv := NewInventory()
	inv.Add("views_ui", "/proj/views/views_ui/views_ui.info")
	inv.Add("views", "/proj/views/views.info")

	parser := DescriptorParserFunc(func(path string, _ []string) (Descriptor, error) {
		if strings.HasSuffix(path, "views_ui.info") {
			return Descriptor{"project": "views", "version": "7.x-3.19"}, nil
		}
		return Descriptor{"project": "views", "version": "7.x-3.20"}, nil
	})

	records, err := BuildRecords(inv, parser)
	if err != nil {
		t.Fatalf("BuildRecords failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected a single views record, got %d", len(records))
	}
	if records[0].CurrentVersion != "7.x-3.20" {
		t.Errorf("project's own descriptor should win, got %q", records[0].CurrentVersion)
	}
	if !reflect.DeepEqual(records[0].Paths, []string{"/proj/views/views.info"}) {
		t.Errorf("unexpected paths %v", records[0].Paths)
	}
}
