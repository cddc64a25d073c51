package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/skilltree/pkg/cache"
	pkgio "github.com/matzehuels/skilltree/pkg/io"
	"github.com/matzehuels/skilltree/pkg/pipeline"
)

const testCatalog = `categories: [fire, frost]
items:
  - {id: spark, category: fire, tier: novice, name: Spark, text_fields: [small flame]}
  - {id: ember, category: fire, tier: apprentice, name: Ember Flame}
  - {id: blaze, category: fire, tier: adept, name: Blaze Flame}
  - {id: pyre, category: fire, tier: expert, name: Pyre}
  - {id: chill, category: frost, tier: 0, name: Chill}
  - {id: sleet, category: frost, tier: 1, name: Sleet Storm}
  - {id: hail, category: frost, tier: 1, name: Hail Storm}
  - {id: glacier, category: frost, tier: 2, name: Glacier}
`

// sandbox isolates a test from the user's config, cache and history and
// returns a directory holding the test catalog.
func sandbox(t *testing.T) (dir, catalog string) {
	t.Helper()
	dir = t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Setenv(envCache, cacheMemory)
	t.Setenv(envMongoURI, "")
	t.Chdir(dir)

	catalog = filepath.Join(dir, "spells.yaml")
	if err := os.WriteFile(catalog, []byte(testCatalog), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir, catalog
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func TestRootCommand(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	want := []string{"build", "cache", "completion", "grid", "history", "inspect", "render", "tree", "validate"}
	var got []string
	for _, cmd := range root.Commands() {
		got = append(got, cmd.Name())
	}
	for _, name := range want {
		if !strings.Contains(strings.Join(got, " "), name) {
			t.Errorf("RootCommand() missing %q, have %v", name, got)
		}
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", []string{"svg"}},
		{"dot", []string{"dot"}},
		{"svg,png", []string{"svg", "png"}},
		{" dot , json ,", []string{"dot", "json"}},
	}
	for _, tt := range tests {
		got := parseFormats(tt.input)
		if strings.Join(got, ",") != strings.Join(tt.want, ",") {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
	if err := validateFormats([]string{"svg", "pdf"}); err == nil {
		t.Error("validateFormats(pdf) error = nil")
	}
}

func TestNewCache(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv(envRedisURL, "")
	ctx := context.Background()

	tests := []struct {
		backend string
		check   func(cache.Cache) bool
		wantErr bool
	}{
		{cacheNone, func(c cache.Cache) bool { _, ok := c.(cache.NullCache); return ok }, false},
		{cacheMemory, func(c cache.Cache) bool { _, ok := c.(*cache.MemoryCache); return ok }, false},
		{cacheFile, func(c cache.Cache) bool { _, ok := c.(*cache.FileCache); return ok }, false},
		{cacheRedis, nil, true},
		{"s3", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			c, err := newCache(ctx, tt.backend)
			if (err != nil) != tt.wantErr {
				t.Fatalf("newCache(%q) error = %v, wantErr %v", tt.backend, err, tt.wantErr)
			}
			if tt.check != nil && !tt.check(c) {
				t.Errorf("newCache(%q) = %T", tt.backend, c)
			}
		})
	}
}

func TestCacheBackend(t *testing.T) {
	t.Setenv(envCache, "")
	if got := cacheBackend(); got != cacheFile {
		t.Errorf("cacheBackend() = %q, want %q", got, cacheFile)
	}
	t.Setenv(envCache, " Redis ")
	if got := cacheBackend(); got != cacheRedis {
		t.Errorf("cacheBackend() = %q, want %q", got, cacheRedis)
	}
}

func TestBuildCommand(t *testing.T) {
	dir, catalog := sandbox(t)
	out := filepath.Join(dir, "out.json")

	if err := execute(t, "build", catalog, "-o", out, "--seed", "7", "--max-children", "3"); err != nil {
		t.Fatalf("build error = %v", err)
	}
	res, err := pkgio.ImportResult(out)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"fire", "frost"} {
		cr := res.Categories[name]
		if cr == nil || cr.Status != pipeline.StatusPlaced || len(cr.Nodes) != 4 {
			t.Errorf("%s = %+v, want 4 placed nodes", name, cr)
		}
	}

	runs, err := os.ReadDir(filepath.Join(dir, "config", appName, "runs"))
	if err != nil || len(runs) != 1 {
		t.Fatalf("history has %d runs, err %v, want 1", len(runs), err)
	}
	if err := execute(t, "history", "list"); err != nil {
		t.Errorf("history list error = %v", err)
	}
	id := strings.TrimSuffix(runs[0].Name(), ".json")
	if err := execute(t, "history", "show", id); err != nil {
		t.Errorf("history show error = %v", err)
	}
	if err := execute(t, "history", "delete", id); err != nil {
		t.Errorf("history delete error = %v", err)
	}
	if err := execute(t, "history", "show", id); err == nil {
		t.Error("history show after delete error = nil")
	}
}

func TestBuildCommandRejectsBadFlags(t *testing.T) {
	_, catalog := sandbox(t)
	if err := execute(t, "build", catalog, "--max-children", "20", "--no-history"); err == nil {
		t.Error("build with --max-children 20 error = nil")
	}
	if err := execute(t, "build", catalog, "--theme-mode", "spiral", "--no-history"); err == nil {
		t.Error("build with --theme-mode spiral error = nil")
	}
}

func TestCommandsLogThroughContext(t *testing.T) {
	_, catalog := sandbox(t)
	var buf bytes.Buffer
	root := New(&buf, LogDebug).RootCommand()
	root.SetArgs([]string{"tree", catalog, "-c", "fire"})
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("tree error = %v", err)
	}
	if !strings.Contains(buf.String(), "built tree") {
		t.Errorf("debug log %q missing builder output", buf.String())
	}
}

func TestTreeGridRenderCommands(t *testing.T) {
	dir, catalog := sandbox(t)

	if err := execute(t, "tree", catalog, "-c", "fire"); err != nil {
		t.Fatalf("tree error = %v", err)
	}
	tr, err := pkgio.ImportTree(filepath.Join(dir, "spells.fire.tree.json"))
	if err != nil {
		t.Fatal(err)
	}
	if tr.Root() != "spark" || tr.Len() != 4 {
		t.Errorf("tree root %q len %d, want spark 4", tr.Root(), tr.Len())
	}

	gridPath := filepath.Join(dir, "grid.yaml")
	if err := execute(t, "grid", catalog, "--mode", "linear", "-o", gridPath); err != nil {
		t.Fatalf("grid error = %v", err)
	}
	if err := execute(t, "validate", catalog, "--grid", gridPath); err != nil {
		t.Fatalf("validate error = %v", err)
	}

	out := filepath.Join(dir, "spells.result.json")
	if err := execute(t, "build", catalog, "--grid", gridPath, "--no-history"); err != nil {
		t.Fatalf("build error = %v", err)
	}
	if err := execute(t, "render", out, "-c", "frost", "-f", "dot"); err != nil {
		t.Fatalf("render error = %v", err)
	}
	dot, err := os.ReadFile(filepath.Join(dir, "spells.frost.dot"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(dot, []byte(`"chill"`)) {
		t.Errorf("rendered dot missing root node:\n%s", dot)
	}
}

func TestCompletionCommand(t *testing.T) {
	var buf bytes.Buffer
	root := New(io.Discard, LogInfo).RootCommand()
	root.SetArgs([]string{"completion", "bash"})
	root.SetOut(&buf)
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), appName) {
		t.Error("bash completion does not mention the command")
	}
}
