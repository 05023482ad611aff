package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harishkotra/SketchStack/pkg/llm"
)

const shopPlan = `{"components":[{"id":"web","name":"Storefront","type":"frontend"},{"id":"api","name":"Orders API","type":"service"},{"id":"db","name":"Orders DB","type":"database"}],"relationships":[{"from":"web","to":"api","protocol":"HTTPS"},{"from":"api","to":"db","protocol":"SQL"}],"architecture_style":"monolith"}`

// newTestCLI returns a CLI whose config keeps sessions and outputs under a
// temp dir and whose model always answers reply.
func newTestCLI(t *testing.T, reply string) (*CLI, *bytes.Buffer, string) {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "sketchstack.toml")
	conf := "[session]\nbackend = \"file\"\ndir = \"" + filepath.ToSlash(filepath.Join(dir, "sessions")) + "\"\n\n[cache]\nbackend = \"none\"\n"
	if err := os.WriteFile(cfgPath, []byte(conf), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	c := New(&out, LogInfo)
	c.ConfigPath = cfgPath
	c.Out = &out
	c.Model = llm.ClientFunc(func(context.Context, []llm.Message, llm.ChatOptions) (string, error) {
		return reply, nil
	})
	return c, &out, dir
}

func execute(t *testing.T, c *CLI, args ...string) error {
	t.Helper()
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(c.out())
	root.SetErr(c.out())
	return root.ExecuteContext(context.Background())
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()
	for _, name := range []string{"serve", "generate", "refine", "render", "layout", "presets", "sessions", "cache", "completion"} {
		t.Run(name, func(t *testing.T) {
			cmd, _, err := root.Find([]string{name})
			if err != nil || cmd.Name() != name {
				t.Errorf("Find(%q) = %v, %v", name, cmd, err)
			}
		})
	}
}

func TestGenerateWritesOutputs(t *testing.T) {
	c, out, dir := newTestCLI(t, shopPlan)
	base := filepath.Join(dir, "shop")

	if err := execute(t, c, "generate", "-o", base, "-f", "drawio,excalidraw,plan", "an online shop"); err != nil {
		t.Fatalf("generate: %v", err)
	}

	for _, ext := range []string{".drawio", ".excalidraw", ".plan.json"} {
		if _, err := os.Stat(base + ext); err != nil {
			t.Errorf("missing %s: %v", ext, err)
		}
	}
	doc, _ := os.ReadFile(base + ".drawio")
	if !strings.Contains(string(doc), "Orders API") {
		t.Error("draw.io document does not mention the API component")
	}
	for _, want := range []string{"Storefront", "Session", "refine --session"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestGenerateRequiresDescription(t *testing.T) {
	c, _, _ := newTestCLI(t, shopPlan)
	err := execute(t, c, "generate")
	if err == nil || !strings.Contains(err.Error(), "description") {
		t.Errorf("generate without input error = %v", err)
	}
}

func TestGenerateWithPreset(t *testing.T) {
	c, out, dir := newTestCLI(t, shopPlan)
	if err := execute(t, c, "generate", "--preset", "rag-pipeline", "-o", filepath.Join(dir, "rag"), "-f", "plan"); err != nil {
		t.Fatalf("generate --preset: %v", err)
	}
	if !strings.Contains(out.String(), "Preset") {
		t.Errorf("output = %q, want preset notice", out.String())
	}
}

func TestGenerateUnknownPreset(t *testing.T) {
	c, _, _ := newTestCLI(t, shopPlan)
	if err := execute(t, c, "generate", "--preset", "nope"); err == nil {
		t.Error("want error for unknown preset")
	}
}

func TestGenerateThenRefine(t *testing.T) {
	c, out, dir := newTestCLI(t, shopPlan)
	if err := execute(t, c, "generate", "-o", filepath.Join(dir, "a"), "-f", "plan", "an online shop"); err != nil {
		t.Fatalf("generate: %v", err)
	}
	entries, err := os.ReadDir(filepath.Join(dir, "sessions"))
	if err != nil || len(entries) == 0 {
		t.Fatalf("no session stored: %v", err)
	}
	id := strings.TrimSuffix(entries[0].Name(), filepath.Ext(entries[0].Name()))

	out.Reset()
	if err := execute(t, c, "refine", "--session", id, "-o", filepath.Join(dir, "b"), "-f", "plan", "add", "a", "cache"); err != nil {
		t.Fatalf("refine: %v", err)
	}
	if !strings.Contains(out.String(), "refined") {
		t.Errorf("output = %q, want refine success", out.String())
	}

	out.Reset()
	if err := execute(t, c, "sessions", "show", id, "--json"); err != nil {
		t.Fatalf("sessions show: %v", err)
	}
	if !strings.Contains(out.String(), `"architecturePlan"`) {
		t.Errorf("sessions show --json = %q", out.String())
	}
}

func TestRefineUnknownSession(t *testing.T) {
	c, _, _ := newTestCLI(t, shopPlan)
	if err := execute(t, c, "refine", "--session", "missing", "add a cache"); err == nil {
		t.Error("want error for unknown session")
	}
}

func TestRenderPlanFile(t *testing.T) {
	c, out, dir := newTestCLI(t, "")
	input := filepath.Join(dir, "shop.plan.json")
	if err := os.WriteFile(input, []byte(shopPlan), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := execute(t, c, "render", input, "-f", "drawio,dot,png", "--orientation", "LR"); err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, name := range []string{"shop.drawio", "shop.dot"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
	if !strings.Contains(out.String(), "draw.io") {
		t.Errorf("output = %q, want the png export link", out.String())
	}
}

func TestRenderRejects(t *testing.T) {
	c, _, dir := newTestCLI(t, "")
	good := filepath.Join(dir, "good.json")
	bad := filepath.Join(dir, "bad.json")
	_ = os.WriteFile(good, []byte(shopPlan), 0o644)
	_ = os.WriteFile(bad, []byte(`{"components":[]}`), 0o644)

	tests := []struct {
		name string
		args []string
	}{
		{"invalid plan", []string{"render", bad}},
		{"missing file", []string{"render", filepath.Join(dir, "none.json")}},
		{"bad format", []string{"render", good, "-f", "bmp"}},
		{"bad orientation", []string{"render", good, "--orientation", "diagonal"}},
		{"bad provider", []string{"render", good, "--provider", "oracle"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := execute(t, c, tt.args...); err == nil {
				t.Error("want error")
			}
		})
	}
}

func TestLayoutWritesPositions(t *testing.T) {
	c, _, dir := newTestCLI(t, "")
	input := filepath.Join(dir, "shop.json")
	if err := os.WriteFile(input, []byte(shopPlan), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := execute(t, c, "layout", input, "--ranking", "flow"); err != nil {
		t.Fatalf("layout: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "shop.layout.json"))
	if err != nil {
		t.Fatal(err)
	}
	var got layoutFile
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if len(got.Nodes) != 3 || len(got.Edges) != 2 {
		t.Errorf("layout has %d nodes and %d edges, want 3 and 2", len(got.Nodes), len(got.Edges))
	}
	if got.Ranking != "flow" {
		t.Errorf("Ranking = %q, want flow", got.Ranking)
	}
}

func TestPresetsCommand(t *testing.T) {
	c, out, _ := newTestCLI(t, "")
	if err := execute(t, c, "presets"); err != nil {
		t.Fatalf("presets: %v", err)
	}
	if !strings.Contains(out.String(), "rag-pipeline") {
		t.Errorf("presets output missing rag-pipeline: %q", out.String())
	}

	out.Reset()
	if err := execute(t, c, "presets", "show", "rag-pipeline"); err != nil {
		t.Fatalf("presets show: %v", err)
	}
	if !strings.Contains(out.String(), "generate --preset rag-pipeline") {
		t.Errorf("presets show output = %q", out.String())
	}
}

func TestCachePath(t *testing.T) {
	c, out, _ := newTestCLI(t, "")
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")
	if err := execute(t, c, "cache", "path"); err != nil {
		t.Fatal(err)
	}
	if got, want := strings.TrimSpace(out.String()), filepath.Join("/tmp/xdg", appName); got != want {
		t.Errorf("cache path = %q, want %q", got, want)
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{"drawio", "excalidraw"}},
		{"svg", []string{"svg"}},
		{"drawio, svg ,,plan", []string{"drawio", "svg", "plan"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := parseFormats(tt.in)
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("parseFormats(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestValidateFormats(t *testing.T) {
	tests := []struct {
		formats []string
		wantErr bool
	}{
		{[]string{"drawio", "excalidraw", "plan"}, false},
		{[]string{"xml", "json", "dot", "svg", "png", "pdf"}, false},
		{[]string{"svg", "bmp"}, true},
		{nil, false},
	}
	for _, tt := range tests {
		if err := validateFormats(tt.formats); (err != nil) != tt.wantErr {
			t.Errorf("validateFormats(%v) error = %v, wantErr %v", tt.formats, err, tt.wantErr)
		}
	}
}

func TestOutputBase(t *testing.T) {
	tests := []struct {
		out, in, want string
	}{
		{"diagram.drawio", "", "diagram"},
		{"x/shop.plan.json", "", "x/shop"},
		{"plain", "", "plain"},
		{"", "shop.plan.json", "shop"},
		{"", "shop.json", "shop"},
		{"", "", "architecture"},
	}
	for _, tt := range tests {
		if got := outputBase(tt.out, tt.in, "architecture"); got != tt.want {
			t.Errorf("outputBase(%q, %q) = %q, want %q", tt.out, tt.in, got, tt.want)
		}
	}
}
