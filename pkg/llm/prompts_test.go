package llm

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/harishkotra/SketchStack/pkg/plan"
)

func TestExtractionMessages(t *testing.T) {
	msgs := ExtractionMessages("A blog with a database", plan.ProviderGCP)
	if len(msgs) != 2 || msgs[0].Role != RoleSystem || msgs[1].Role != RoleUser {
		t.Fatalf("roles = %+v", msgs)
	}
	sys := msgs[0].Content
	for _, want := range []string{
		"Cloud preference: gcp.",
		"serverless_function",
		"waf, other)",
		"agent-workflow",
		`"architecture_style": "rag-pipeline"`,
	} {
		if !strings.Contains(sys, want) {
			t.Errorf("system prompt missing %q", want)
		}
	}
	if strings.Contains(sys, "%!") {
		t.Error("system prompt has formatting artefacts")
	}
	if !strings.Contains(msgs[1].Content, "Description:\nA blog with a database\n") {
		t.Errorf("user message = %q", msgs[1].Content)
	}
}

func TestExtractionPromptDefaultsToNeutral(t *testing.T) {
	if !strings.Contains(ExtractionPrompt(""), "Cloud preference: neutral.") {
		t.Error("empty provider not rendered as neutral")
	}
}

func TestRefinementMessages(t *testing.T) {
	p := plan.ArchitecturePlan{
		Components:        []plan.Component{{ID: "api", Name: "API", Type: plan.ComponentBackend}},
		ArchitectureStyle: plan.StyleMonolith,
	}
	msgs, err := RefinementMessages(p, "add a cache")
	if err != nil {
		t.Fatalf("RefinementMessages() error: %v", err)
	}
	if !strings.Contains(msgs[0].Content, "Return the FULL updated JSON (not a diff).") {
		t.Error("system prompt missing full-plan rule")
	}
	user := msgs[1].Content
	if !strings.Contains(user, `"id": "api"`) || !strings.Contains(user, "User instruction:\nadd a cache\n") {
		t.Errorf("user message = %q", user)
	}

	start := strings.Index(user, "{")
	end := strings.LastIndex(user, "}")
	var round plan.ArchitecturePlan
	if err := json.Unmarshal([]byte(user[start:end+1]), &round); err != nil {
		t.Fatalf("embedded plan is not JSON: %v", err)
	}
	if round.ArchitectureStyle != plan.StyleMonolith {
		t.Errorf("embedded style = %q", round.ArchitectureStyle)
	}
}

func TestRepairMessages(t *testing.T) {
	msgs := RepairMessages("components: missing", `{"x":1}`)
	want := "The following JSON failed validation.\n\nError: components: missing\n\nOriginal JSON:\n{\"x\":1}\n\nFix the JSON and return ONLY the corrected JSON."
	if msgs[1].Content != want {
		t.Errorf("user message = %q, want %q", msgs[1].Content, want)
	}
	if !strings.HasPrefix(msgs[0].Content, "You are a JSON repair assistant.") {
		t.Errorf("system message = %q", msgs[0].Content)
	}
}

func TestRepairer(t *testing.T) {
	var got []Message
	var gotModel string
	c := ClientFunc(func(_ context.Context, msgs []Message, opts ChatOptions) (string, error) {
		got, gotModel = msgs, opts.Model
		return "{}", nil
	})
	out, err := Repairer(c, ChatOptions{Model: "m"})(context.Background(), "bad", "raw")
	if err != nil || out != "{}" {
		t.Fatalf("repair = %q, %v", out, err)
	}
	if gotModel != "m" || len(got) != 2 || !strings.Contains(got[1].Content, "Error: bad") {
		t.Errorf("chat called with %q %+v", gotModel, got)
	}
}
