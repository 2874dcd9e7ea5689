package adk

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/go-cmp/cmp"
)

type scriptedProvider struct {
	calls []*ToolCall // returned in order, then a text answer
	seen  [][]Message
}

func (p *scriptedProvider) GenerateResponse(_ context.Context, history []Message, _ []Tool) (string, *ToolCall, error) {
	p.seen = append(p.seen, append([]Message(nil), history...))
	if len(p.calls) > 0 {
		c := p.calls[0]
		p.calls = p.calls[1:]
		return "", c, nil
	}
	return "done", nil, nil
}

func (p *scriptedProvider) ListModels(context.Context) ([]string, error) { return nil, nil }

type echoTool struct{ runs int }

func (e *echoTool) Name() string        { return "Echo" }
func (e *echoTool) Description() string { return "echoes its input" }
func (e *echoTool) Schema() map[string]interface{} {
	return map[string]interface{}{"type": "object"}
}
func (e *echoTool) Execute(_ context.Context, args map[string]interface{}, progress func(string)) (string, error) {
	e.runs++
	if progress != nil {
		progress("echoing")
	}
	if args["fail"] == true {
		return "", errors.New("boom")
	}
	return "echo:" + args["text"].(string), nil
}

func TestChatRunsToolThenAnswers(t *testing.T) {
	p := &scriptedProvider{calls: []*ToolCall{{ToolName: "Echo", Args: map[string]interface{}{"text": "hi"}}}}
	tool := &echoTool{}
	a := NewAgent(p)
	a.RegisterTool(tool)

	var progress []string
	got, err := a.Chat(context.Background(), "question", func(s string) { progress = append(progress, s) })
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if got != "done" || tool.runs != 1 {
		t.Errorf("Chat() = %q with %d runs, want done with 1 run", got, tool.runs)
	}
	if diff := cmp.Diff([]string{"echoing"}, progress); diff != "" {
		t.Errorf("progress mismatch (-want +got):\n%s", diff)
	}

	h := a.History()
	last := p.seen[len(p.seen)-1]
	if !strings.Contains(last[len(last)-1].Content, "echo:hi") {
		t.Errorf("tool result not passed back to the model: %+v", last)
	}
	if h[len(h)-1].Role != "model" || h[len(h)-1].Content != "done" {
		t.Errorf("last history entry = %+v", h[len(h)-1])
	}
}

func TestChatUnknownToolAndToolError(t *testing.T) {
	p := &scriptedProvider{calls: []*ToolCall{
		{ToolName: "Missing"},
		{ToolName: "Echo", Args: map[string]interface{}{"fail": true}},
	}}
	a := NewAgent(p)
	a.RegisterTool(&echoTool{})

	if _, err := a.Chat(context.Background(), "q", nil); err != nil {
		t.Fatalf("Chat: %v", err)
	}
	var joined strings.Builder
	for _, m := range a.History() {
		joined.WriteString(m.Content + "\n")
	}
	for _, want := range []string{"tool Missing not found", "Error executing tool: boom"} {
		if !strings.Contains(joined.String(), want) {
			t.Errorf("history missing %q:\n%s", want, joined.String())
		}
	}
}

func TestChatStepLimit(t *testing.T) {
	calls := make([]*ToolCall, MaxToolSteps+5)
	for i := range calls {
		calls[i] = &ToolCall{ToolName: "Echo", Args: map[string]interface{}{"text": "x"}}
	}
	a := NewAgent(&scriptedProvider{calls: calls})
	a.RegisterTool(&echoTool{})

	if _, err := a.Chat(context.Background(), "q", nil); !errors.Is(err, ErrTooManySteps) {
		t.Errorf("Chat() error = %v, want ErrTooManySteps", err)
	}
}

func TestToGenaiSchema(t *testing.T) {
	got := toGenaiSchema(map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"folder": map[string]interface{}{"type": "string", "description": "extension folder"},
			"limit":  map[string]interface{}{"type": "integer"},
		},
		"required": []string{"folder"},
	})
	want := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"folder": {Type: genai.TypeString, Description: "extension folder"},
			"limit":  {Type: genai.TypeInteger},
		},
		Required: []string{"folder"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("toGenaiSchema() mismatch (-want +got):\n%s", diff)
	}
}

func TestNewProviderRequiresKey(t *testing.T) {
	if _, err := NewProvider(context.Background(), "gemini", "", ""); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("NewProvider() error = %v, want ErrNoAPIKey", err)
	}
	if _, err := NewProvider(context.Background(), "openai", "k", ""); err == nil {
		t.Error("NewProvider(openai) succeeded, want error")
	}
}

func TestGetSystemPromptFillsOutputDir(t *testing.T) {
	p := GetSystemPrompt("/tmp/out")
	if !strings.Contains(p, "/tmp/out") || strings.Contains(p, "{{OUTPUT_DIR}}") {
		t.Errorf("GetSystemPrompt() did not substitute the output dir")
	}
}
