package adk

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "gemini-1.5-flash"

type GeminiProvider struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiProvider(ctx context.Context, apiKey string, modelName string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	if modelName == "" {
		modelName = defaultGeminiModel
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0)
	return &GeminiProvider{client: client, model: model}, nil
}

// SetSystemPrompt installs the instructions sent with every request.
func (g *GeminiProvider) SetSystemPrompt(prompt string) {
	g.model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(prompt)}}
}

func (g *GeminiProvider) ListModels(ctx context.Context) ([]string, error) {
	iter := g.client.ListModels(ctx)
	var names []string
	for {
		m, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		if strings.Contains(m.Name, "gemini") {
			names = append(names, strings.TrimPrefix(m.Name, "models/"))
		}
	}
	return names, nil
}

func (g *GeminiProvider) GenerateResponse(ctx context.Context, history []Message, tools []Tool) (string, *ToolCall, error) {
	if len(history) == 0 {
		return "", nil, errors.New("empty history")
	}

	g.model.Tools = nil
	if len(tools) > 0 {
		decls := make([]*genai.FunctionDeclaration, 0, len(tools))
		for _, t := range tools {
			decls = append(decls, &genai.FunctionDeclaration{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  toGenaiSchema(t.Schema()),
			})
		}
		g.model.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}

	contents := toContents(history)
	session := g.model.StartChat()
	session.History = contents[:len(contents)-1]

	resp, err := session.SendMessage(ctx, contents[len(contents)-1].Parts...)
	if err != nil {
		return "", nil, err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", nil, errors.New("no response candidates")
	}

	var text strings.Builder
	var call *ToolCall
	for _, part := range resp.Candidates[0].Content.Parts {
		switch p := part.(type) {
		case genai.FunctionCall:
			if call == nil {
				call = &ToolCall{ToolName: p.Name, Args: p.Args}
			}
		case genai.Text:
			text.WriteString(string(p))
		}
	}
	if call == nil && text.Len() == 0 {
		return "", nil, errors.New("empty response")
	}
	return text.String(), call, nil
}

func (g *GeminiProvider) Close() {
	g.client.Close()
}

// toContents maps the conversation onto gemini roles. Tool output is sent
// back as user text; the model only sees its own calls as prose.
func toContents(history []Message) []*genai.Content {
	cs := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		role := "user"
		if msg.Role == "model" {
			role = "model"
		}
		cs = append(cs, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(msg.Content)},
		})
	}
	return cs
}

// toGenaiSchema converts the small JSON-schema subset tools declare
// (object, string, integer, number, boolean, array).
func toGenaiSchema(m map[string]interface{}) *genai.Schema {
	if m == nil {
		return nil
	}
	s := &genai.Schema{}
	switch m["type"] {
	case "object":
		s.Type = genai.TypeObject
	case "integer":
		s.Type = genai.TypeInteger
	case "number":
		s.Type = genai.TypeNumber
	case "boolean":
		s.Type = genai.TypeBoolean
	case "array":
		s.Type = genai.TypeArray
	default:
		s.Type = genai.TypeString
	}
	if d, ok := m["description"].(string); ok {
		s.Description = d
	}
	if props, ok := m["properties"].(map[string]interface{}); ok {
		s.Properties = make(map[string]*genai.Schema, len(props))
		for name, p := range props {
			if pm, ok := p.(map[string]interface{}); ok {
				s.Properties[name] = toGenaiSchema(pm)
			}
		}
	}
	if items, ok := m["items"].(map[string]interface{}); ok {
		s.Items = toGenaiSchema(items)
	}
	switch req := m["required"].(type) {
	case []string:
		s.Required = req
	case []interface{}:
		for _, r := range req {
			if name, ok := r.(string); ok {
				s.Required = append(s.Required, name)
			}
		}
	}
	return s
}
