package adk

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/user/vsce-audit/pkg/log"
)

// MaxToolSteps bounds the number of tool calls answered within a single Chat.
const MaxToolSteps = 8

// ErrTooManySteps is returned when the model keeps calling tools past MaxToolSteps.
var ErrTooManySteps = errors.New("assistant exceeded the tool call limit")

// Tool is an action the assistant may run against the scan results.
type Tool interface {
	Name() string
	Description() string
	Execute(ctx context.Context, args map[string]interface{}, progress func(string)) (string, error)
	Schema() map[string]interface{} // JSON schema for arguments
}

// ToolCall is a request from the model to run a tool.
type ToolCall struct {
	ToolName string
	Args     map[string]interface{}
}

// Message is one turn of the conversation.
type Message struct {
	Role    string // "user", "model", "function"
	Content string
}

// LLMProvider is the model backend.
type LLMProvider interface {
	GenerateResponse(ctx context.Context, history []Message, tools []Tool) (string, *ToolCall, error)
	ListModels(ctx context.Context) ([]string, error)
}

// Agent keeps the conversation and the tool registry.
type Agent struct {
	llm     LLMProvider
	tools   map[string]Tool
	history []Message
}

func NewAgent(llm LLMProvider) *Agent {
	return &Agent{
		llm:   llm,
		tools: make(map[string]Tool),
	}
}

func (a *Agent) RegisterTool(t Tool) {
	a.tools[t.Name()] = t
}

// Tools returns the registered tools ordered by name.
func (a *Agent) Tools() []Tool {
	list := make([]Tool, 0, len(a.tools))
	for _, t := range a.tools {
		list = append(list, t)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name() < list[j].Name() })
	return list
}

// History returns a copy of the conversation so far.
func (a *Agent) History() []Message {
	return append([]Message(nil), a.history...)
}

// Reset drops the conversation.
func (a *Agent) Reset() {
	a.history = nil
}

// Chat sends input to the model and runs the tools it asks for until it
// answers with plain text.
func (a *Agent) Chat(ctx context.Context, input string, progress func(string)) (string, error) {
	a.history = append(a.history, Message{Role: "user", Content: input})

	tools := a.Tools()
	for step := 0; step <= MaxToolSteps; step++ {
		respText, toolCall, err := a.llm.GenerateResponse(ctx, a.history, tools)
		if err != nil {
			return "", err
		}

		if toolCall == nil {
			a.history = append(a.history, Message{Role: "model", Content: respText})
			return respText, nil
		}

		log.Debugf("Executing tool: %s with args: %v", toolCall.ToolName, toolCall.Args)
		a.history = append(a.history, Message{
			Role:    "model",
			Content: fmt.Sprintf("I will call tool %s with args %v", toolCall.ToolName, toolCall.Args),
		})

		tool, exists := a.tools[toolCall.ToolName]
		if !exists {
			a.history = append(a.history, Message{
				Role:    "function",
				Content: fmt.Sprintf("Error: tool %s not found", toolCall.ToolName),
			})
			continue
		}

		result, err := tool.Execute(ctx, toolCall.Args, progress)
		if err != nil {
			result = fmt.Sprintf("Error executing tool: %v", err)
		}
		a.history = append(a.history, Message{
			Role:    "function",
			Content: fmt.Sprintf("Tool %s returned: %s", toolCall.ToolName, result),
		})
	}
	return "", ErrTooManySteps
}
