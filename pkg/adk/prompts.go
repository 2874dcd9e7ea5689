package adk

import (
	_ "embed"
	"strings"
)

//go:embed prompts/system_prompt.md
var systemPrompt string

// GetSystemPrompt returns the assistant's instructions with the scan output
// directory filled in.
func GetSystemPrompt(outputDir string) string {
	return strings.ReplaceAll(systemPrompt, "{{OUTPUT_DIR}}", outputDir)
}
