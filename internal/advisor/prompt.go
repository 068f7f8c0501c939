package advisor

import (
	"fmt"
	"strings"

	"pathfinder-backend/internal/llm"
)

// BuildPrompt renders the advisor prompt for profile.
func BuildPrompt(version string, p Profile) (string, error) {
	tmpl, ok := llm.PromptTemplate(version)
	if !ok {
		return "", fmt.Errorf("unknown prompt version %q", version)
	}
	replacer := strings.NewReplacer(
		"{{INTERESTS}}", strings.TrimSpace(p.Interests),
		"{{STRENGTHS}}", strings.TrimSpace(p.Strengths),
		"{{GOALS}}", strings.TrimSpace(p.Goals),
	)
	return replacer.Replace(tmpl), nil
}
