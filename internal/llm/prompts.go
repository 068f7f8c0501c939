package llm

import (
	_ "embed"
	"strings"
)

var (
	//go:embed prompts/career_advisor_v1.txt
	careerAdvisorV1 string
)

// DefaultPromptVersion is used when no version is requested.
const DefaultPromptVersion = "career_advisor_v1"

// PromptTemplate returns the prompt template text and whether the version was recognized.
func PromptTemplate(version string) (string, bool) {
	switch strings.TrimSpace(version) {
	case "career_advisor_v1", "":
		return careerAdvisorV1, true
	default:
		return "", false
	}
}
