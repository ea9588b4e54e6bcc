package llm

import (
	"strings"

	"github.com/panbanda/commitlens/pkg/models"
)

// SystemPrompt frames the model as a code reviewer.
const SystemPrompt = "You are an expert code reviewer with deep knowledge of software " +
	"engineering best practices, security, and performance optimization."

const promptPreamble = "Please analyze the following code changes and provide:\n" +
	"1. Code quality assessment\n" +
	"2. Potential issues or bugs\n" +
	"3. Security concerns\n" +
	"4. Performance implications\n" +
	"5. Improvement recommendations\n\n" +
	"Changes:\n"

const responseInstructions = "\nRespond with a single JSON object and nothing else. " +
	"Use the keys quality_score (number from 0 to 10), issues (array of objects with " +
	"type, severity and description), security_concerns (array of objects with level " +
	"and description), performance_impact (string) and recommendations (array of strings).\n"

// BuildPrompt renders the review request for a set of changed files.
func BuildPrompt(files []models.ChangedFile) string {
	var b strings.Builder
	b.WriteString(promptPreamble)
	for _, f := range files {
		b.WriteString("\nFile: ")
		b.WriteString(f.Path)
		b.WriteString("\nChanges:\n```\n")
		b.WriteString(f.Patch)
		b.WriteString("\n```\n")
	}
	b.WriteString(responseInstructions)
	return b.String()
}
