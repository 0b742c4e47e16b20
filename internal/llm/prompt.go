package llm

import (
	"strings"
)

// ConstructPrompt builds the final prompt string to be sent to the LLM.
// It combines the base system instructions (systemPrompt), optional contextual
// information (context, typically from context.md), and the user's specific
// request (userInput), then restates the required JSON output shape.
func ConstructPrompt(userInput string, systemPrompt string, context string) string {
	var promptBuilder strings.Builder

	promptBuilder.WriteString(systemPrompt)
	promptBuilder.WriteString("\n\n")

	if context != "" {
		promptBuilder.WriteString("Relevant Context:\n")
		promptBuilder.WriteString(context)
		promptBuilder.WriteString("\n\n")
	}

	promptBuilder.WriteString("User Request:\n")
	promptBuilder.WriteString(userInput)
	promptBuilder.WriteString("\n\n")

	promptBuilder.WriteString("Based on the user request and context, generate a response in the following JSON format ONLY:\n")
	promptBuilder.WriteString("{\n")
	promptBuilder.WriteString("  \"work_item_type\": \"<The suggested work item type, e.g. Task, Bug, User Story>\",\n")
	promptBuilder.WriteString("  \"title\": \"<A concise title for the work item>\",\n")
	promptBuilder.WriteString("  \"description\": \"<A detailed description of the work item>\",\n")
	promptBuilder.WriteString("  \"tags\": [\"<optional>\", \"<short>\", \"<tags>\"]\n")
	promptBuilder.WriteString("}\n")
	promptBuilder.WriteString("Ensure the output is a single, valid JSON object and nothing else.")

	return promptBuilder.String()
}
