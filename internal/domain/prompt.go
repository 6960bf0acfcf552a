package domain

import "strings"

const (
	promptPreamble = "You are a creative storyteller narrating an interactive story. "
	promptClosing  = "Respond with a creative and engaging continuation of the story in 2-3 sentences."
)

// BuildPrompt renders the narration request for action given the preceding turns.
func BuildPrompt(history []Turn, action string) string {
	var context strings.Builder
	for _, turn := range history {
		context.WriteString("\n")
		context.WriteString(turn.Speaker.Label())
		context.WriteString(": ")
		context.WriteString(turn.Message)
	}

	var b strings.Builder
	b.WriteString(promptPreamble)
	b.WriteString("Previous context: ")
	b.WriteString(context.String())
	b.WriteString("\n")
	b.WriteString("Player action: ")
	b.WriteString(action)
	b.WriteString("\n")
	b.WriteString(promptClosing)

	return b.String()
}
