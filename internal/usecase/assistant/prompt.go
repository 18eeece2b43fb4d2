package assistant

import (
	"strings"
)

// NoContextNotice is how a response must begin when nothing relevant was retrieved
const NoContextNotice = "I could not find related information"

const noContextClause = `The CONTEXT is empty. Begin your answer with "` + NoContextNotice +
	`" and then answer from general knowledge and the CHAT HISTORY.`

const promptInstructions = `You are an expert assistant for software troubleshooting.
Use the CONTEXT and CHAT HISTORY between the tags below to answer the QUESTION.
Answer concisely and do not mention the tags.`

// AssemblePrompt builds the completion prompt. history is the summarized question, or the
// raw question when history is disabled. A blank context adds the no-context clause.
func AssemblePrompt(question, history, context string) string {
	var b strings.Builder

	b.WriteString(promptInstructions)
	b.WriteString("\n")
	if strings.TrimSpace(context) == "" {
		b.WriteString(noContextClause)
		b.WriteString("\n")
		context = ""
	}

	b.WriteString("\n<chat_history>")
	b.WriteString(history)
	b.WriteString("</chat_history>\n<context>")
	b.WriteString(context)
	b.WriteString("</context>\n<question>")
	b.WriteString(question)
	b.WriteString("</question>\n\nAnswer:")

	return b.String()
}

// ensureNoContextNotice prefixes the notice when the model ignored the instruction
func ensureNoContextNotice(response string) string {
	if strings.Contains(strings.ToLower(response), strings.ToLower(NoContextNotice)) {
		return response
	}
	return NoContextNotice + ". " + response
}
