package prompt

import "strings"

// NoContextSentinel is injected into the grounded prompt when retrieval
// produced nothing usable, so the model refuses instead of hallucinating.
const NoContextSentinel = "no relevant documents found"

// BuildClassificationPrompt asks the model to decide whether the question
// needs document retrieval. The verdict is read from the LAST line of the
// reply, which tolerates chatty models that explain before answering.
func BuildClassificationPrompt(question string) string {
	var sb strings.Builder

	sb.WriteString("You are a routing assistant for a medical literature chat service.\n")
	sb.WriteString("Decide whether answering the user's message requires searching the indexed research papers.\n\n")
	sb.WriteString("Reply with exactly one of these two labels on the last line of your response:\n")
	sb.WriteString("RAG_NEEDED - the message asks about medical topics, research findings, treatments, or paper contents.\n")
	sb.WriteString("GENERAL_CHAT - the message is a greeting, small talk, or about the assistant itself.\n\n")
	sb.WriteString("User message: ")
	sb.WriteString(question)

	return sb.String()
}

// BuildGroundedPrompt wraps the assembled document context around the user
// question. The instructions forbid answering from parametric knowledge.
func BuildGroundedPrompt(contextBlock, question string) string {
	var sb strings.Builder

	sb.WriteString("You are a medical literature assistant. Answer the question using ONLY the context below.\n")
	sb.WriteString("If the context does not contain enough information to answer, say so explicitly ")
	sb.WriteString("and do not answer from your own knowledge.\n\n")
	sb.WriteString("Context:\n")
	sb.WriteString(contextBlock)
	sb.WriteString("\n\nQuestion: ")
	sb.WriteString(question)

	return sb.String()
}

// BuildGeneralPrompt is used for the conversational path where no
// document grounding is required.
func BuildGeneralPrompt(question string) string {
	var sb strings.Builder

	sb.WriteString("You are a friendly assistant for a medical literature service. ")
	sb.WriteString("Answer conversationally. If the user asks a substantive medical question, ")
	sb.WriteString("suggest they phrase it as a question about the indexed papers.\n\n")
	sb.WriteString("User message: ")
	sb.WriteString(question)

	return sb.String()
}
