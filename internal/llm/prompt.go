package llm

import (
	"strings"
)

// BuildSystemPrompt frames the model as a compliance officer and pins down
// the output contract. The knowledge-base name is only a display label; the
// actual law text travels in the user prompt as CONTEXT.
func BuildSystemPrompt(req EvaluateRequest) string {
	kb := strings.TrimSpace(req.KnowledgeBase)
	if kb == "" {
		kb = "labour law"
	}
	parts := []string{
		"You are an expert legal compliance officer checking an employment contract.",
		"Analyze the provided CONTRACT CLAUSE against the CONTEXT retrieved from the " + kb + " knowledge base.",
		"Decide whether the clause is COMPLIANT, PARTIALLY_COMPLIANT, or NON_COMPLIANT.",
		"Always cite the relevant law section from the CONTEXT that supports your finding, using its reference string in 'citations'.",
		"If no relevant context is found, say so in 'reasoning' and judge on the clause text alone.",
		"Return ONLY JSON that matches the provided JSON Schema. Never output null; omit absent fields.",
	}
	return strings.Join(parts, " ")
}

// BuildUserPrompt packages the clause and its retrieved context.
func BuildUserPrompt(req EvaluateRequest) string {
	var b strings.Builder
	b.WriteString("CONTRACT CLAUSE ")
	b.WriteString(req.ClauseLabel)
	b.WriteString(": ")
	b.WriteString(req.ClauseBody)

	if len(req.Context) > 0 {
		b.WriteString("\n\nCONTEXT:\n")
		for _, sec := range req.Context {
			b.WriteString("[")
			b.WriteString(sec.Reference)
			b.WriteString("]")
			if sec.Title != "" {
				b.WriteString(" ")
				b.WriteString(sec.Title)
			}
			b.WriteString("\n")
			b.WriteString(sec.Text)
			b.WriteString("\n\n")
		}
	} else {
		b.WriteString("\n\nCONTEXT: (no relevant sections retrieved)")
	}
	return b.String()
}
