package llm

import (
	"context"

	"github.com/hana-yusof/lawcheck/constants"
)

// LawSection is one retrieved knowledge-base passage given to the model as context.
type LawSection struct {
	Reference string `json:"reference"` // e.g. "Employment Act 1955 s.60E"
	Title     string `json:"title,omitempty"`
	Text      string `json:"text"`
}

// Judgment is the normalized verdict we want from the LLM.
type Judgment struct {
	Status    constants.ComplianceStatus `json:"status"`
	Reasoning string                     `json:"reasoning"`
	Citations []string                   `json:"citations,omitempty"` // law references supporting the finding
}

type EvaluateRequest struct {
	ClauseLabel string
	ClauseBody  string

	// Sections retrieved for this clause; formatted into the prompt as CONTEXT.
	Context []LawSection

	// Display name of the knowledge base, cited in the system prompt.
	KnowledgeBase string
}

// ClauseEvaluator is the interface our pipeline depends on.
type ClauseEvaluator interface {
	EvaluateClause(ctx context.Context, req EvaluateRequest) (Judgment, []byte /*rawJSON*/, error)
}
