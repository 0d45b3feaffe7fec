package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ClauseResult is one evaluated clause inside a check job. Position is the
// clause's document order; labels may repeat in malformed contracts, so
// (job, position) is the real identity.
type ClauseResult struct {
	ID          uuid.UUID       `json:"id"`
	JobID       uuid.UUID       `json:"job_id"`
	Position    int             `json:"position"`
	Label       string          `json:"label"`
	Body        string          `json:"body"`
	Status      string          `json:"status"`
	Reasoning   string          `json:"reasoning"`
	Citations   []string        `json:"citations,omitempty"`
	RawJudgment json.RawMessage `json:"raw_judgment,omitempty"`
	EvaluatedAt time.Time       `json:"evaluated_at"`
}
