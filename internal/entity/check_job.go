package entity

import (
	"time"

	"github.com/google/uuid"
)

// CheckJob represents one compliance run over a contract.
type CheckJob struct {
	ID           uuid.UUID  `json:"id"`
	ContractID   uuid.UUID  `json:"contract_id"`
	Status       string     `json:"status"`
	ContractText *string    `json:"contract_text,omitempty"` // normalized text, stage 1 output
	ClauseCount  int        `json:"clause_count"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
}
