package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/contracts-analyzer/constants"
)

// AnalysisRun represents a persisted analysis run for data transfer between layers.
type AnalysisRun struct {
	ID           uuid.UUID                `json:"id"`
	DocumentName string                   `json:"document_name"`
	DocumentHash string                   `json:"document_hash"`
	Status       constants.AnalysisStatus `json:"status"`
	ContractType *string                  `json:"contract_type,omitempty"`
	RiskScore    *int                     `json:"risk_score,omitempty"`
	Report       json.RawMessage          `json:"report,omitempty"`
	ErrorMessage *string                  `json:"error_message,omitempty"`
	StartedAt    time.Time                `json:"started_at"`
	FinishedAt   *time.Time               `json:"finished_at,omitempty"`
}
