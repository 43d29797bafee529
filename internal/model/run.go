package model

import "time"

// RunStatus represents the outcome of one extraction run.
type RunStatus string

const (
	RunStatusOK     RunStatus = "ok"
	RunStatusFailed RunStatus = "failed"
)

// Run is one persisted extraction: the source document name, the assembled
// record, and the score report when a gold record was supplied.
type Run struct {
	ID        string         `json:"id"`
	Source    string         `json:"source"`
	Status    RunStatus      `json:"status"`
	Record    *InvoiceRecord `json:"record,omitempty"`
	Report    *ScoreReport   `json:"report,omitempty"`
	Accuracy  *float64       `json:"accuracy,omitempty"`
	Error     string         `json:"error,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
