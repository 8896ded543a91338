package domain

import "time"

// JobKind enumerates generation job categories.
type JobKind string

const (
	JobKindImage JobKind = "IMAGE"
	JobKindVideo JobKind = "VIDEO"
)

// JobStatus enumerates job lifecycle states. DONE and FAILED are terminal.
type JobStatus string

const (
	JobStatusPending    JobStatus = "PENDING"
	JobStatusProcessing JobStatus = "PROCESSING"
	JobStatusDone       JobStatus = "DONE"
	JobStatusFailed     JobStatus = "FAILED"
)

// Terminal reports whether s permits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == JobStatusDone || s == JobStatusFailed
}

// Token costs per job kind.
const (
	TokenCostImageModify   = 20
	TokenCostVideoGenerate = 50
)

// JobCost returns the token price for a job kind, 0 for unknown kinds.
func JobCost(kind JobKind) int {
	switch kind {
	case JobKindImage:
		return TokenCostImageModify
	case JobKindVideo:
		return TokenCostVideoGenerate
	}
	return 0
}

// TransactionKindFor maps a job kind to its ledger entry kind.
func TransactionKindFor(kind JobKind) TransactionKind {
	if kind == JobKindVideo {
		return TxnKindVideoGenerate
	}
	return TxnKindImageModify
}

// Job is one user-initiated generation request and its lifecycle. A job
// reaches DONE only when the wallet debit and the matching ledger entry have
// been committed with it in a single settlement.
type Job struct {
	ID           string
	UserID       string
	Kind         JobKind
	Status       JobStatus
	CostTokens   int
	BrandID      *string
	ModelID      *string
	Presets      []string
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CompletedAt  *time.Time
}
