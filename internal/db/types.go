package db

import (
	"time"

	"github.com/google/uuid"

	"github.com/atlas/autoapply/internal/types"
)

// Application status values stored in the applications table.
const (
	// StatusDraft is a filled form awaiting human review.
	StatusDraft = "draft"
	// StatusApplied is a submitted application.
	StatusApplied = "applied"
)

// Outcome pairs an apply result with the opportunity it was for.
type Outcome struct {
	OpportunityID string
	Result        *types.ApplyResult
}

// ApplicationData is the JSONB payload of an application row.
type ApplicationData struct {
	FillResult  *types.FillResult `json:"fill_result,omitempty"`
	AutoApplied bool              `json:"auto_applied"`
	Screenshot  string            `json:"screenshot,omitempty"`
}

// Application is a persisted application record.
type Application struct {
	ID            uuid.UUID       `json:"id"`
	UserID        uuid.UUID       `json:"user_id"`
	OpportunityID *string         `json:"opportunity_id,omitempty"`
	JobURL        string          `json:"job_url"`
	Platform      string          `json:"platform"`
	Status        string          `json:"status"`
	Data          ApplicationData `json:"application_data"`
	AppliedAt     time.Time       `json:"applied_at"`
	CreatedAt     time.Time       `json:"created_at"`
}
