package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/atlas/autoapply/internal/types"
)

// DefaultListLimit caps ListApplications when no limit is given.
const DefaultListLimit = 100

// applicationRow is an Outcome ready to insert.
type applicationRow struct {
	opportunityID *string
	jobURL        string
	platform      string
	status        string
	data          []byte
	appliedAt     time.Time
}

// rowsFor keeps filled and submitted outcomes; other statuses are not persisted.
func rowsFor(outcomes []Outcome) ([]applicationRow, error) {
	var rows []applicationRow
	for _, o := range outcomes {
		r := o.Result
		if r == nil || !r.Succeeded() {
			continue
		}

		status := StatusDraft
		if r.Status == types.StatusSubmitted {
			status = StatusApplied
		}
		data, err := json.Marshal(ApplicationData{
			FillResult:  r.FillResult,
			AutoApplied: true,
			Screenshot:  r.ScreenshotPath,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal application data: %w", err)
		}

		var opportunityID *string
		if o.OpportunityID != "" {
			id := o.OpportunityID
			opportunityID = &id
		}
		platform := r.Platform
		if platform == "" {
			platform = "generic"
		}
		appliedAt := r.Timestamp
		if appliedAt.IsZero() {
			appliedAt = time.Now()
		}

		rows = append(rows, applicationRow{
			opportunityID: opportunityID,
			jobURL:        r.JobURL,
			platform:      platform,
			status:        status,
			data:          data,
			appliedAt:     appliedAt,
		})
	}
	return rows, nil
}

// RecordResults stores one row per filled or submitted outcome in a single
// transaction and returns how many rows were written.
func (db *DB) RecordResults(ctx context.Context, userID uuid.UUID, outcomes []Outcome) (int, error) {
	rows, err := rowsFor(outcomes)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(
			`INSERT INTO applications (user_id, opportunity_id, job_url, platform, status, application_data, applied_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			userID, r.opportunityID, r.jobURL, r.platform, r.status, r.data, r.appliedAt,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return 0, fmt.Errorf("failed to insert applications: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit applications: %w", err)
	}
	return len(rows), nil
}

// ListApplications returns a user's applications, newest first.
func (db *DB) ListApplications(ctx context.Context, userID uuid.UUID, limit int) ([]Application, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id, user_id, opportunity_id, job_url, platform, status, application_data, applied_at, created_at
		 FROM applications WHERE user_id = $1
		 ORDER BY applied_at DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	var apps []Application
	for rows.Next() {
		var app Application
		var data []byte
		if err := rows.Scan(&app.ID, &app.UserID, &app.OpportunityID, &app.JobURL, &app.Platform,
			&app.Status, &data, &app.AppliedAt, &app.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		if err := json.Unmarshal(data, &app.Data); err != nil {
			return nil, fmt.Errorf("failed to decode application data: %w", err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return apps, nil
}
