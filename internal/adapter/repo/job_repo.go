package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"vidver/internal/domain"
	"vidver/internal/infra"
	"vidver/internal/sqlinline"
)

// JobRepositoryPG implements domain.JobStore.
type JobRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewJobRepository creates a job store backed by PostgreSQL.
func NewJobRepository(sql infra.SQLExecutor) *JobRepositoryPG {
	return &JobRepositoryPG{sql: sql}
}

// Create inserts the job in PROCESSING and links its input assets. Links join
// through the assets table scoped to the job's user, so a count mismatch
// means at least one requested asset is missing or owned by someone else.
func (r *JobRepositoryPG) Create(ctx context.Context, job *domain.Job, inputAssetIDs []string) error {
	row := r.sql.QueryRow(ctx, sqlinline.QInsertJob,
		job.UserID,
		string(job.Kind),
		job.CostTokens,
		deref(job.BrandID),
		deref(job.ModelID),
		domain.MustMarshal(job.Presets),
	)
	if err := row.Scan(&job.ID, &job.CreatedAt); err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	job.Status = domain.JobStatusProcessing
	job.UpdatedAt = job.CreatedAt

	if len(inputAssetIDs) == 0 {
		return nil
	}
	tag, err := r.sql.Exec(ctx, sqlinline.QLinkInputAssets, job.ID, inputAssetIDs, job.UserID)
	if err != nil {
		return fmt.Errorf("link input assets: %w", err)
	}
	if int(tag.RowsAffected()) != len(uniqueIDs(inputAssetIDs)) {
		return fmt.Errorf("input assets not owned by user: %w", domain.ErrForbidden)
	}
	return nil
}

// MarkFailed moves a non-terminal job to FAILED. Terminal jobs stay as they
// are; the guard in the statement keeps DONE and FAILED final.
func (r *JobRepositoryPG) MarkFailed(ctx context.Context, jobID, message string) error {
	row := r.sql.QueryRow(ctx, sqlinline.QMarkJobFailed, jobID, message)
	var id string
	if err := row.Scan(&id); err != nil {
		if infra.IsNoRows(err) {
			return nil
		}
		return fmt.Errorf("mark job failed: %w", err)
	}
	return nil
}

// LinkOutputs attaches generated assets to the job.
func (r *JobRepositoryPG) LinkOutputs(ctx context.Context, jobID string, assetIDs []string) error {
	for _, assetID := range assetIDs {
		if _, err := r.sql.Exec(ctx, sqlinline.QLinkOutputAsset, jobID, assetID); err != nil {
			return fmt.Errorf("link output asset %s: %w", assetID, err)
		}
	}
	return nil
}

// GetForUser fetches a job scoped to its owner.
func (r *JobRepositoryPG) GetForUser(ctx context.Context, jobID, userID string) (*domain.Job, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QSelectJobForUser, jobID, userID)
	job, err := scanJob(row)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, fmt.Errorf("job %s: %w", jobID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("select job: %w", err)
	}
	return job, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*domain.Job, error) {
	var job domain.Job
	var presets []byte
	if err := row.Scan(
		&job.ID,
		&job.UserID,
		&job.Kind,
		&job.Status,
		&job.CostTokens,
		&job.BrandID,
		&job.ModelID,
		&presets,
		&job.ErrorMessage,
		&job.CreatedAt,
		&job.UpdatedAt,
		&job.CompletedAt,
	); err != nil {
		return nil, err
	}
	if len(presets) > 0 {
		_ = json.Unmarshal(presets, &job.Presets)
	}
	return &job, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

var _ domain.JobStore = (*JobRepositoryPG)(nil)
