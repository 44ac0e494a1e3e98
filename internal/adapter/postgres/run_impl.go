package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/user/profile-collector/internal/entity"
	"github.com/user/profile-collector/internal/repository"
)

// RunRepoImpl implements repository.RunRepository on the collection_runs table.
type RunRepoImpl struct {
	db *pgxpool.Pool
}

// NewRunRepo creates a new instance of RunRepoImpl.
func NewRunRepo(db *pgxpool.Pool) *RunRepoImpl {
	return &RunRepoImpl{db: db}
}

func (r *RunRepoImpl) Create(ctx context.Context, run *entity.CollectionRun) error {
	limitsJSON, err := json.Marshal(run.Limits)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO collection_runs (id, search_url, status, limits, submitted_at)
		VALUES ($1, $2, $3, $4, $5);
	`
	_, err = r.db.Exec(ctx, query, run.ID, run.SearchURL, run.Status, limitsJSON, run.SubmittedAt)
	return err
}

func (r *RunRepoImpl) FindByID(ctx context.Context, id string) (*entity.CollectionRun, error) {
	query := `
		SELECT id, search_url, status, stop_reason, limits, passes, record_count,
		       trigger_failures, failure_reason, submitted_at, started_at, finished_at
		FROM collection_runs
		WHERE id = $1;
	`
	var (
		run        entity.CollectionRun
		limitsJSON []byte
	)
	err := r.db.QueryRow(ctx, query, id).Scan(
		&run.ID,
		&run.SearchURL,
		&run.Status,
		&run.StopReason,
		&limitsJSON,
		&run.Passes,
		&run.RecordCount,
		&run.TriggerFailures,
		&run.FailureReason,
		&run.SubmittedAt,
		&run.StartedAt,
		&run.FinishedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(limitsJSON, &run.Limits); err != nil {
		return nil, fmt.Errorf("decode limits of run %s: %w", id, err)
	}
	return &run, nil
}

func (r *RunRepoImpl) MarkRunning(ctx context.Context, id string) error {
	query := `UPDATE collection_runs SET status = $2, started_at = NOW() WHERE id = $1;`
	return r.execOne(ctx, query, id, entity.RunRunning)
}

func (r *RunRepoImpl) MarkCompleted(ctx context.Context, id string, s entity.RunSummary) error {
	return r.finish(ctx, id, entity.RunCompleted, s, "")
}

func (r *RunRepoImpl) MarkFailed(ctx context.Context, id string, s entity.RunSummary, reason string) error {
	return r.finish(ctx, id, entity.RunFailed, s, reason)
}

func (r *RunRepoImpl) finish(ctx context.Context, id string, status entity.RunStatus, s entity.RunSummary, reason string) error {
	query := `
		UPDATE collection_runs SET
			status = $2,
			stop_reason = $3,
			passes = $4,
			record_count = $5,
			trigger_failures = $6,
			failure_reason = $7,
			finished_at = NOW()
		WHERE id = $1;
	`
	return r.execOne(ctx, query, id, status, s.StopReason, s.Passes, s.RecordCount, s.TriggerFailures, reason)
}

// execOne runs an UPDATE and maps zero affected rows to ErrNotFound.
func (r *RunRepoImpl) execOne(ctx context.Context, query string, args ...any) error {
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// isInvalidText reports a value Postgres could not parse for its column
// type, such as a malformed UUID.
func isInvalidText(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == invalidTextRepresentation
}

const invalidTextRepresentation = "22P02"
