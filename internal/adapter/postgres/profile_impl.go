package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/user/profile-collector/internal/entity"
)

// ProfileRepoImpl implements repository.ProfileRepository on collected_profiles.
type ProfileRepoImpl struct {
	db *pgxpool.Pool
}

// NewProfileRepo creates a new instance of ProfileRepoImpl.
func NewProfileRepo(db *pgxpool.Pool) *ProfileRepoImpl {
	return &ProfileRepoImpl{db: db}
}

// SaveBatch writes all records of a run in one transaction. Position keeps
// first-seen order; a rerun of the same batch is a no-op.
func (r *ProfileRepoImpl) SaveBatch(ctx context.Context, runID string, records []entity.ProfileRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for i, rec := range records {
		batch.Queue(`INSERT INTO collected_profiles (run_id, position, url, name, headline, location)
		             VALUES ($1, $2, $3, $4, $5, $6)
		             ON CONFLICT (run_id, position) DO NOTHING`,
			runID, i, rec.URL, rec.Name, rec.Headline, rec.Location)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *ProfileRepoImpl) FindByRun(ctx context.Context, runID string) ([]entity.ProfileRecord, error) {
	query := `
		SELECT url, name, headline, location
		FROM collected_profiles
		WHERE run_id = $1
		ORDER BY position ASC;
	`
	rows, err := r.db.Query(ctx, query, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []entity.ProfileRecord{}
	for rows.Next() {
		var rec entity.ProfileRecord
		if err := rows.Scan(&rec.URL, &rec.Name, &rec.Headline, &rec.Location); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
