package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"devlog_notifier/internal/domain"
)

type SyncStateStore struct {
	db *sqlx.DB
}

func NewSyncStateStore(db *sqlx.DB) *SyncStateStore {
	return &SyncStateStore{db: db}
}

// Load returns the persisted state for a project. A missing row is not an
// error: first-ever polls get an empty state (no known ids, status none).
func (s *SyncStateStore) Load(ctx context.Context, projectID int64) (*domain.SyncState, error) {
	query := `
		SELECT project_id, devlog_ids, ship_status
		FROM sync_state
		WHERE project_id = $1`

	var (
		id     int64
		ids    pq.Int64Array
		status string
	)
	err := s.db.QueryRowContext(ctx, query, projectID).Scan(&id, &ids, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.SyncState{
			ProjectID:  projectID,
			LastStatus: domain.ShipStatusNone,
		}, nil
	}
	if err != nil {
		return nil, err
	}

	return &domain.SyncState{
		ProjectID:  id,
		DevlogIDs:  []int64(ids),
		LastStatus: domain.ShipStatus(status),
	}, nil
}

// Upsert replaces the full state row. Callers pass the union of old and new
// ids; the store never merges, so the id set only grows if callers behave.
func (s *SyncStateStore) Upsert(ctx context.Context, state *domain.SyncState) error {
	query := `
		INSERT INTO sync_state (project_id, devlog_ids, ship_status)
		VALUES ($1, $2, $3)
		ON CONFLICT (project_id) DO UPDATE SET
			devlog_ids = EXCLUDED.devlog_ids,
			ship_status = EXCLUDED.ship_status`

	_, err := s.db.ExecContext(ctx, query,
		state.ProjectID,
		pq.Int64Array(state.DevlogIDs),
		string(state.LastStatus),
	)
	return err
}
