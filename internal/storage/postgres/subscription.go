package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"devlog_notifier/internal/domain"
)

type SubscriptionStore struct {
	db *sqlx.DB
}

func NewSubscriptionStore(db *sqlx.DB) *SubscriptionStore {
	return &SubscriptionStore{db: db}
}

// ListActive returns every subscription that has not been disabled, with its
// tracked project ids.
func (s *SubscriptionStore) ListActive(ctx context.Context) ([]domain.Subscription, error) {
	query := `
		SELECT api_key, channel, project_ids
		FROM subscriptions
		WHERE disabled IS NOT TRUE
		ORDER BY api_key`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []domain.Subscription
	for rows.Next() {
		var (
			sub domain.Subscription
			ids pq.Int64Array
		)
		if err := rows.Scan(&sub.APIKey, &sub.Channel, &ids); err != nil {
			return nil, err
		}
		sub.ProjectIDs = []int64(ids)
		subs = append(subs, sub)
	}

	return subs, rows.Err()
}

// Disable marks a subscription disabled and reports whether this call did the
// flipping. An already-disabled subscription returns false, which keeps the
// "your key was rejected" notice to exactly one post.
func (s *SubscriptionStore) Disable(ctx context.Context, apiKey string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE subscriptions SET disabled = TRUE WHERE api_key = $1 AND disabled IS NOT TRUE`,
		apiKey,
	)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
