package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"devlog_notifier/internal/domain"
	"devlog_notifier/internal/markdown"
	"devlog_notifier/internal/notify"
)

// ProjectClient is the upstream API surface the engine consumes. One client
// per API key; 401 and 404 surface as flavortown sentinel errors.
type ProjectClient interface {
	GetProject(ctx context.Context, projectID int64) (*domain.Project, error)
	GetDevlog(ctx context.Context, projectID, devlogID int64) (*domain.Devlog, error)
}

type SyncStateStore interface {
	Load(ctx context.Context, projectID int64) (*domain.SyncState, error)
	Upsert(ctx context.Context, state *domain.SyncState) error
}

type SubscriptionStore interface {
	ListActive(ctx context.Context) ([]domain.Subscription, error)
	// Disable reports whether this call flipped the flag, so the caller can
	// post the rejection notice exactly once.
	Disable(ctx context.Context, apiKey string) (bool, error)
}

type Notifier interface {
	PostMessage(ctx context.Context, channel string, blocks []markdown.Block, opts notify.PostOptions) error
}

// Publisher fans dispatched deltas out to downstream consumers. May be nil.
type Publisher interface {
	Publish(ctx context.Context, result *domain.DeltaResult) error
	Close() error
}
