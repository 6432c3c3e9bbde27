package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"devlog_notifier/internal/config"
	"devlog_notifier/internal/domain"
	"devlog_notifier/internal/markdown"
	"devlog_notifier/internal/notify"
	"devlog_notifier/internal/source/flavortown"
)

const disableNotice = "Hey! Your projects have been removed from devlog tracking " +
	"because the upstream API rejected your key. Set the key up again with the " +
	"config command to get tracking re-enabled."

// Reconciler computes the delta for one project.
type Reconciler interface {
	Reconcile(ctx context.Context, client ProjectClient, projectID int64) (*domain.DeltaResult, error)
}

// Dispatcher delivers one delta to a channel. It returns how many devlog
// messages went out and whether a transition message went out; delivery
// failures are logged, never fatal.
type Dispatcher interface {
	Dispatch(ctx context.Context, channel string, result *domain.DeltaResult) (devlogs int, transition bool)
}

// SyncService runs one full pass: every active subscription, every tracked
// project, strictly in sequence. No failure on one project is allowed to
// abort the pass.
type SyncService struct {
	subscriptions SubscriptionStore
	reconciler    Reconciler
	dispatcher    Dispatcher
	notifier      Notifier
	registry      *Registry
	logger        *slog.Logger
	config        config.SyncConfig
}

func NewSyncService(
	subscriptions SubscriptionStore,
	reconciler Reconciler,
	dispatcher Dispatcher,
	notifier Notifier,
	registry *Registry,
	logger *slog.Logger,
	cfg config.SyncConfig,
) *SyncService {
	return &SyncService{
		subscriptions: subscriptions,
		reconciler:    reconciler,
		dispatcher:    dispatcher,
		notifier:      notifier,
		registry:      registry,
		logger:        logger.With("component", "sync"),
		config:        cfg,
	}
}

func (s *SyncService) Sync(ctx context.Context) (*domain.PassStats, error) {
	startTime := time.Now()

	subs, err := s.subscriptions.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}

	stats := &domain.PassStats{Subscriptions: len(subs)}

	for _, sub := range subs {
		client := s.registry.Get(sub.APIKey)

		disabled := false
		for _, projectID := range sub.ProjectIDs {
			stats.Projects++

			result, err := s.reconciler.Reconcile(ctx, client, projectID)
			switch {
			case errors.Is(err, flavortown.ErrUnauthorized):
				stats.Errors++
				if s.disableSubscription(ctx, &sub) {
					stats.Disabled++
				}
				// Remaining projects share the same rejected key.
				disabled = true

			case errors.Is(err, flavortown.ErrNotFound):
				// Project vanished upstream. Skip, leave the subscription alone.
				s.logger.Warn("project missing upstream",
					"project_id", projectID,
					"channel", sub.Channel,
				)
				stats.Skipped++

			case err != nil:
				s.logger.Error("reconcile failed",
					"project_id", projectID,
					"error", err,
				)
				stats.Errors++

			default:
				devlogs, transition := s.dispatcher.Dispatch(ctx, sub.Channel, result)
				stats.NewDevlogs += devlogs
				if transition {
					stats.Transitions++
				}
			}

			if disabled {
				break
			}

			if err := s.pause(ctx); err != nil {
				stats.Duration = time.Since(startTime)
				return stats, err
			}
		}
	}

	stats.Duration = time.Since(startTime)

	s.logger.Info("pass completed",
		"subscriptions", stats.Subscriptions,
		"projects", stats.Projects,
		"new_devlogs", stats.NewDevlogs,
		"transitions", stats.Transitions,
		"skipped", stats.Skipped,
		"disabled", stats.Disabled,
		"errors", stats.Errors,
		"duration", stats.Duration,
	)

	return stats, nil
}

// disableSubscription flips the disabled flag and posts the one-time notice.
// Reports whether this call actually disabled anything; an already-disabled
// subscription stays silent.
func (s *SyncService) disableSubscription(ctx context.Context, sub *domain.Subscription) bool {
	flipped, err := s.subscriptions.Disable(ctx, sub.APIKey)
	if err != nil {
		s.logger.Error("failed to disable subscription",
			"channel", sub.Channel,
			"error", err,
		)
		return false
	}
	if !flipped {
		return false
	}

	s.logger.Warn("subscription disabled, api key rejected", "channel", sub.Channel)

	blocks := []markdown.Block{markdown.SectionBlock{Text: disableNotice}}
	if err := s.notifier.PostMessage(ctx, sub.Channel, blocks, notify.PostOptions{SuppressLinkPreview: true}); err != nil {
		s.logger.Error("failed to post disable notice",
			"channel", sub.Channel,
			"error", err,
		)
	}
	return true
}

// pause waits the configured delay between projects, to stay friendly to the
// upstream API and the chat platform's rate limits.
func (s *SyncService) pause(ctx context.Context) error {
	if s.config.ProjectDelay <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.config.ProjectDelay):
		return nil
	}
}
