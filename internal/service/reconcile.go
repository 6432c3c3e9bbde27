package service

import (
	"context"
	"fmt"
	"log/slog"

	"devlog_notifier/internal/domain"
)

// DeltaEngine reconciles one project per call: fetch the upstream view, diff
// it against persisted state, persist, then collect the new devlog bodies.
type DeltaEngine struct {
	states SyncStateStore
	logger *slog.Logger
}

func NewDeltaEngine(states SyncStateStore, logger *slog.Logger) *DeltaEngine {
	return &DeltaEngine{
		states: states,
		logger: logger.With("component", "delta_engine"),
	}
}

// Reconcile returns the devlogs and status transition that appeared since the
// last poll. Upstream 401/404 propagate as flavortown sentinels for the
// caller to map; a store failure aborts only this project's poll.
func (e *DeltaEngine) Reconcile(ctx context.Context, client ProjectClient, projectID int64) (*domain.DeltaResult, error) {
	project, err := client.GetProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("get project %d: %w", projectID, err)
	}

	state, err := e.states.Load(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load sync state for project %d: %w", projectID, err)
	}

	// Announcement order follows the upstream id sequence, not set order.
	var newIDs []int64
	for _, id := range project.DevlogIDs {
		if !state.Known(id) {
			newIDs = append(newIDs, id)
		}
	}

	status := project.ShipStatus
	result := &domain.DeltaResult{
		ProjectID:    projectID,
		ProjectTitle: project.Title,
	}
	// Transitions only fire forward. A regression reads as none here and is
	// persisted below, so a later re-advance announces again.
	if status != domain.ShipStatusNone && status != state.LastStatus {
		result.Transition = status
	}

	// Persist before fetching bodies or delivering anything: a failure past
	// this point must not re-announce the same devlogs on the next poll.
	if len(newIDs) > 0 || status != state.LastStatus {
		state.DevlogIDs = append(state.DevlogIDs, newIDs...)
		state.LastStatus = status
		if err := e.states.Upsert(ctx, state); err != nil {
			return nil, fmt.Errorf("persist sync state for project %d: %w", projectID, err)
		}
	}

	for _, id := range newIDs {
		devlog, err := client.GetDevlog(ctx, projectID, id)
		if err != nil {
			e.logger.Warn("failed to fetch devlog",
				"project_id", projectID,
				"devlog_id", id,
				"error", err,
			)
			continue
		}
		result.NewDevlogs = append(result.NewDevlogs, *devlog)
	}

	return result, nil
}
