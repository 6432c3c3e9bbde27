package domain

import "time"

// DeltaResult is the outcome of reconciling one project: the devlogs that
// appeared since the last poll, in upstream order, plus an optional forward
// status transition to announce.
type DeltaResult struct {
	ProjectID    int64
	ProjectTitle string
	NewDevlogs   []Devlog
	Transition   ShipStatus // ShipStatusNone when nothing to announce
}

// Empty reports whether the reconciliation produced nothing to deliver.
func (r *DeltaResult) Empty() bool {
	return len(r.NewDevlogs) == 0 && r.Transition == ShipStatusNone
}

// PassStats holds statistics about one full scheduler pass.
type PassStats struct {
	Subscriptions int
	Projects      int
	NewDevlogs    int
	Transitions   int
	Skipped       int
	Disabled      int
	Errors        int
	Duration      time.Duration
}
