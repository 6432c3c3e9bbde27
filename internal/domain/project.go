package domain

import "time"

// ShipStatus mirrors the upstream project lifecycle flag. Anything the
// upstream reports that is not pending or submitted (draft, reopened,
// unknown) collapses to ShipStatusNone on ingress.
type ShipStatus string

const (
	ShipStatusNone      ShipStatus = ""
	ShipStatusPending   ShipStatus = "pending"
	ShipStatusSubmitted ShipStatus = "submitted"
)

func ParseShipStatus(s string) ShipStatus {
	switch s {
	case "pending":
		return ShipStatusPending
	case "submitted":
		return ShipStatusSubmitted
	default:
		return ShipStatusNone
	}
}

// Project is the upstream view of a tracked project. Transient; only its
// devlog ids and status survive a poll, inside SyncState.
type Project struct {
	ID          int64
	Title       string
	Description string
	DevlogIDs   []int64 // upstream insertion order, drives announcement order
	ShipStatus  ShipStatus
}

// Devlog is a single free-text update belonging to a project.
type Devlog struct {
	ID              int64
	Body            string
	DurationSeconds int
	CreatedAt       time.Time
}

// Subscription maps an API key to the channel its tracked projects report to.
// Read-only for the sync engine; the command layer owns writes except for the
// one-time disable on a rejected key.
type Subscription struct {
	APIKey     string
	Channel    string
	ProjectIDs []int64
	Disabled   bool
}

// SyncState is the engine's persisted memory for one project: every devlog id
// ever announced plus the last announced ship status. DevlogIDs only grows.
type SyncState struct {
	ProjectID  int64
	DevlogIDs  []int64
	LastStatus ShipStatus
}

// Known reports whether the devlog id was already seen in an earlier poll.
func (s *SyncState) Known(id int64) bool {
	for _, known := range s.DevlogIDs {
		if known == id {
			return true
		}
	}
	return false
}
