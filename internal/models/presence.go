package models

import (
	"time"
)

type PresenceStatus string

const (
	StatusOnline  PresenceStatus = "ONLINE"
	StatusOffline PresenceStatus = "OFFLINE"
	StatusAway    PresenceStatus = "AWAY"
	StatusBusy    PresenceStatus = "BUSY"
)

// ValidStatus reports whether s is one of the four presence states.
func ValidStatus(s PresenceStatus) bool {
	switch s {
	case StatusOnline, StatusOffline, StatusAway, StatusBusy:
		return true
	}
	return false
}

// PresenceRecord is the per-user presence row. Postgres holds the authoritative
// copy; Redis holds a cached copy under a sliding TTL. LastSeenAt is nil only
// for the synthetic record returned for users that were never seen.
type PresenceRecord struct {
	UserID     string         `json:"userId"`
	Status     PresenceStatus `json:"status"`
	LastSeenAt *time.Time     `json:"lastSeenAt"`
}
