package domain

import "time"

// PresenceRecord is one user's online heartbeat.
type PresenceRecord struct {
	Username string    `json:"username"`
	Online   bool      `json:"online"`
	LastSeen time.Time `json:"lastSeen"`
}
