package models

import "time"

// Room is a point-in-time snapshot of a game room. The registry owns the live
// state; callers get copies and re-resolve on every event rather than holding
// one across event boundaries.
type Room struct {
	ID        string    `json:"id"`
	Members   []string  `json:"members"`
	CreatedAt time.Time `json:"created_at"`
}

// HasMember reports whether the given socket ID is in the snapshot.
func (r Room) HasMember(socketID string) bool {
	for _, m := range r.Members {
		if m == socketID {
			return true
		}
	}
	return false
}
