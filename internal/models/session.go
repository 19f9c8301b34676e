package models

import "time"

// DefaultParticipant is the name every session starts with. Submissions are
// refused until it is replaced.
const DefaultParticipant = "Anonymous"

// SessionRecord is the persisted part of a portal session.
type SessionRecord struct {
	ID          string
	Participant string
	Submissions []Submission
	CreatedAt   time.Time
	LastSeenAt  time.Time
}
