package model

import "time"

// PendingProposition is a member's in-flight movie submission occupying a
// slot. At most one exists per user at any time (unique key on user_id);
// the row is created when a slot is booked and removed when the proposed
// movie is published or the slot is released by an admin.
type PendingProposition struct {
	ID             uint64    `json:"id"`              // pending_propositions.id
	UserID         uint64    `json:"user_id"`         // pending_propositions.user_id
	PublishingDate string    `json:"publishing_date"` // pending_propositions.publishing_date
	CreatedAt      time.Time `json:"created_at"`      // pending_propositions.created_at
}
