// Package queue defines message payloads exchanged over the message broker
// and the background consumer that audits slot bookings.
package queue

// SlotBookedEvent is published when a member books a proposition slot. It
// carries enough for downstream consumers to log or notify without
// querying the primary database.
type SlotBookedEvent struct {
	UserID         uint64 `json:"user_id"`
	Pseudo         string `json:"pseudo,omitempty"`
	PublishingDate string `json:"publishing_date"`
	BookedAt       string `json:"booked_at"`
}
