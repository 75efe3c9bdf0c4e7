package model

import "time"

// Movie is a published club selection. Publishing a movie consumes the
// proposer's pending proposition; the slot row stays booked and anchors
// the movie's publishing date.
type Movie struct {
	ID             uint64    `json:"id"`
	FrenchTitle    string    `json:"french_title"`
	OriginalTitle  string    `json:"original_title"`
	PosterURL      *string   `json:"poster_url,omitempty"`
	Presentation   string    `json:"presentation"`
	PublishingDate string    `json:"publishing_date"`
	UserID         uint64    `json:"user_id"`
	CreatedAt      time.Time `json:"created_at"`
}
