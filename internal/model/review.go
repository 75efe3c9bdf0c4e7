package model

import "time"

// Review holds one member's interactions with one movie. The pair
// (user_id, movie_id) is the primary key; flags and the optional rating
// and comment are updated in place.
type Review struct {
	UserID     uint64    `json:"user_id"`
	MovieID    uint64    `json:"movie_id"`
	Bookmarked bool      `json:"bookmarked"`
	Viewed     bool      `json:"viewed"`
	Liked      bool      `json:"liked"`
	Rating     *uint8    `json:"rating,omitempty"`
	Comment    *string   `json:"comment,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}
