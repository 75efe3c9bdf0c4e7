package model

// Slot is one offered publishing date on which a proposed movie may air.
// A slot is provisioned by admins ahead of a season and flips between
// OFFERED (is_booked = false) and BOOKED (is_booked = true); the row itself
// is never removed by the booking workflow.
//
// PublishingDate mirrors the DATE column and is carried as "2006-01-02".
type Slot struct {
	PublishingDate string `json:"publishing_date"` // proposition_slots.publishing_date
	IsBooked       bool   `json:"is_booked"`       // proposition_slots.is_booked
}
