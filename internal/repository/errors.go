// Package repository defines error values shared across repositories.
// Handlers translate these sentinels into HTTP responses; the booking
// store relies on them to decide whether a transaction may commit.
package repository

import "errors"

// ErrSlotNotFound is returned when no slot exists for the requested
// publishing date. Handlers should answer with HTTP 400.
var ErrSlotNotFound = errors.New("slot not found")

// ErrSlotTaken is returned when the conditional booking update matched a
// slot that is already booked. This is the write-time guard against two
// callers racing past the availability check.
var ErrSlotTaken = errors.New("slot already booked")

// ErrUnbookFailed is returned when the release update affected zero rows,
// meaning the slot is absent or was not booked in the first place.
var ErrUnbookFailed = errors.New("slot could not be released")

// ErrPendingExists is returned when inserting a pending proposition hits
// the unique key on user_id. One pending proposition per user, enforced
// by the database rather than by a read-then-decide pattern.
var ErrPendingExists = errors.New("user already has a pending proposition")
