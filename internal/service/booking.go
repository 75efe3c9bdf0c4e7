// Package service holds the booking workflow: the rules that gate slot
// booking on the one-pending-proposition-per-user invariant and decide
// what inventory a member may see.
package service

import (
	"context"
	"time"

	"github.com/cineclub/cineclub-api/internal/model"
	"github.com/cineclub/cineclub-api/internal/queue"
)

// Store is the storage surface the workflow needs. It is implemented by
// repository.BookingStore; tests substitute an in-memory double. The two
// mutating operations are atomic in the implementation: a booking either
// flips the slot and records the proposition, or does neither.
type Store interface {
	ListSlots(ctx context.Context) ([]model.Slot, error)
	ListPending(ctx context.Context) ([]model.PendingProposition, error)
	ListPendingByUser(ctx context.Context, userID uint64) ([]model.PendingProposition, error)
	HasPending(ctx context.Context, userID uint64) (bool, error)
	BookSlot(ctx context.Context, userID uint64, publishingDate string) error
	UnbookSlot(ctx context.Context, publishingDate string) (claimant uint64, err error)
}

// Human-readable statuses rendered by the access surface. Empty results
// and ineligibility are not errors; they travel in the success channel
// as messages alongside the structured fields.
const (
	MsgAlreadyPending = "You already have a pending proposition. You will be able to book a new slot once it has been published."
	MsgNoSlots        = "No proposition slot is currently available."
	MsgNoPending      = "No pending proposition recorded."
	MsgNoUserPending  = "This user has no pending movie proposition."
	MsgSlotBooked     = "The requested slot has been booked."
	MsgSlotReleased   = "The requested slot has been released."
)

// SlotInventory is the tagged result of an availability query. Callers
// branch on Eligible and len(Slots), never on message content.
type SlotInventory struct {
	Eligible bool
	Message  string
	Slots    []model.Slot
}

// PropositionList is the tagged result of a pending-proposition query.
type PropositionList struct {
	Found        bool
	Message      string
	Propositions []model.PendingProposition
}

// EventPublisher sends a booking event to the broker. Best effort: the
// workflow logs nothing itself and never fails a booking over it.
type EventPublisher func(ctx context.Context, ev queue.SlotBookedEvent) error

// BookingService orchestrates the slot and pending-proposition stores.
type BookingService struct {
	store   Store
	publish EventPublisher
}

// NewBookingService builds the workflow around a store. publish may be
// nil to disable event emission.
func NewBookingService(store Store, publish EventPublisher) *BookingService {
	if store == nil {
		panic("nil store passed to NewBookingService")
	}
	return &BookingService{store: store, publish: publish}
}

// AvailableSlotsFor returns the slot inventory a member may book. A member
// who already holds a pending proposition is ineligible and never sees
// inventory; the pending check runs first and short-circuits.
func (s *BookingService) AvailableSlotsFor(ctx context.Context, userID uint64) (SlotInventory, error) {
	has, err := s.store.HasPending(ctx, userID)
	if err != nil {
		return SlotInventory{}, err
	}
	if has {
		return SlotInventory{Eligible: false, Message: MsgAlreadyPending}, nil
	}
	slots, err := s.store.ListSlots(ctx)
	if err != nil {
		return SlotInventory{}, err
	}
	inv := SlotInventory{Eligible: true, Slots: slots}
	if len(slots) == 0 {
		inv.Message = MsgNoSlots
	}
	return inv, nil
}

// PendingPropositions returns every pending proposition.
func (s *BookingService) PendingPropositions(ctx context.Context) (PropositionList, error) {
	props, err := s.store.ListPending(ctx)
	if err != nil {
		return PropositionList{}, err
	}
	if len(props) == 0 {
		return PropositionList{Found: false, Message: MsgNoPending}, nil
	}
	return PropositionList{Found: true, Propositions: props}, nil
}

// PendingPropositionsFor returns one user's pending proposition(s).
func (s *BookingService) PendingPropositionsFor(ctx context.Context, userID uint64) (PropositionList, error) {
	props, err := s.store.ListPendingByUser(ctx, userID)
	if err != nil {
		return PropositionList{}, err
	}
	if len(props) == 0 {
		return PropositionList{Found: false, Message: MsgNoUserPending}, nil
	}
	return PropositionList{Found: true, Propositions: props}, nil
}

// HasPendingProposition reports whether the user holds a pending
// proposition.
func (s *BookingService) HasPendingProposition(ctx context.Context, userID uint64) (bool, error) {
	return s.store.HasPending(ctx, userID)
}

// Book claims the slot for the user. The store performs the conditional
// slot update and the proposition insert in one transaction, so a lost
// race comes back as repository.ErrSlotTaken or repository.ErrPendingExists
// rather than a silent double write. The per-user rule is therefore
// enforced here at write time as well, not only by the read-side check in
// AvailableSlotsFor. On success a SlotBookedEvent goes to the broker.
func (s *BookingService) Book(ctx context.Context, userID uint64, pseudo, publishingDate string) (string, error) {
	if err := s.store.BookSlot(ctx, userID, publishingDate); err != nil {
		return "", err
	}
	if s.publish != nil {
		_ = s.publish(ctx, queue.SlotBookedEvent{
			UserID:         userID,
			Pseudo:         pseudo,
			PublishingDate: publishingDate,
			BookedAt:       time.Now().UTC().Format(time.RFC3339),
		})
	}
	return MsgSlotBooked, nil
}

// Unbook releases a booked slot and drops the claiming proposition, an
// administrative reversal. The claimant's user id is returned, zero when
// no proposition claimed the slot, so the access surface can drop that
// user's cached reads. Releasing a slot that is not booked fails with
// repository.ErrUnbookFailed and mutates nothing.
func (s *BookingService) Unbook(ctx context.Context, publishingDate string) (string, uint64, error) {
	claimant, err := s.store.UnbookSlot(ctx, publishingDate)
	if err != nil {
		return "", 0, err
	}
	return MsgSlotReleased, claimant, nil
}
