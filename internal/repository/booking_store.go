package repository

import (
	"context"
	"database/sql"

	"github.com/cineclub/cineclub-api/internal/model"
)

// BookingStore groups the slot and pending-proposition repositories behind
// the storage interface the booking workflow consumes. The two mutating
// operations each run in a single transaction so the slot flag and the
// proposition row can never diverge.
type BookingStore struct {
	db      *sql.DB
	slots   *SlotRepo
	pending *PendingPropositionRepo
}

// NewBookingStore constructs a BookingStore. All dependencies must be
// non-nil.
func NewBookingStore(db *sql.DB, slots *SlotRepo, pending *PendingPropositionRepo) *BookingStore {
	if db == nil || slots == nil || pending == nil {
		panic("nil dependency passed to NewBookingStore")
	}
	return &BookingStore{db: db, slots: slots, pending: pending}
}

// ListSlots returns every slot with its booked flag.
func (s *BookingStore) ListSlots(ctx context.Context) ([]model.Slot, error) {
	return s.slots.ListAll(ctx)
}

// ListPending returns every pending proposition.
func (s *BookingStore) ListPending(ctx context.Context) ([]model.PendingProposition, error) {
	return s.pending.ListAll(ctx)
}

// ListPendingByUser returns the pending proposition(s) for one user.
func (s *BookingStore) ListPendingByUser(ctx context.Context, userID uint64) ([]model.PendingProposition, error) {
	return s.pending.ListByUser(ctx, userID)
}

// HasPending reports whether the user holds a pending proposition.
func (s *BookingStore) HasPending(ctx context.Context, userID uint64) (bool, error) {
	return s.pending.HasForUser(ctx, userID)
}

// BookSlot atomically marks the slot booked and records the user's pending
// proposition. Either both writes land or neither does: the conditional
// update rejects an already-booked slot and the unique key on user_id
// rejects a second proposition for the same user, each rolling the
// transaction back.
func (s *BookingStore) BookSlot(ctx context.Context, userID uint64, publishingDate string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := s.slots.BookTx(ctx, tx, publishingDate); err != nil {
		return err
	}
	if err := s.pending.CreateTx(ctx, tx, userID, publishingDate); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// UnbookSlot atomically clears the booked flag and removes the claiming
// proposition, if one exists. It returns the claimant's user id, zero when
// the slot had no claimant, so callers can drop that user's cached reads.
// A slot that is absent or already free makes the whole operation fail
// with ErrUnbookFailed and nothing is mutated.
func (s *BookingStore) UnbookSlot(ctx context.Context, publishingDate string) (uint64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := s.slots.UnbookTx(ctx, tx, publishingDate); err != nil {
		return 0, err
	}
	var claimant uint64
	err = tx.QueryRowContext(ctx,
		`SELECT user_id FROM pending_propositions WHERE publishing_date = ?`,
		publishingDate).Scan(&claimant)
	if err != nil && err != sql.ErrNoRows {
		return 0, err
	}
	if _, err := s.pending.DeleteBySlotTx(ctx, tx, publishingDate); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return claimant, nil
}
