package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/cineclub/cineclub-api/internal/model"
)

// ErrSlotExists is returned when provisioning a slot for a date that is
// already offered.
var ErrSlotExists = errors.New("slot already exists")

// SlotRepo manages persistence for proposition slots. Publishing dates are
// DATE columns handled as "2006-01-02" strings; validation of the format
// happens at the handler boundary.
type SlotRepo struct {
	db *sql.DB
}

// NewSlotRepo constructs a SlotRepo with the given DB handle.
func NewSlotRepo(db *sql.DB) *SlotRepo { return &SlotRepo{db: db} }

// DB exposes the underlying sql.DB so callers can begin transactions
// spanning multiple repositories.
func (r *SlotRepo) DB() *sql.DB { return r.db }

// Create provisions a new offered slot. Duplicate dates map to
// ErrSlotExists via the MySQL duplicate-key error.
func (r *SlotRepo) Create(ctx context.Context, publishingDate string) error {
	const q = `INSERT INTO proposition_slots (publishing_date) VALUES (?)`
	if _, err := r.db.ExecContext(ctx, q, publishingDate); err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1062 {
			return ErrSlotExists
		}
		return err
	}
	return nil
}

// ListAll returns every slot, booked or not, ordered by date. Callers that
// only want open inventory filter on IsBooked.
func (r *SlotRepo) ListAll(ctx context.Context) ([]model.Slot, error) {
	const q = `SELECT DATE_FORMAT(publishing_date, '%Y-%m-%d'), is_booked
	           FROM proposition_slots
	           ORDER BY publishing_date`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	slots := make([]model.Slot, 0)
	for rows.Next() {
		var s model.Slot
		if err := rows.Scan(&s.PublishingDate, &s.IsBooked); err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return slots, nil
}

// GetByDate returns the slot for a publishing date or ErrSlotNotFound.
func (r *SlotRepo) GetByDate(ctx context.Context, publishingDate string) (model.Slot, error) {
	const q = `SELECT DATE_FORMAT(publishing_date, '%Y-%m-%d'), is_booked
	           FROM proposition_slots
	           WHERE publishing_date = ?`
	var s model.Slot
	err := r.db.QueryRowContext(ctx, q, publishingDate).Scan(&s.PublishingDate, &s.IsBooked)
	if err == sql.ErrNoRows {
		return model.Slot{}, ErrSlotNotFound
	}
	return s, err
}

// BookTx flips a slot to booked inside the caller's transaction. The
// update is conditional on is_booked = 0 so two racing bookings cannot
// both succeed; when zero rows are affected the slot row is probed to
// tell a missing date (ErrSlotNotFound) from a lost race (ErrSlotTaken).
func (r *SlotRepo) BookTx(ctx context.Context, tx *sql.Tx, publishingDate string) error {
	const q = `UPDATE proposition_slots SET is_booked = 1
	           WHERE publishing_date = ? AND is_booked = 0`
	res, err := tx.ExecContext(ctx, q, publishingDate)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	var booked bool
	err = tx.QueryRowContext(ctx,
		`SELECT is_booked FROM proposition_slots WHERE publishing_date = ?`,
		publishingDate).Scan(&booked)
	if err == sql.ErrNoRows {
		return ErrSlotNotFound
	}
	if err != nil {
		return err
	}
	return ErrSlotTaken
}

// UnbookTx flips a slot back to offered inside the caller's transaction.
// Zero rows affected means the slot is absent or already free; either way
// the release did not happen and ErrUnbookFailed is returned.
func (r *SlotRepo) UnbookTx(ctx context.Context, tx *sql.Tx, publishingDate string) error {
	const q = `UPDATE proposition_slots SET is_booked = 0
	           WHERE publishing_date = ? AND is_booked = 1`
	res, err := tx.ExecContext(ctx, q, publishingDate)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUnbookFailed
	}
	return nil
}
