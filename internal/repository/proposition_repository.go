package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/cineclub/cineclub-api/internal/model"
)

// PendingPropositionRepo manages persistence for in-flight movie
// propositions. The table carries a unique key on user_id and a unique
// key on publishing_date, which is what makes the one-pending-per-user
// and one-claimant-per-slot rules hold under concurrency.
type PendingPropositionRepo struct {
	db *sql.DB
}

// NewPendingPropositionRepo constructs a repo with the given DB handle.
func NewPendingPropositionRepo(db *sql.DB) *PendingPropositionRepo {
	return &PendingPropositionRepo{db: db}
}

const propositionColumns = `id, user_id, DATE_FORMAT(publishing_date, '%Y-%m-%d'), created_at`

// ListAll returns every pending proposition ordered by slot date.
func (r *PendingPropositionRepo) ListAll(ctx context.Context) ([]model.PendingProposition, error) {
	const q = `SELECT ` + propositionColumns + `
	           FROM pending_propositions
	           ORDER BY publishing_date`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPropositions(rows)
}

// ListByUser returns the pending proposition(s) for one user. The unique
// key keeps this at zero or one row, but the slice shape is kept so the
// access surface can answer with a list either way.
func (r *PendingPropositionRepo) ListByUser(ctx context.Context, userID uint64) ([]model.PendingProposition, error) {
	const q = `SELECT ` + propositionColumns + `
	           FROM pending_propositions
	           WHERE user_id = ?`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPropositions(rows)
}

// HasForUser reports whether the user currently holds a pending proposition.
func (r *PendingPropositionRepo) HasForUser(ctx context.Context, userID uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM pending_propositions WHERE user_id = ? LIMIT 1`,
		userID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CreateTx inserts a pending proposition inside the caller's transaction.
// A duplicate-key error on either unique index surfaces as ErrPendingExists
// for user_id and ErrSlotTaken for publishing_date.
func (r *PendingPropositionRepo) CreateTx(ctx context.Context, tx *sql.Tx, userID uint64, publishingDate string) error {
	const q = `INSERT INTO pending_propositions (user_id, publishing_date) VALUES (?, ?)`
	if _, err := tx.ExecContext(ctx, q, userID, publishingDate); err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1062 {
			if strings.Contains(me.Message, "publishing_date") {
				return ErrSlotTaken
			}
			return ErrPendingExists
		}
		return err
	}
	return nil
}

// DeleteBySlotTx removes the proposition claiming the given slot, if any,
// inside the caller's transaction. The affected-row count is returned so
// callers can tell whether a claimant existed.
func (r *PendingPropositionRepo) DeleteBySlotTx(ctx context.Context, tx *sql.Tx, publishingDate string) (int64, error) {
	res, err := tx.ExecContext(ctx,
		`DELETE FROM pending_propositions WHERE publishing_date = ?`,
		publishingDate)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteByUserTx removes a user's pending proposition inside the caller's
// transaction. Used when the proposed movie is published.
func (r *PendingPropositionRepo) DeleteByUserTx(ctx context.Context, tx *sql.Tx, userID uint64) (int64, error) {
	res, err := tx.ExecContext(ctx,
		`DELETE FROM pending_propositions WHERE user_id = ?`,
		userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanPropositions(rows *sql.Rows) ([]model.PendingProposition, error) {
	props := make([]model.PendingProposition, 0)
	for rows.Next() {
		var p model.PendingProposition
		if err := rows.Scan(&p.ID, &p.UserID, &p.PublishingDate, &p.CreatedAt); err != nil {
			return nil, err
		}
		props = append(props, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return props, nil
}
