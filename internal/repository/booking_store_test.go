package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	bookSlotQuery   = `UPDATE proposition_slots SET is_booked = 1 WHERE publishing_date = ? AND is_booked = 0`
	unbookSlotQuery = `UPDATE proposition_slots SET is_booked = 0 WHERE publishing_date = ? AND is_booked = 1`
	insertPending   = `INSERT INTO pending_propositions (user_id, publishing_date) VALUES (?, ?)`
	deletePending   = `DELETE FROM pending_propositions WHERE publishing_date = ?`
	probeSlot       = `SELECT is_booked FROM proposition_slots WHERE publishing_date = ?`
	probeClaimant   = `SELECT user_id FROM pending_propositions WHERE publishing_date = ?`
)

func newStore(t *testing.T) (*BookingStore, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	store := NewBookingStore(db, NewSlotRepo(db), NewPendingPropositionRepo(db))
	return store, mock, func() { db.Close() }
}

func TestBookSlotCommitsBothWrites(t *testing.T) {
	store, mock, done := newStore(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(bookSlotQuery)).
		WithArgs("2026-10-05").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(insertPending)).
		WithArgs(uint64(7), "2026-10-05").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := store.BookSlot(context.Background(), 7, "2026-10-05")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookSlotRollsBackOnMissingSlot(t *testing.T) {
	store, mock, done := newStore(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(bookSlotQuery)).
		WithArgs("2026-10-05").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(probeSlot)).
		WithArgs("2026-10-05").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := store.BookSlot(context.Background(), 7, "2026-10-05")
	assert.ErrorIs(t, err, ErrSlotNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookSlotRollsBackOnLostRace(t *testing.T) {
	store, mock, done := newStore(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(bookSlotQuery)).
		WithArgs("2026-10-05").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(probeSlot)).
		WithArgs("2026-10-05").
		WillReturnRows(sqlmock.NewRows([]string{"is_booked"}).AddRow(true))
	mock.ExpectRollback()

	err := store.BookSlot(context.Background(), 7, "2026-10-05")
	assert.ErrorIs(t, err, ErrSlotTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookSlotRollsBackOnDuplicatePending(t *testing.T) {
	store, mock, done := newStore(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(bookSlotQuery)).
		WithArgs("2026-10-05").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(insertPending)).
		WithArgs(uint64(7), "2026-10-05").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry '7' for key 'uq_pending_user'"})
	mock.ExpectRollback()

	err := store.BookSlot(context.Background(), 7, "2026-10-05")
	assert.ErrorIs(t, err, ErrPendingExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookSlotRollsBackWhenSlotClaimedByOther(t *testing.T) {
	store, mock, done := newStore(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(bookSlotQuery)).
		WithArgs("2026-10-05").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(insertPending)).
		WithArgs(uint64(7), "2026-10-05").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry '2026-10-05' for key 'uq_pending_publishing_date'"})
	mock.ExpectRollback()

	err := store.BookSlot(context.Background(), 7, "2026-10-05")
	assert.ErrorIs(t, err, ErrSlotTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnbookSlotCommitsBothWrites(t *testing.T) {
	store, mock, done := newStore(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(unbookSlotQuery)).
		WithArgs("2026-10-05").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(probeClaimant)).
		WithArgs("2026-10-05").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(7))
	mock.ExpectExec(regexp.QuoteMeta(deletePending)).
		WithArgs("2026-10-05").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	claimant, err := store.UnbookSlot(context.Background(), "2026-10-05")
	require.NoError(t, err)
	assert.Equal(t, uint64(7), claimant)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnbookSlotWithoutClaimant(t *testing.T) {
	store, mock, done := newStore(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(unbookSlotQuery)).
		WithArgs("2026-10-05").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(probeClaimant)).
		WithArgs("2026-10-05").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(regexp.QuoteMeta(deletePending)).
		WithArgs("2026-10-05").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	claimant, err := store.UnbookSlot(context.Background(), "2026-10-05")
	require.NoError(t, err)
	assert.Zero(t, claimant)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnbookSlotRollsBackOnFreeSlot(t *testing.T) {
	store, mock, done := newStore(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(unbookSlotQuery)).
		WithArgs("2026-10-05").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := store.UnbookSlot(context.Background(), "2026-10-05")
	assert.ErrorIs(t, err, ErrUnbookFailed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
