package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPendingRepo(t *testing.T) (*PendingPropositionRepo, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return NewPendingPropositionRepo(db), mock, func() { db.Close() }
}

func TestHasForUser(t *testing.T) {
	repo, mock, done := newPendingRepo(t)
	defer done()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM pending_propositions WHERE user_id = ? LIMIT 1`)).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	has, err := repo.HasForUser(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestHasForUserNoRow(t *testing.T) {
	repo, mock, done := newPendingRepo(t)
	defer done()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM pending_propositions WHERE user_id = ? LIMIT 1`)).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	has, err := repo.HasForUser(context.Background(), 7)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestListByUser(t *testing.T) {
	repo, mock, done := newPendingRepo(t)
	defer done()

	created := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "user_id", "publishing_date", "created_at"}).
		AddRow(3, 7, "2026-10-05", created)
	mock.ExpectQuery("SELECT id, user_id, DATE_FORMAT").
		WithArgs(uint64(7)).
		WillReturnRows(rows)

	props, err := repo.ListByUser(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, props, 1)
	assert.Equal(t, uint64(7), props[0].UserID)
	assert.Equal(t, "2026-10-05", props[0].PublishingDate)
	assert.Equal(t, created, props[0].CreatedAt)
}

func TestListByUserEmpty(t *testing.T) {
	repo, mock, done := newPendingRepo(t)
	defer done()

	mock.ExpectQuery("SELECT id, user_id, DATE_FORMAT").
		WithArgs(uint64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "publishing_date", "created_at"}))

	props, err := repo.ListByUser(context.Background(), 9)
	require.NoError(t, err)
	assert.Empty(t, props)
}

func TestDeleteBySlotReportsClaimant(t *testing.T) {
	repo, mock, done := newPendingRepo(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM pending_propositions WHERE publishing_date = ?`)).
		WithArgs("2026-10-05").
		WillReturnResult(sqlmock.NewResult(0, 1))

	db := repo.db
	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	n, err := repo.DeleteBySlotTx(context.Background(), tx, "2026-10-05")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
