package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/cineclub/cineclub-api/internal/model"
)

// ErrMovieNotFound is returned when no movie matches the lookup.
var ErrMovieNotFound = errors.New("movie not found")

// ErrNoPendingToPublish is returned when publishing a movie for a user who
// holds no pending proposition.
var ErrNoPendingToPublish = errors.New("no pending proposition to publish")

// MovieRepo manages persistence for published club selections.
type MovieRepo struct {
	db *sql.DB
}

func NewMovieRepo(db *sql.DB) *MovieRepo { return &MovieRepo{db: db} }

// DB exposes the underlying handle for cross-repo transactions.
func (r *MovieRepo) DB() *sql.DB { return r.db }

const movieColumns = `id, french_title, original_title, poster_url, presentation,
	DATE_FORMAT(publishing_date, '%Y-%m-%d'), user_id, created_at`

// List returns every published movie, newest publishing date first.
func (r *MovieRepo) List(ctx context.Context) ([]model.Movie, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+movieColumns+` FROM movies ORDER BY publishing_date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	movies := make([]model.Movie, 0)
	for rows.Next() {
		m, err := scanMovie(rows.Scan)
		if err != nil {
			return nil, err
		}
		movies = append(movies, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return movies, nil
}

// GetByID returns one movie or ErrMovieNotFound.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (model.Movie, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+movieColumns+` FROM movies WHERE id = ?`, id)
	m, err := scanMovie(row.Scan)
	if err == sql.ErrNoRows {
		return model.Movie{}, ErrMovieNotFound
	}
	return m, err
}

// CreateTx inserts a movie inside the caller's transaction and populates
// the generated ID.
func (r *MovieRepo) CreateTx(ctx context.Context, tx *sql.Tx, m *model.Movie) error {
	const q = `INSERT INTO movies
	           (french_title, original_title, poster_url, presentation, publishing_date, user_id)
	           VALUES (?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		m.FrenchTitle, m.OriginalTitle, m.PosterURL, m.Presentation, m.PublishingDate, m.UserID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return nil
}

// Publish finalizes a user's proposition: the movie row is inserted and
// the pending proposition is removed in one transaction. The slot stays
// booked and anchors the publishing date. Publishing without a pending
// proposition fails with ErrNoPendingToPublish and writes nothing.
func (r *MovieRepo) Publish(ctx context.Context, pending *PendingPropositionRepo, m *model.Movie) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	n, err := pending.DeleteByUserTx(ctx, tx, m.UserID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNoPendingToPublish
	}
	if err := r.CreateTx(ctx, tx, m); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

func scanMovie(scan func(...interface{}) error) (model.Movie, error) {
	var m model.Movie
	var poster sql.NullString
	err := scan(&m.ID, &m.FrenchTitle, &m.OriginalTitle, &poster, &m.Presentation,
		&m.PublishingDate, &m.UserID, &m.CreatedAt)
	if err != nil {
		return model.Movie{}, err
	}
	if poster.Valid {
		p := poster.String
		m.PosterURL = &p
	}
	return m, nil
}
