package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/cineclub/cineclub-api/internal/model"
)

// ErrReviewNotFound is returned when no review exists for the
// (user, movie) pair.
var ErrReviewNotFound = errors.New("review not found")

// ReviewRepo manages a member's flags, rating and comment on a movie.
type ReviewRepo struct {
	db *sql.DB
}

func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{db: db} }

// Get returns the review one user wrote for one movie.
func (r *ReviewRepo) Get(ctx context.Context, userID, movieID uint64) (model.Review, error) {
	const q = `SELECT user_id, movie_id, bookmarked, viewed, liked, rating, comment, updated_at
	           FROM reviews WHERE user_id = ? AND movie_id = ?`
	var rev model.Review
	var rating sql.NullInt16
	var comment sql.NullString
	err := r.db.QueryRowContext(ctx, q, userID, movieID).Scan(
		&rev.UserID, &rev.MovieID, &rev.Bookmarked, &rev.Viewed, &rev.Liked,
		&rating, &comment, &rev.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Review{}, ErrReviewNotFound
	}
	if err != nil {
		return model.Review{}, err
	}
	if rating.Valid {
		v := uint8(rating.Int16)
		rev.Rating = &v
	}
	if comment.Valid {
		c := comment.String
		rev.Comment = &c
	}
	return rev, nil
}

// Upsert creates or updates the review for the (user, movie) pair. The
// full row is written each time; absent rating/comment clear the columns.
func (r *ReviewRepo) Upsert(ctx context.Context, rev model.Review) error {
	const q = `INSERT INTO reviews (user_id, movie_id, bookmarked, viewed, liked, rating, comment)
	           VALUES (?, ?, ?, ?, ?, ?, ?)
	           ON DUPLICATE KEY UPDATE
	             bookmarked = VALUES(bookmarked),
	             viewed     = VALUES(viewed),
	             liked      = VALUES(liked),
	             rating     = VALUES(rating),
	             comment    = VALUES(comment)`
	_, err := r.db.ExecContext(ctx, q,
		rev.UserID, rev.MovieID, rev.Bookmarked, rev.Viewed, rev.Liked, rev.Rating, rev.Comment)
	return err
}

// ClearComment removes only the comment of a review.
func (r *ReviewRepo) ClearComment(ctx context.Context, userID, movieID uint64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE reviews SET comment = NULL WHERE user_id = ? AND movie_id = ?`,
		userID, movieID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrReviewNotFound
	}
	return nil
}

// Delete removes the whole review row.
func (r *ReviewRepo) Delete(ctx context.Context, userID, movieID uint64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM reviews WHERE user_id = ? AND movie_id = ?`,
		userID, movieID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrReviewNotFound
	}
	return nil
}

// MovieComment is a comment joined with its author's public profile, as
// rendered on a movie page.
type MovieComment struct {
	UserID    uint64  `json:"user_id"`
	Pseudo    string  `json:"pseudo"`
	AvatarURL *string `json:"avatar_url,omitempty"`
	Rating    *uint8  `json:"rating,omitempty"`
	Comment   string  `json:"comment"`
}

// ListCommentsByMovie returns every non-empty comment on a movie with the
// author's pseudo and avatar.
func (r *ReviewRepo) ListCommentsByMovie(ctx context.Context, movieID uint64) ([]MovieComment, error) {
	const q = `SELECT rv.user_id, u.pseudo, u.avatar_url, rv.rating, rv.comment
	           FROM reviews rv
	           JOIN users u ON u.id = rv.user_id
	           WHERE rv.movie_id = ? AND rv.comment IS NOT NULL
	           ORDER BY rv.updated_at DESC`
	rows, err := r.db.QueryContext(ctx, q, movieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	comments := make([]MovieComment, 0)
	for rows.Next() {
		var mc MovieComment
		var avatar sql.NullString
		var rating sql.NullInt16
		if err := rows.Scan(&mc.UserID, &mc.Pseudo, &avatar, &rating, &mc.Comment); err != nil {
			return nil, err
		}
		if avatar.Valid {
			a := avatar.String
			mc.AvatarURL = &a
		}
		if rating.Valid {
			v := uint8(rating.Int16)
			mc.Rating = &v
		}
		comments = append(comments, mc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return comments, nil
}
