package database

import (
	"context"
	"database/sql"
	"strings"
)

// Schema statements are idempotent so Migrate can run at every startup.
// The unique keys on pending_propositions are load-bearing: user_id
// enforces one pending proposition per member and publishing_date
// enforces one claimant per slot, both at the storage level.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		pseudo VARCHAR(64) NOT NULL,
		mail VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		role ENUM('member','admin') NOT NULL DEFAULT 'member',
		avatar_url VARCHAR(512) NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_users_pseudo (pseudo),
		UNIQUE KEY uq_users_mail (mail)
	)`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64) NOT NULL,
		expires_at DATETIME NOT NULL,
		revoked_at DATETIME NULL,
		UNIQUE KEY uq_refresh_tokens_hash (token_hash),
		CONSTRAINT fk_refresh_tokens_user FOREIGN KEY (user_id)
			REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS proposition_slots (
		publishing_date DATE PRIMARY KEY,
		is_booked TINYINT(1) NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS pending_propositions (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT UNSIGNED NOT NULL,
		publishing_date DATE NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_pending_user (user_id),
		UNIQUE KEY uq_pending_publishing_date (publishing_date),
		CONSTRAINT fk_pending_user FOREIGN KEY (user_id)
			REFERENCES users(id) ON DELETE CASCADE,
		CONSTRAINT fk_pending_slot FOREIGN KEY (publishing_date)
			REFERENCES proposition_slots(publishing_date)
	)`,
	`CREATE TABLE IF NOT EXISTS movies (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		french_title VARCHAR(255) NOT NULL,
		original_title VARCHAR(255) NOT NULL,
		poster_url VARCHAR(512) NULL,
		presentation TEXT NOT NULL,
		publishing_date DATE NOT NULL,
		user_id BIGINT UNSIGNED NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT fk_movies_user FOREIGN KEY (user_id) REFERENCES users(id)
	)`,
	`CREATE TABLE IF NOT EXISTS reviews (
		user_id BIGINT UNSIGNED NOT NULL,
		movie_id BIGINT UNSIGNED NOT NULL,
		bookmarked TINYINT(1) NOT NULL DEFAULT 0,
		viewed TINYINT(1) NOT NULL DEFAULT 0,
		liked TINYINT(1) NOT NULL DEFAULT 0,
		rating TINYINT UNSIGNED NULL,
		comment TEXT NULL,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (user_id, movie_id),
		CONSTRAINT fk_reviews_user FOREIGN KEY (user_id)
			REFERENCES users(id) ON DELETE CASCADE,
		CONSTRAINT fk_reviews_movie FOREIGN KEY (movie_id)
			REFERENCES movies(id) ON DELETE CASCADE
	)`,
}

// Migrate applies the schema. MySQL runs one statement per Exec, so the
// statements are applied in order; each is safe to re-run.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, strings.TrimSpace(stmt)); err != nil {
			return err
		}
	}
	return nil
}
