package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/cineclub/cineclub-api/internal/model"
	"github.com/cineclub/cineclub-api/internal/utils"
)

// ErrUserExists is returned when the pseudo or mail is already registered.
var ErrUserExists = errors.New("pseudo or mail already registered")

// ErrUserNotFound is returned when no user matches the lookup.
var ErrUserNotFound = errors.New("user not found")

// UserRepo manages persistence for club members.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a user with a bcrypt-hashed password and returns its ID.
// New accounts always start as members; privileges are toggled separately.
func (r *UserRepo) Create(ctx context.Context, pseudo, mail, password string, cost int) (uint64, error) {
	pseudo = strings.TrimSpace(pseudo)
	mail = strings.ToLower(strings.TrimSpace(mail))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (pseudo, mail, password_hash) VALUES (?,?,?)",
		pseudo, mail, hash)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1062 {
			return 0, ErrUserExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

const userColumns = "id, pseudo, mail, password_hash, role, avatar_url, created_at, updated_at"

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	var avatar sql.NullString
	err := row.Scan(&u.ID, &u.Pseudo, &u.Mail, &u.PasswordHash, &u.Role, &avatar, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.User{}, ErrUserNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	if avatar.Valid {
		a := avatar.String
		u.AvatarURL = &a
	}
	return u, nil
}

// GetByPseudo fetches a user by pseudo for login.
func (r *UserRepo) GetByPseudo(ctx context.Context, pseudo string) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE pseudo=? LIMIT 1",
		strings.TrimSpace(pseudo)))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// List returns the public profile fields of every registered user.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, pseudo, avatar_url, created_at FROM users ORDER BY pseudo")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := make([]model.User, 0)
	for rows.Next() {
		var u model.User
		var avatar sql.NullString
		if err := rows.Scan(&u.ID, &u.Pseudo, &avatar, &u.CreatedAt); err != nil {
			return nil, err
		}
		if avatar.Valid {
			a := avatar.String
			u.AvatarURL = &a
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// UserUpdate carries the fields a user may change about their account.
// Nil pointers leave the column untouched. This is the whole allow-list:
// column names never come from request payloads.
type UserUpdate struct {
	Pseudo    *string
	Mail      *string
	Password  *string // hashed before the update
	AvatarURL *string
}

// Update applies the allow-listed fields for one user. It returns
// ErrUserNotFound when the id does not exist and ErrUserExists when the
// new pseudo or mail collides with another account.
func (r *UserRepo) Update(ctx context.Context, id uint64, upd UserUpdate, bcryptCost int) error {
	sets := make([]string, 0, 4)
	args := make([]interface{}, 0, 5)
	if upd.Pseudo != nil {
		sets = append(sets, "pseudo=?")
		args = append(args, strings.TrimSpace(*upd.Pseudo))
	}
	if upd.Mail != nil {
		sets = append(sets, "mail=?")
		args = append(args, strings.ToLower(strings.TrimSpace(*upd.Mail)))
	}
	if upd.Password != nil {
		hash, err := utils.HashPassword(*upd.Password, bcryptCost)
		if err != nil {
			return err
		}
		sets = append(sets, "password_hash=?")
		args = append(args, hash)
	}
	if upd.AvatarURL != nil {
		sets = append(sets, "avatar_url=?")
		args = append(args, *upd.AvatarURL)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	q := "UPDATE users SET " + strings.Join(sets, ",") + " WHERE id=?"
	res, err := r.DB.ExecContext(ctx, q, args...)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1062 {
			return ErrUserExists
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Delete removes a user. Dependent rows (tokens, propositions, reviews)
// go with it via ON DELETE CASCADE.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// TogglePrivileges switches a user between member and admin and returns
// the resulting role.
func (r *UserRepo) TogglePrivileges(ctx context.Context, id uint64) (string, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET role = IF(role='admin','member','admin') WHERE id=?", id)
	if err != nil {
		return "", err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", ErrUserNotFound
	}
	var role string
	if err := r.DB.QueryRowContext(ctx, "SELECT role FROM users WHERE id=?", id).Scan(&role); err != nil {
		return "", err
	}
	return role, nil
}
