package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/api-edge/internal/model"
)

// UserRepo reads and writes rows in the 'users' table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,email,phone,password_hash,full_name,email_verified,status,last_login_at,created_at,updated_at"

// Create inserts a new user row. A unique-index violation on email or phone
// is reported as ErrDuplicate.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (id, email, phone, password_hash, full_name, email_verified, status) VALUES (?,?,?,?,?,?,?)",
		u.ID, u.Email, u.Phone, u.PasswordHash, u.FullName, u.EmailVerified, u.Status)
	if err != nil {
		// MySQL 1062 = duplicate entry for a unique key
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// TouchLastLogin records a successful login time.
func (r *UserRepo) TouchLastLogin(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET last_login_at=NOW() WHERE id=?", id)
	return err
}

// MarkEmailVerified flips the email_verified flag.
func (r *UserRepo) MarkEmailVerified(ctx context.Context, id string) error {
	// No RowsAffected check: MySQL reports zero rows when the flag is
	// already set, and re-verification must stay idempotent.
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET email_verified=1 WHERE id=?", id)
	return err
}

func (r *UserRepo) scanOne(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.Phone, &u.PasswordHash, &u.FullName,
		&u.EmailVerified, &u.Status, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return u, ErrNotFound
	}
	return u, err
}
