package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/ebbingassist/backend/internal/model"
)

// UserRepo persists accounts in the `users` table.
type UserRepo struct{ DB DBTX }

func NewUserRepo(db DBTX) *UserRepo { return &UserRepo{DB: db} }

// WithTx returns a copy bound to tx.
func (r *UserRepo) WithTx(tx *sql.Tx) *UserRepo { return &UserRepo{DB: tx} }

const userColumns = "id,email,phone,password_hash,nickname,avatar,timezone,prefs,created_at,updated_at"

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create inserts u and fills its id and timestamps. A taken email or phone
// yields ErrDuplicate.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Email = NormalizeEmail(u.Email)
	if u.Timezone == "" {
		u.Timezone = "UTC"
	}
	if u.Prefs == nil {
		u.Prefs = model.JSONObject{}
	}
	u.CreatedAt = now()
	u.UpdatedAt = u.CreatedAt
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email,phone,password_hash,nickname,avatar,timezone,prefs,created_at,updated_at) VALUES (?,?,?,?,?,?,?,?,?)",
		u.Email, u.Phone, u.PasswordHash, u.Nickname, u.Avatar, u.Timezone, u.Prefs, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	u.ID, err = lastID(res)
	return err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// GetByAccount looks a user up by email or phone number. Email matching
// is case-insensitive.
func (r *UserRepo) GetByAccount(ctx context.Context, account string) (*model.User, error) {
	account = strings.TrimSpace(account)
	if account == "" {
		return nil, ErrNotFound
	}
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? OR phone=? LIMIT 1",
		NormalizeEmail(account), account))
}

// UpdateProfile writes the editable profile columns of u.
func (r *UserRepo) UpdateProfile(ctx context.Context, u *model.User) error {
	u.UpdatedAt = now()
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET phone=?, nickname=?, avatar=?, timezone=?, prefs=?, updated_at=? WHERE id=?",
		u.Phone, u.Nickname, u.Avatar, u.Timezone, u.Prefs, u.UpdatedAt, u.ID)
	if err != nil && isDuplicate(err) {
		return ErrDuplicate
	}
	return err
}

// UpdatePassword replaces the stored bcrypt hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=?, updated_at=? WHERE id=?", hash, now(), id)
	return err
}

func (r *UserRepo) scanOne(row *sql.Row) (*model.User, error) {
	var (
		u     model.User
		phone sql.NullString
		nick  sql.NullString
		avat  sql.NullString
	)
	err := row.Scan(&u.ID, &u.Email, &phone, &u.PasswordHash, &nick, &avat,
		&u.Timezone, &u.Prefs, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	u.Phone = nullString(phone)
	u.Nickname = nullString(nick)
	u.Avatar = nullString(avat)
	return &u, nil
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
