package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goalpost/matchbooking/internal/utils"
)

// User mirrors the 'users' table: the identities the session store owns.
// Confirmation state lives here; a NULL email_confirmed_at blocks sign-in.
type User struct {
	ID               string
	Email            string
	PasswordHash     string
	DisplayName      string
	AvatarURL        string
	Phone            string
	EmailConfirmedAt *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts an identity and returns its generated UUID.  When
// autoConfirm is set (dev convenience) the email is confirmed immediately;
// otherwise the identity stays unconfirmed until ConfirmEmail.
func (r *UserRepo) Create(ctx context.Context, email, password, displayName, phone string, cost int, autoConfirm bool) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	var confirmedAt any
	if autoConfirm {
		confirmedAt = time.Now().UTC()
	}
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO users (id, email, password_hash, display_name, phone, email_confirmed_at) VALUES (?,?,?,?,?,?)",
		id, email, hash, displayName, phone, confirmedAt)
	if err != nil {
		// MySQL duplicate-key error code.
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return "", ErrEmailExists
		}
		return "", err
	}
	return id, nil
}

// GetByEmail fetches an identity by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.scanOne(ctx, "SELECT id,email,password_hash,display_name,avatar_url,phone,email_confirmed_at,created_at,updated_at FROM users WHERE email=? LIMIT 1", email)
}

// GetByID fetches an identity by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (User, error) {
	return r.scanOne(ctx, "SELECT id,email,password_hash,display_name,avatar_url,phone,email_confirmed_at,created_at,updated_at FROM users WHERE id=? LIMIT 1", id)
}

// UpdatePassword replaces the stored hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id, password string, cost int) error {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, "UPDATE users SET password_hash=? WHERE id=?", hash, id)
	return err
}

// UpdateMetadata patches the optional profile-ish fields on the identity.
// Empty strings are skipped, matching partial-update semantics.
func (r *UserRepo) UpdateMetadata(ctx context.Context, id, displayName, avatarURL, phone string) error {
	sets := make([]string, 0, 3)
	args := make([]any, 0, 4)
	if displayName != "" {
		sets = append(sets, "display_name=?")
		args = append(args, displayName)
	}
	if avatarURL != "" {
		sets = append(sets, "avatar_url=?")
		args = append(args, avatarURL)
	}
	if phone != "" {
		sets = append(sets, "phone=?")
		args = append(args, phone)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	_, err := r.DB.ExecContext(ctx, "UPDATE users SET "+strings.Join(sets, ",")+" WHERE id=?", args...)
	return err
}

// ConfirmEmail marks the identity's address as confirmed.
func (r *UserRepo) ConfirmEmail(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE users SET email_confirmed_at=NOW() WHERE id=? AND email_confirmed_at IS NULL", id)
	return err
}

func (r *UserRepo) scanOne(ctx context.Context, query string, arg any) (User, error) {
	var (
		u           User
		displayName sql.NullString
		avatarURL   sql.NullString
		phone       sql.NullString
		confirmedAt sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &displayName, &avatarURL, &phone,
		&confirmedAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return User{}, err
	}
	u.DisplayName = displayName.String
	u.AvatarURL = avatarURL.String
	u.Phone = phone.String
	if confirmedAt.Valid {
		t := confirmedAt.Time
		u.EmailConfirmedAt = &t
	}
	return u, nil
}
