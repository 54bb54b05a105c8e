package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/modelgate/modelgate/internal/shared"
)

// Repository defines persistence operations for the auth module.
type Repository interface {
	FindUserByID(ctx context.Context, id string) (*User, error)
	UserExists(ctx context.Context, email, name string) (bool, error)
	CreateUser(ctx context.Context, user *User) error
	CreateAccount(ctx context.Context, id, userID, passwordHash string) error
	CredentialsByEmail(ctx context.Context, email string) (userID, passwordHash string, err error)
	SetKeyEpoch(ctx context.Context, userID string, at time.Time) error
	CreateSession(ctx context.Context, id, userID string, expiresAt time.Time, ip, ua string) error
	DeleteSession(ctx context.Context, id string) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const userColumns = `id, email, name, COALESCE(image, ''), COALESCE(subscription_id, ''), is_active, last_key_generated_at, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.Image, &user.SubscriptionID, &user.IsActive, &user.LastKeyGeneratedAt, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindUserByID fetches a user by primary key.
func (r *PGRepository) FindUserByID(ctx context.Context, id string) (*User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// UserExists reports whether a user with the given email or name exists.
func (r *PGRepository) UserExists(ctx context.Context, email, name string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1 OR name = $2)`, email, name).Scan(&exists)
	return exists, err
}

// CreateUser inserts a user row.
func (r *PGRepository) CreateUser(ctx context.Context, user *User) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, email, name, image, is_active, last_key_generated_at, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, NOW(), NOW())`,
		user.ID, user.Email, user.Name, user.Image, user.IsActive, user.LastKeyGeneratedAt)
	return mapPGError(err)
}

// CreateAccount inserts password credentials for a user.
func (r *PGRepository) CreateAccount(ctx context.Context, id, userID, passwordHash string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO accounts (id, user_id, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())`,
		id, userID, passwordHash)
	return mapPGError(err)
}

// CredentialsByEmail joins accounts to users for sign-in.
func (r *PGRepository) CredentialsByEmail(ctx context.Context, email string) (string, string, error) {
	var userID, hash string
	err := r.pool.QueryRow(ctx, `
		SELECT u.id, a.password_hash
		FROM accounts a
		JOIN users u ON u.id = a.user_id
		WHERE u.email = $1`, email).Scan(&userID, &hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", "", shared.ErrNotFound
		}
		return "", "", err
	}
	return userID, hash, nil
}

// SetKeyEpoch overwrites the user's key generation timestamp.
func (r *PGRepository) SetKeyEpoch(ctx context.Context, userID string, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET last_key_generated_at = $2, updated_at = NOW() WHERE id = $1`, userID, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CreateSession persists a login session row for auditing.
func (r *PGRepository) CreateSession(ctx context.Context, id, userID string, expiresAt time.Time, ip, ua string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO sessions (id, user_id, expires_at, ip, ua, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NOW())
		ON CONFLICT (id) DO UPDATE SET expires_at = EXCLUDED.expires_at`,
		id, userID, expiresAt.UTC(), ip, ua)
	return err
}

// DeleteSession removes a session row.
func (r *PGRepository) DeleteSession(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

func mapPGError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return shared.ErrDuplicate
	}
	return err
}

var _ Repository = (*PGRepository)(nil)
