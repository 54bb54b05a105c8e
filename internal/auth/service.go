package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/modelgate/modelgate/internal/shared"
)

// Service wraps authentication business rules: account creation, sign-in
// and the bearer-key lifecycle.
type Service struct {
	repo  Repository
	codec *KeyCodec
	now   func() time.Time
}

// NewService constructs a new Service.
func NewService(repo Repository, codec *KeyCodec) *Service {
	return &Service{repo: repo, codec: codec, now: time.Now}
}

// stamp returns the current time truncated to whole milliseconds in UTC.
// The epoch is stored, embedded in tokens and compared at exactly this
// precision; truncating in one place but not another would reject
// just-issued keys.
func (s *Service) stamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// IssueKey stamps a fresh key epoch on the user and returns a token
// carrying it. The epoch is persisted before the token is returned so a
// caller can never hold a key whose epoch is not yet the stored one.
// Every previously issued key becomes invalid at that instant.
func (s *Service) IssueKey(ctx context.Context, userID string) (string, error) {
	at := s.stamp()
	if err := s.repo.SetKeyEpoch(ctx, userID, at); err != nil {
		return "", err
	}
	return s.codec.Encode(userID, at.UnixMilli())
}

// Register creates a user plus password account and issues a first key.
func (s *Service) Register(ctx context.Context, username, email, password string) (string, error) {
	exists, err := s.repo.UserExists(ctx, email, username)
	if err != nil {
		return "", err
	}
	if exists {
		return "", shared.ErrDuplicate
	}

	user := &User{
		ID:       uuid.NewString(),
		Email:    email,
		Name:     username,
		IsActive: true,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	if err := s.repo.CreateAccount(ctx, uuid.NewString(), user.ID, string(hash)); err != nil {
		return "", err
	}

	return s.IssueKey(ctx, user.ID)
}

// SignIn validates email/password credentials and issues a fresh key.
func (s *Service) SignIn(ctx context.Context, email, password string) (string, string, error) {
	userID, hash, err := s.repo.CredentialsByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return "", "", shared.ErrInvalidCredentials
		}
		return "", "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return "", "", shared.ErrInvalidCredentials
	}
	token, err := s.IssueKey(ctx, userID)
	if err != nil {
		return "", "", err
	}
	return userID, token, nil
}

// ValidateToken runs the bearer-key state machine. Returns the user on
// an exact epoch match, a *TokenError for every rejection, and plain
// errors only for store failures.
func (s *Service) ValidateToken(ctx context.Context, token string) (*User, error) {
	userID, epoch, err := s.codec.Decode(token)
	if err != nil {
		return nil, &TokenError{Kind: shared.AuthFailureMalformed}
	}

	user, err := s.repo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, &TokenError{Kind: shared.AuthFailureUserMissing}
		}
		return nil, err
	}

	if user.LastKeyGeneratedAt == nil {
		// Legacy account from before the epoch column existed. Stamp now
		// so the next request compares against a real value; this token
		// still fails below because its epoch predates the stamp.
		at := s.stamp()
		if err := s.repo.SetKeyEpoch(ctx, user.ID, at); err != nil {
			return nil, err
		}
		user.LastKeyGeneratedAt = &at
	}

	if user.LastKeyGeneratedAt.UnixMilli() != epoch {
		return nil, &TokenError{Kind: shared.AuthFailureEpochMismatch}
	}
	return user, nil
}

// ResolveSessionUser loads the user referenced by a session, applying the
// same first-touch epoch stamping as the token path.
func (s *Service) ResolveSessionUser(ctx context.Context, userID string) (*User, error) {
	user, err := s.repo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.LastKeyGeneratedAt == nil {
		at := s.stamp()
		if err := s.repo.SetKeyEpoch(ctx, user.ID, at); err != nil {
			return nil, err
		}
		user.LastKeyGeneratedAt = &at
	}
	return user, nil
}

// RegisterSession persists session metadata for auditing.
func (s *Service) RegisterSession(ctx context.Context, id, userID string, expiresAt time.Time, ip, ua string) error {
	return s.repo.CreateSession(ctx, id, userID, expiresAt, ip, ua)
}

// RemoveSession deletes a session audit row.
func (s *Service) RemoveSession(ctx context.Context, id string) error {
	return s.repo.DeleteSession(ctx, id)
}
