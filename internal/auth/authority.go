// Package auth implements the token authority: registration, login, token
// refresh, logout and email verification. It owns the credential store and
// the revocation denylist; the HTTP layer only translates its results.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/api-edge/internal/model"
	"github.com/iliyamo/api-edge/internal/repository"
	"github.com/iliyamo/api-edge/internal/token"
)

// Domain outcomes. The edge maps these to transport codes exactly once;
// anything else escaping the authority is an internal fault.
var (
	// ErrConflict: a user with the same email or phone already exists.
	ErrConflict = errors.New("user already exists")
	// ErrInvalidCredentials collapses unknown email, wrong password and
	// non-active account into one outcome so responses leak nothing.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken: bad signature, expired, wrong kind, or revoked.
	ErrInvalidToken = errors.New("invalid token")
)

// UserStore is the slice of the credential store the authority needs.
// Implementations return repository.ErrDuplicate and repository.ErrNotFound
// for the corresponding conditions.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id string) (model.User, error)
	TouchLastLogin(ctx context.Context, id string) error
	MarkEmailVerified(ctx context.Context, id string) error
}

// Denylist records revoked tokens for their remaining lifetime.
type Denylist interface {
	Revoke(ctx context.Context, rawToken string, ttl time.Duration) error
	IsRevoked(ctx context.Context, rawToken string) (bool, error)
}

// Events receives best-effort notifications about auth activity for
// downstream consumers (notification, analytics). A nil Events disables
// publishing; failures must never fail the originating operation.
type Events interface {
	UserRegistered(ctx context.Context, userID, email string)
	UserLoggedIn(ctx context.Context, userID, email string)
}

// UserInfo is the public slice of a user returned with a grant.
type UserInfo struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// Grant is the result of a successful identity operation: a token pair,
// optionally accompanied by the subject's public info. Refresh returns
// tokens only.
type Grant struct {
	User *UserInfo `json:"user,omitempty"`
	token.Pair
}

// RegisterParams carries the registration input. Phone is optional.
type RegisterParams struct {
	Email    string
	Password string
	FullName string
	Phone    string
}

// Authority issues, rotates and revokes token pairs.
type Authority struct {
	users      UserStore
	denylist   Denylist
	events     Events
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	bcryptCost int
	log        *slog.Logger
}

// New constructs an Authority. events may be nil.
func New(users UserStore, denylist Denylist, events Events, secret string,
	accessTTL, refreshTTL time.Duration, bcryptCost int, log *slog.Logger) *Authority {
	if log == nil {
		log = slog.Default()
	}
	return &Authority{
		users:      users,
		denylist:   denylist,
		events:     events,
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		bcryptCost: bcryptCost,
		log:        log,
	}
}

// Register creates a user and issues its first token pair. A duplicate
// email or phone yields ErrConflict and no new row.
func (a *Authority) Register(ctx context.Context, p RegisterParams) (*Grant, error) {
	email := strings.ToLower(strings.TrimSpace(p.Email))

	hash, err := hashPassword(p.Password, a.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		FullName:     p.FullName,
		Status:       model.StatusActive,
	}
	if phone := strings.TrimSpace(p.Phone); phone != "" {
		u.Phone = &phone
	}

	if err := a.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	grant, err := a.grantFor(u)
	if err != nil {
		return nil, err
	}
	if a.events != nil {
		a.events.UserRegistered(ctx, u.ID, u.Email)
	}
	return grant, nil
}

// Login verifies credentials and issues a fresh pair. Unknown email, bad
// password and non-active status all collapse into ErrInvalidCredentials.
func (a *Authority) Login(ctx context.Context, email, password string) (*Grant, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if u.Status != model.StatusActive {
		a.log.Info("login rejected for non-active account", "user_id", u.ID, "status", u.Status)
		return nil, ErrInvalidCredentials
	}
	if !verifyPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	if err := a.users.TouchLastLogin(ctx, u.ID); err != nil {
		return nil, fmt.Errorf("update last login: %w", err)
	}

	grant, err := a.grantFor(&u)
	if err != nil {
		return nil, err
	}
	if a.events != nil {
		a.events.UserLoggedIn(ctx, u.ID, u.Email)
	}
	return grant, nil
}

// Refresh exchanges a valid refresh token for a new pair. The presented
// token must verify, carry kind=refresh and not appear on the denylist.
// It is not revoked on success; chained refreshes remain possible.
func (a *Authority) Refresh(ctx context.Context, refreshToken string) (*Grant, error) {
	claims, err := token.Verify(a.secret, refreshToken, token.KindRefresh)
	if err != nil {
		return nil, ErrInvalidToken
	}
	revoked, err := a.denylist.IsRevoked(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("denylist check: %w", err)
	}
	if revoked {
		return nil, ErrInvalidToken
	}

	pair, err := token.NewPair(a.secret, claims.Subject, claims.Email, a.accessTTL, a.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("issue pair: %w", err)
	}
	return &Grant{Pair: pair}, nil
}

// Logout revokes the presented token for its remaining lifetime. It is
// idempotent: malformed, expired or already-revoked tokens are a no-op.
// Only a denylist write failure is an error.
func (a *Authority) Logout(ctx context.Context, rawToken string) error {
	exp, ok := token.ExtractExpiry(rawToken)
	if !ok {
		return nil
	}
	ttl := time.Until(exp)
	if ttl <= 0 {
		return nil
	}
	if err := a.denylist.Revoke(ctx, rawToken, ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// VerifyEmail confirms a user's email address from a signed token. Any
// token signed with the shared secret and not revoked is accepted.
func (a *Authority) VerifyEmail(ctx context.Context, rawToken string) error {
	claims, err := token.Parse(a.secret, rawToken)
	if err != nil {
		return ErrInvalidToken
	}
	revoked, err := a.denylist.IsRevoked(ctx, rawToken)
	if err != nil {
		return fmt.Errorf("denylist check: %w", err)
	}
	if revoked {
		return ErrInvalidToken
	}
	if err := a.users.MarkEmailVerified(ctx, claims.Subject); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidToken
		}
		return fmt.Errorf("mark verified: %w", err)
	}
	return nil
}

func (a *Authority) grantFor(u *model.User) (*Grant, error) {
	pair, err := token.NewPair(a.secret, u.ID, u.Email, a.accessTTL, a.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("issue pair: %w", err)
	}
	return &Grant{
		User: &UserInfo{ID: u.ID, Email: u.Email, FullName: u.FullName},
		Pair: pair,
	}, nil
}
