package auth

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/api-edge/internal/model"
	"github.com/iliyamo/api-edge/internal/repository"
	"github.com/iliyamo/api-edge/internal/token"
)

// fakeStore is an in-memory UserStore with the same error contract as the
// MySQL repository.
type fakeStore struct {
	mu    sync.Mutex
	users map[string]*model.User // by id
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: map[string]*model.User{}}
}

func (s *fakeStore) Create(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ex := range s.users {
		if ex.Email == u.Email {
			return repository.ErrDuplicate
		}
		if ex.Phone != nil && u.Phone != nil && *ex.Phone == *u.Phone {
			return repository.ErrDuplicate
		}
	}
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *fakeStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if u.Email == email {
			return *u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (s *fakeStore) GetByID(_ context.Context, id string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		return *u, nil
	}
	return model.User{}, repository.ErrNotFound
}

func (s *fakeStore) TouchLastLogin(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		now := time.Now().UTC()
		u.LastLoginAt = &now
		return nil
	}
	return repository.ErrNotFound
}

func (s *fakeStore) MarkEmailVerified(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		u.EmailVerified = true
		return nil
	}
	return repository.ErrNotFound
}

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// fakeDenylist is an in-memory Denylist.
type fakeDenylist struct {
	mu      sync.Mutex
	entries map[string]time.Time // token -> entry expiry
}

func newFakeDenylist() *fakeDenylist {
	return &fakeDenylist{entries: map[string]time.Time{}}
}

func (d *fakeDenylist) Revoke(_ context.Context, raw string, ttl time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if ttl > 0 {
		d.entries[raw] = time.Now().Add(ttl)
	}
	return nil
}

func (d *fakeDenylist) IsRevoked(_ context.Context, raw string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	exp, ok := d.entries[raw]
	return ok && time.Now().Before(exp), nil
}

func newTestAuthority(store *fakeStore, denylist *fakeDenylist) *Authority {
	// MinCost keeps the adaptive hashing fast in tests.
	return New(store, denylist, nil, "test-secret", time.Hour, 24*time.Hour, 4, nil)
}

func register(t *testing.T, a *Authority, email string) *Grant {
	t.Helper()
	grant, err := a.Register(context.Background(), RegisterParams{
		Email:    email,
		Password: "s3cret-pass",
		FullName: "Test User",
	})
	require.NoError(t, err)
	return grant
}

func TestRegister_IssuesPair(t *testing.T) {
	store := newFakeStore()
	a := newTestAuthority(store, newFakeDenylist())

	grant := register(t, a, "User@Example.com")
	require.NotNil(t, grant.User)
	assert.Equal(t, "user@example.com", grant.User.Email)
	assert.NotEmpty(t, grant.AccessToken)
	assert.NotEmpty(t, grant.RefreshToken)
	assert.Equal(t, int64(3600), grant.ExpiresIn)

	claims, err := token.Verify([]byte("test-secret"), grant.AccessToken, token.KindAccess)
	require.NoError(t, err)
	assert.Equal(t, grant.User.ID, claims.Subject)
}

func TestRegister_DuplicateEmailConflicts(t *testing.T) {
	store := newFakeStore()
	a := newTestAuthority(store, newFakeDenylist())

	register(t, a, "dup@example.com")
	_, err := a.Register(context.Background(), RegisterParams{
		Email: "dup@example.com", Password: "other-pass", FullName: "Other",
	})
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, 1, store.count())
}

func TestRegister_DuplicatePhoneConflicts(t *testing.T) {
	store := newFakeStore()
	a := newTestAuthority(store, newFakeDenylist())

	_, err := a.Register(context.Background(), RegisterParams{
		Email: "one@example.com", Password: "pass-one", FullName: "One", Phone: "+628111",
	})
	require.NoError(t, err)

	_, err = a.Register(context.Background(), RegisterParams{
		Email: "two@example.com", Password: "pass-two", FullName: "Two", Phone: "+628111",
	})
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, 1, store.count())
}

func TestLogin(t *testing.T) {
	store := newFakeStore()
	a := newTestAuthority(store, newFakeDenylist())
	grant := register(t, a, "login@example.com")

	t.Run("success updates last login", func(t *testing.T) {
		got, err := a.Login(context.Background(), "login@example.com", "s3cret-pass")
		require.NoError(t, err)
		assert.Equal(t, grant.User.ID, got.User.ID)

		u, err := store.GetByID(context.Background(), grant.User.ID)
		require.NoError(t, err)
		require.NotNil(t, u.LastLoginAt)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := a.Login(context.Background(), "login@example.com", "wrong-pass")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := a.Login(context.Background(), "nobody@example.com", "s3cret-pass")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("suspended account collapses into invalid credentials", func(t *testing.T) {
		store.mu.Lock()
		store.users[grant.User.ID].Status = model.StatusSuspended
		store.mu.Unlock()
		_, err := a.Login(context.Background(), "login@example.com", "s3cret-pass")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestLogin_ConcurrentAttemptsAllSucceed(t *testing.T) {
	store := newFakeStore()
	a := newTestAuthority(store, newFakeDenylist())
	register(t, a, "parallel@example.com")

	const n = 8
	errs := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := a.Login(context.Background(), "parallel@example.com", "s3cret-pass")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestRefresh(t *testing.T) {
	store := newFakeStore()
	denylist := newFakeDenylist()
	a := newTestAuthority(store, denylist)
	grant := register(t, a, "refresh@example.com")

	t.Run("valid refresh issues new pair without user payload", func(t *testing.T) {
		got, err := a.Refresh(context.Background(), grant.RefreshToken)
		require.NoError(t, err)
		assert.Nil(t, got.User)
		assert.NotEmpty(t, got.AccessToken)
		assert.NotEqual(t, grant.RefreshToken, got.RefreshToken)
	})

	t.Run("access token never satisfies refresh", func(t *testing.T) {
		_, err := a.Refresh(context.Background(), grant.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage rejected", func(t *testing.T) {
		_, err := a.Refresh(context.Background(), "garbage")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("revoked refresh rejected", func(t *testing.T) {
		require.NoError(t, a.Logout(context.Background(), grant.RefreshToken))
		_, err := a.Refresh(context.Background(), grant.RefreshToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestLogout(t *testing.T) {
	store := newFakeStore()
	denylist := newFakeDenylist()
	a := newTestAuthority(store, denylist)
	grant := register(t, a, "logout@example.com")

	t.Run("revocation is immediately effective", func(t *testing.T) {
		require.NoError(t, a.Logout(context.Background(), grant.RefreshToken))
		revoked, err := denylist.IsRevoked(context.Background(), grant.RefreshToken)
		require.NoError(t, err)
		assert.True(t, revoked)
	})

	t.Run("independent token for the same user still works", func(t *testing.T) {
		fresh, err := a.Login(context.Background(), "logout@example.com", "s3cret-pass")
		require.NoError(t, err)
		_, err = a.Refresh(context.Background(), fresh.RefreshToken)
		assert.NoError(t, err)
	})

	t.Run("garbled token is a no-op", func(t *testing.T) {
		assert.NoError(t, a.Logout(context.Background(), "not-a-token"))
	})

	t.Run("expired token is not stored", func(t *testing.T) {
		expired, err := token.Sign([]byte("test-secret"), "u", "e@example.com", token.KindAccess, -time.Minute)
		require.NoError(t, err)
		require.NoError(t, a.Logout(context.Background(), expired))
		revoked, err := denylist.IsRevoked(context.Background(), expired)
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("double logout is a no-op", func(t *testing.T) {
		assert.NoError(t, a.Logout(context.Background(), grant.RefreshToken))
	})
}

func TestVerifyEmail(t *testing.T) {
	store := newFakeStore()
	a := newTestAuthority(store, newFakeDenylist())
	grant := register(t, a, "verify@example.com")

	t.Run("flips the flag", func(t *testing.T) {
		require.NoError(t, a.VerifyEmail(context.Background(), grant.AccessToken))
		u, err := store.GetByID(context.Background(), grant.User.ID)
		require.NoError(t, err)
		assert.True(t, u.EmailVerified)
	})

	t.Run("bad signature rejected", func(t *testing.T) {
		forged, err := token.Sign([]byte("wrong-secret"), grant.User.ID, "verify@example.com", token.KindAccess, time.Hour)
		require.NoError(t, err)
		assert.ErrorIs(t, a.VerifyEmail(context.Background(), forged), ErrInvalidToken)
	})

	t.Run("revoked token rejected", func(t *testing.T) {
		fresh, err := a.Login(context.Background(), "verify@example.com", "s3cret-pass")
		require.NoError(t, err)
		require.NoError(t, a.Logout(context.Background(), fresh.AccessToken))
		assert.ErrorIs(t, a.VerifyEmail(context.Background(), fresh.AccessToken), ErrInvalidToken)
	})
}
