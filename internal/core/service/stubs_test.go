package service

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/naiarievilo/todoapp/internal/core/domain"
	"github.com/naiarievilo/todoapp/internal/core/token"
)

const testSecret = "test-secret"

// ---------------------------------------------------------------------------
// In-memory account store
// ---------------------------------------------------------------------------

type stubAccountRepo struct {
	mu           sync.Mutex
	byID         map[string]*domain.Account
	nextID       int
	stateWrites  int
	failedWrites int
	deleted      []string
	findErr      error // if set, FindByID and FindByEmail return it
	deleteErr    error
	beforeDelete func() // runs before DeleteUnverified takes the lock
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{byID: make(map[string]*domain.Account)}
}

func cloneAccount(a *domain.Account) *domain.Account {
	if a == nil {
		return nil
	}
	clone := *a
	clone.Roles = append([]string(nil), a.Roles...)
	if a.LastFailedLoginAt != nil {
		at := *a.LastFailedLoginAt
		clone.LastFailedLoginAt = &at
	}
	return &clone
}

// seed stores a copy of a, assigning an id when missing, and returns a copy.
func (r *stubAccountRepo) seed(a *domain.Account) *domain.Account {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.ID == "" {
		r.nextID++
		a.ID = "acc-" + strconv.Itoa(r.nextID)
	}
	r.byID[a.ID] = cloneAccount(a)
	return cloneAccount(a)
}

func (r *stubAccountRepo) stored(id string) *domain.Account {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneAccount(r.byID[id])
}

func (r *stubAccountRepo) Create(_ context.Context, a *domain.Account) (*domain.Account, error) {
	r.mu.Lock()
	for _, existing := range r.byID {
		if existing.Email == a.Email {
			r.mu.Unlock()
			return nil, domain.ErrAccountExists
		}
	}
	r.mu.Unlock()
	clone := cloneAccount(a)
	clone.ID = ""
	return r.seed(clone), nil
}

func (r *stubAccountRepo) FindByID(_ context.Context, id string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return cloneAccount(a), nil
}

func (r *stubAccountRepo) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, a := range r.byID {
		if a.Email == email {
			return cloneAccount(a), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) ApplyStateChange(_ context.Context, id string, change domain.AccountStateChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	r.stateWrites++
	if change.Verified != nil {
		a.Verified = *change.Verified
	}
	if change.Enabled != nil {
		a.Enabled = *change.Enabled
	}
	if change.Locked != nil {
		a.Locked = *change.Locked
	}
	if change.FailedLoginAttempts != nil {
		a.FailedLoginAttempts = *change.FailedLoginAttempts
	}
	return nil
}

func (r *stubAccountRepo) RecordFailedLogin(_ context.Context, id string, at time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return 0, domain.ErrAccountNotFound
	}
	r.failedWrites++
	a.FailedLoginAttempts++
	a.LastFailedLoginAt = &at
	return a.FailedLoginAttempts, nil
}

func (r *stubAccountRepo) DeleteUnverified(_ context.Context, id string) (bool, error) {
	if r.beforeDelete != nil {
		r.beforeDelete()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return false, r.deleteErr
	}
	a, ok := r.byID[id]
	if !ok || a.Verified {
		return false, nil
	}
	delete(r.byID, id)
	r.deleted = append(r.deleted, id)
	return true, nil
}

// ---------------------------------------------------------------------------
// Other collaborators
// ---------------------------------------------------------------------------

type stubRoleRepo struct {
	perms map[string][]string
	err   error
}

func (r *stubRoleRepo) PermissionsFor(_ context.Context, roles []string) ([]string, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []string
	for _, role := range roles {
		out = append(out, r.perms[role]...)
	}
	return out, nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []domain.Notification
	err  error
}

func (n *recordingNotifier) Notify(_ context.Context, msg domain.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, msg)
	return nil
}

func (n *recordingNotifier) last(t *testing.T) domain.Notification {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sent) == 0 {
		t.Fatalf("expected a notification, got none")
	}
	return n.sent[len(n.sent)-1]
}

type stubGuard struct {
	used map[string]bool
	err  error
}

func newStubGuard() *stubGuard {
	return &stubGuard{used: make(map[string]bool)}
}

func (g *stubGuard) Consume(_ context.Context, id string, _ time.Duration) (bool, error) {
	if g.err != nil {
		return false, g.err
	}
	if g.used[id] {
		return false, nil
	}
	g.used[id] = true
	return true, nil
}

type fakeClock struct{ t time.Time }

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func newTestCodec(t *testing.T, clock *fakeClock) *token.Codec {
	t.Helper()
	p, err := token.NewPolicy(token.PolicyConfig{Secret: []byte(testSecret)})
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}
	return token.NewCodec(p, token.WithClock(clock.Now))
}

func signClaims(t *testing.T, secret string, claims *token.Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := NewBcryptHasher(4).Hash(password)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return hash
}

func usableAccount(email string) *domain.Account {
	return &domain.Account{
		Email:     email,
		Roles:     []string{domain.RoleUser},
		Verified:  true,
		Enabled:   true,
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func nopLog() zerolog.Logger { return zerolog.Nop() }
