package service

import (
	"context"
	"errors"
	"testing"

	"github.com/naiarievilo/todoapp/internal/core/domain"
)

func newStateMachine(repo *stubAccountRepo, clock *fakeClock) *AccountStateMachine {
	return NewAccountStateMachine(repo, clock.Now, nopLog())
}

func TestAccountStateMachine_IdempotentTransitions(t *testing.T) {
	repo := newStubAccountRepo()
	sm := newStateMachine(repo, newFakeClock())
	ctx := context.Background()
	a := repo.seed(usableAccount("a@example.com"))
	a.Verified = false
	repo.byID[a.ID].Verified = false

	steps := []struct {
		name   string
		apply  func() error
		writes int
	}{
		{"lock", func() error { return sm.Lock(ctx, a) }, 1},
		{"lock again", func() error { return sm.Lock(ctx, a) }, 1},
		{"unlock", func() error { return sm.Unlock(ctx, a) }, 2},
		{"unlock again", func() error { return sm.Unlock(ctx, a) }, 2},
		{"enable while enabled", func() error { return sm.Enable(ctx, a) }, 2},
		{"disable", func() error { return sm.Disable(ctx, a) }, 3},
		{"disable again", func() error { return sm.Disable(ctx, a) }, 3},
		{"enable", func() error { return sm.Enable(ctx, a) }, 4},
		{"enable again", func() error { return sm.Enable(ctx, a) }, 4},
		{"verify", func() error { return sm.Verify(ctx, a) }, 5},
		{"verify again", func() error { return sm.Verify(ctx, a) }, 5},
	}

	for _, step := range steps {
		if err := step.apply(); err != nil {
			t.Fatalf("%s: unexpected error: %v", step.name, err)
		}
		if repo.stateWrites != step.writes {
			t.Fatalf("%s: expected %d store writes, got %d", step.name, step.writes, repo.stateWrites)
		}
	}

	stored := repo.stored(a.ID)
	if !stored.Verified || !stored.Enabled || stored.Locked {
		t.Fatalf("unexpected final state: %+v", stored)
	}
	if stored.Verified != a.Verified || stored.Enabled != a.Enabled || stored.Locked != a.Locked {
		t.Fatalf("loaded account out of sync with store: %+v vs %+v", a, stored)
	}
}

func TestAccountStateMachine_RecordFailedLogin(t *testing.T) {
	repo := newStubAccountRepo()
	clock := newFakeClock()
	sm := newStateMachine(repo, clock)
	a := repo.seed(usableAccount("a@example.com"))

	for i := 1; i <= 3; i++ {
		if err := sm.RecordFailedLogin(context.Background(), a); err != nil {
			t.Fatalf("RecordFailedLogin: %v", err)
		}
		if a.FailedLoginAttempts != i {
			t.Fatalf("expected %d attempts, got %d", i, a.FailedLoginAttempts)
		}
	}
	if a.LastFailedLoginAt == nil || !a.LastFailedLoginAt.Equal(clock.Now()) {
		t.Fatalf("expected last failed login at %v, got %v", clock.Now(), a.LastFailedLoginAt)
	}
	if got := repo.stored(a.ID).FailedLoginAttempts; got != 3 {
		t.Fatalf("store has %d attempts, want 3", got)
	}
}

func TestAccountStateMachine_ResetLoginAttempts(t *testing.T) {
	repo := newStubAccountRepo()
	sm := newStateMachine(repo, newFakeClock())
	a := repo.seed(usableAccount("a@example.com"))

	if err := sm.ResetLoginAttempts(context.Background(), a); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if repo.stateWrites != 0 {
		t.Fatalf("reset of a zero counter must not write, got %d writes", repo.stateWrites)
	}

	_ = sm.RecordFailedLogin(context.Background(), a)
	_ = sm.RecordFailedLogin(context.Background(), a)
	if err := sm.ResetLoginAttempts(context.Background(), a); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if a.FailedLoginAttempts != 0 || repo.stored(a.ID).FailedLoginAttempts != 0 {
		t.Fatalf("counter not reset: loaded=%d stored=%d", a.FailedLoginAttempts, repo.stored(a.ID).FailedLoginAttempts)
	}
	if repo.stateWrites != 1 {
		t.Fatalf("expected exactly one write, got %d", repo.stateWrites)
	}
}

func TestAccountStateMachine_VanishedAccount(t *testing.T) {
	repo := newStubAccountRepo()
	sm := newStateMachine(repo, newFakeClock())
	a := usableAccount("ghost@example.com")
	a.ID = "gone"

	if err := sm.Lock(context.Background(), a); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
	if a.Locked {
		t.Fatalf("loaded account must not change when the write fails")
	}
	if err := sm.RecordFailedLogin(context.Background(), a); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
	if a.FailedLoginAttempts != 0 {
		t.Fatalf("counter must not change when the write fails")
	}
}
