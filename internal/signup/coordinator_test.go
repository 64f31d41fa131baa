package signup

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/socialsignin/socialguard/internal/cache/memory"
	"github.com/socialsignin/socialguard/internal/connect"
	"github.com/socialsignin/socialguard/internal/domain/repository"
	memstore "github.com/socialsignin/socialguard/internal/store/adapters/memory"
)

func newCoordinator(t *testing.T) (*Coordinator, *connect.Sessions, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	sessions := connect.NewSessions(memory.New(time.Minute), time.Minute)
	return NewCoordinator(store, sessions), sessions, store
}

func putPending(t *testing.T, sessions *connect.Sessions, sessionID string) {
	t.Helper()
	err := sessions.Put(context.Background(), sessionID, connect.Connection{
		Provider:       "github",
		ProviderUserID: "42",
		Username:       "octojohn",
		DisplayName:    "John Doe",
	}, "")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
}

func TestSignUp_EmptyUsernameRejected(t *testing.T) {
	c, sessions, store := newCoordinator(t)
	putPending(t, sessions, "s1")

	for _, username := range []string{"", "   ", "\t\n"} {
		res, err := c.SignUp(context.Background(), "s1", username)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Completed() || len(res.Errors) != 1 || res.Errors[0].Field != "username" {
			t.Fatalf("expected single username field error, got %+v", res)
		}
	}
	// La validación nunca llega al path de creación.
	if _, err := store.FindByUsername(context.Background(), "octojohn"); !repository.IsNotFound(err) {
		t.Fatalf("no account should exist, got %v", err)
	}
}

func TestSignUp_TakenUsernameRejected(t *testing.T) {
	c, sessions, store := newCoordinator(t)
	putPending(t, sessions, "s1")

	if _, _, err := store.CreateLinked(context.Background(), repository.CreateLinkedInput{
		Username: "john", Provider: "twitter",
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	res, err := c.SignUp(context.Background(), "s1", "john")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Completed() {
		t.Fatalf("expected rejection")
	}
	if len(res.Errors) != 1 || !strings.Contains(res.Errors[0].Message, "not available") {
		t.Fatalf("expected availability error, got %+v", res.Errors)
	}
}

func TestSignUp_Completes(t *testing.T) {
	c, sessions, store := newCoordinator(t)
	putPending(t, sessions, "s1")
	ctx := context.Background()

	res, err := c.SignUp(ctx, "s1", "  John ")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if !res.Completed() {
		t.Fatalf("expected completion, got errors %+v", res.Errors)
	}
	if res.Account.Username != "john" {
		t.Fatalf("username not normalized: %q", res.Account.Username)
	}
	if res.Connection.Provider != "github" || res.Connection.ProviderUserID != "42" {
		t.Fatalf("connection not carried over: %+v", res.Connection)
	}

	// La cuenta quedó persistida y la conexión pendiente se consumió.
	if _, err := store.FindByUsername(ctx, "john"); err != nil {
		t.Fatalf("account not stored: %v", err)
	}
	if _, err := sessions.Pending(ctx, "s1"); err != repository.ErrNoPendingConnection {
		t.Fatalf("pending connection not consumed: %v", err)
	}
}

func TestSignUp_NoPendingConnectionIsFatal(t *testing.T) {
	c, _, _ := newCoordinator(t)
	_, err := c.SignUp(context.Background(), "ghost-session", "john")
	if !errors.Is(err, repository.ErrNoPendingConnection) {
		t.Fatalf("expected ErrNoPendingConnection, got %v", err)
	}
}

type failingStore struct{ repository.AccountRepository }

func (f failingStore) FindByUsername(context.Context, string) (*repository.Account, error) {
	return nil, errors.New("store unreachable")
}

func TestSignUp_StoreErrorPropagates(t *testing.T) {
	store := memstore.New()
	sessions := connect.NewSessions(memory.New(time.Minute), time.Minute)
	c := NewCoordinator(failingStore{store}, sessions)
	putPending(t, sessions, "s1")

	_, err := c.SignUp(context.Background(), "s1", "john")
	if err == nil || strings.Contains(err.Error(), "not available") {
		t.Fatalf("store failure must propagate, not masked as taken: %v", err)
	}
}

func TestSignUp_ConcurrentSameUsername(t *testing.T) {
	c, sessions, _ := newCoordinator(t)
	ctx := context.Background()

	const attempts = 8
	for i := 0; i < attempts; i++ {
		putPending(t, sessions, sessionID(i))
	}

	var wg sync.WaitGroup
	results := make([]*Result, attempts)
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.SignUp(ctx, sessionID(i), "racer")
		}(i)
	}
	wg.Wait()

	completed, rejected := 0, 0
	for i := 0; i < attempts; i++ {
		if errs[i] != nil {
			t.Fatalf("attempt %d: unexpected error %v", i, errs[i])
		}
		if results[i].Completed() {
			completed++
		} else {
			rejected++
		}
	}
	if completed != 1 || rejected != attempts-1 {
		t.Fatalf("expected exactly one completion, got %d completed / %d rejected", completed, rejected)
	}
}

func TestSuggestedUsername(t *testing.T) {
	c, sessions, store := newCoordinator(t)
	ctx := context.Background()

	// Sin conexión pendiente: sin sugerencia, sin error.
	got, err := c.SuggestedUsername(ctx, "nope")
	if err != nil || got != "" {
		t.Fatalf("expected empty suggestion, got %q err=%v", got, err)
	}

	putPending(t, sessions, "s1")
	got, err = c.SuggestedUsername(ctx, "s1")
	if err != nil || got != "octojohn" {
		t.Fatalf("expected octojohn, got %q err=%v", got, err)
	}

	// Tomado: no se sugiere.
	if _, _, err := store.CreateLinked(ctx, repository.CreateLinkedInput{
		Username: "octojohn", Provider: "twitter",
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	got, err = c.SuggestedUsername(ctx, "s1")
	if err != nil || got != "" {
		t.Fatalf("taken name must not be suggested, got %q err=%v", got, err)
	}
}

func sessionID(i int) string {
	return string(rune('a'+i)) + "-session"
}
