package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/socialsignin/socialguard/internal/domain/repository"
)

func TestCreateLinked_AndLookup(t *testing.T) {
	s := New()
	ctx := context.Background()

	acc, conn, err := s.CreateLinked(ctx, repository.CreateLinkedInput{
		Username:       "John",
		Provider:       "github",
		ProviderUserID: "12345",
		DisplayName:    "John Doe",
	})
	if err != nil {
		t.Fatalf("CreateLinked: %v", err)
	}
	if acc.Username != "john" {
		t.Fatalf("username not normalized: %q", acc.Username)
	}
	if conn.AccountID != acc.ID || conn.Provider != "github" {
		t.Fatalf("connection not linked: %+v", conn)
	}

	got, err := s.FindByUsername(ctx, "JOHN")
	if err != nil {
		t.Fatalf("FindByUsername: %v", err)
	}
	if got.ID != acc.ID {
		t.Fatalf("lookup mismatch")
	}

	conns, err := s.ConnectionsByAccount(ctx, acc.ID)
	if err != nil || len(conns) != 1 {
		t.Fatalf("ConnectionsByAccount: %v %v", conns, err)
	}
}

func TestFindByUsername_NotFound(t *testing.T) {
	s := New()
	_, err := s.FindByUsername(context.Background(), "ghost")
	if !repository.IsNotFound(err) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateLinked_Conflict(t *testing.T) {
	s := New()
	ctx := context.Background()
	input := repository.CreateLinkedInput{Username: "john", Provider: "github"}

	if _, _, err := s.CreateLinked(ctx, input); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, _, err := s.CreateLinked(ctx, input); !repository.IsConflict(err) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestCreateLinked_ConcurrentSameUsername(t *testing.T) {
	s := New()
	ctx := context.Background()

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = s.CreateLinked(ctx, repository.CreateLinkedInput{
				Username: "racer",
				Provider: "twitter",
			})
		}(i)
	}
	wg.Wait()

	successes, conflicts := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case repository.IsConflict(err):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 || conflicts != attempts-1 {
		t.Fatalf("expected exactly one success, got %d successes / %d conflicts", successes, conflicts)
	}
}
