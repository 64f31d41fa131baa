package connect

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"testing"
	"time"

	"github.com/socialsignin/socialguard/internal/cache/memory"
	"github.com/socialsignin/socialguard/internal/domain/repository"
	"github.com/socialsignin/socialguard/internal/security/secretbox"
	memstore "github.com/socialsignin/socialguard/internal/store/adapters/memory"
)

func newSessions() *Sessions {
	return NewSessions(memory.New(time.Minute), time.Minute)
}

func TestPutPendingComplete(t *testing.T) {
	s := newSessions()
	ctx := context.Background()

	if _, err := s.Pending(ctx, "s1"); err != repository.ErrNoPendingConnection {
		t.Fatalf("expected ErrNoPendingConnection, got %v", err)
	}

	conn := Connection{Provider: "github", ProviderUserID: "42", Username: "OctoJohn"}
	if err := s.Put(ctx, "s1", conn, ""); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.Pending(ctx, "s1")
	if err != nil {
		t.Fatalf("Pending: %v", err)
	}
	if got.Provider != "github" || got.ProviderUserID != "42" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Fatalf("CreatedAt not stamped")
	}

	s.Complete(ctx, "s1")
	if _, err := s.Pending(ctx, "s1"); err != repository.ErrNoPendingConnection {
		t.Fatalf("connection must be consumed, got %v", err)
	}
}

func TestPut_SealsAccessToken(t *testing.T) {
	k := make([]byte, 32)
	if _, err := rand.Read(k); err != nil {
		t.Fatalf("rand: %v", err)
	}
	t.Setenv("SECRETBOX_MASTER_KEY", base64.StdEncoding.EncodeToString(k))

	s := newSessions()
	ctx := context.Background()

	if err := s.Put(ctx, "s1", Connection{Provider: "github"}, "gho_token"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := s.Pending(ctx, "s1")
	if err != nil {
		t.Fatalf("Pending: %v", err)
	}
	if got.AccessTokenEnc == "" || got.AccessTokenEnc == "gho_token" {
		t.Fatalf("access token not sealed: %q", got.AccessTokenEnc)
	}
	pt, err := secretbox.Open(got.AccessTokenEnc)
	if err != nil || pt != "gho_token" {
		t.Fatalf("sealed token does not open: %q %v", pt, err)
	}
}

func TestSuggestedUsername_InvalidNotSuggested(t *testing.T) {
	s := newSessions()
	ctx := context.Background()
	store := memstore.New()

	if err := s.Put(ctx, "s1", Connection{Provider: "github", Username: "Not A Valid Name!"}, ""); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := s.SuggestedUsername(ctx, "s1", store)
	if err != nil || got != "" {
		t.Fatalf("invalid provider username must not be suggested, got %q err=%v", got, err)
	}
}
