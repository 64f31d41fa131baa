package authn

import (
	"reflect"
	"testing"
)

type staticMapper struct{}

func (staticMapper) Authority(providerID string) Authority {
	return ProviderAuthority(providerID)
}

func TestProviderAuthority_StableAndNormalized(t *testing.T) {
	if ProviderAuthority("github") != ProviderAuthority(" github ") {
		t.Fatalf("expected whitespace-insensitive authority")
	}
	if got := ProviderAuthority("twitter"); got != Authority("ROLE_USER_TWITTER") {
		t.Fatalf("unexpected authority: %q", got)
	}
}

func TestWith_DoesNotMutateOriginal(t *testing.T) {
	orig := New("john", ProviderAuthority("github"))
	derived := orig.With(ProviderAuthority("twitter"))

	if orig.Has(ProviderAuthority("twitter")) {
		t.Fatalf("original authentication was mutated")
	}
	if !derived.Has(ProviderAuthority("twitter")) || !derived.Has(ProviderAuthority("github")) {
		t.Fatalf("derived authentication missing authorities: %v", derived.Authorities())
	}
	if derived.Principal() != "john" {
		t.Fatalf("principal lost on derivation: %q", derived.Principal())
	}

	// Mutar el derivado tampoco toca al original (sin aliasing de maps).
	_ = derived.With(ProviderAuthority("facebook"))
	if len(orig.Authorities()) != 1 {
		t.Fatalf("original authority set changed: %v", orig.Authorities())
	}
}

func TestFactory_WithProvider_Idempotent(t *testing.T) {
	f := NewFactory(staticMapper{})
	a := New("john")

	once := f.WithProvider(a, "github")
	twice := f.WithProvider(once, "github")

	if !reflect.DeepEqual(once.Authorities(), twice.Authorities()) {
		t.Fatalf("expected idempotency: %v vs %v", once.Authorities(), twice.Authorities())
	}
}

func TestFactory_WithProviders_OrderIndependent(t *testing.T) {
	f := NewFactory(staticMapper{})
	a := New("john")

	perms := [][]string{
		{"github", "twitter", "facebook"},
		{"facebook", "github", "twitter"},
		{"twitter", "facebook", "github"},
	}
	want := f.WithProviders(a, perms[0]).Authorities()
	for _, p := range perms[1:] {
		got := f.WithProviders(a, p).Authorities()
		if !reflect.DeepEqual(want, got) {
			t.Fatalf("order-dependent result: %v vs %v (perm %v)", want, got, p)
		}
	}
}

func TestAnonymous(t *testing.T) {
	a := Anonymous()
	if a.Authenticated() {
		t.Fatalf("anonymous must not be authenticated")
	}
	if n := len(a.Authorities()); n != 0 {
		t.Fatalf("anonymous must have no authorities, got %d", n)
	}
	// El zero value también se puede aumentar sin panic.
	b := a.With(ProviderAuthority("github"))
	if !b.Has(ProviderAuthority("github")) {
		t.Fatalf("augmenting the zero value failed")
	}
}
