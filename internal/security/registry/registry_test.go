package registry

import (
	"reflect"
	"testing"

	"github.com/socialsignin/socialguard/internal/security/authn"
)

func TestNew_NormalizesAndSorts(t *testing.T) {
	r := New([]string{"Twitter", " github ", "twitter", "", "facebook"})
	want := []string{"facebook", "github", "twitter"}
	if got := r.ProviderIDs(); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected provider ids: %v", got)
	}
	if !r.Known("github") || r.Known("linkedin") {
		t.Fatalf("Known() misbehaves")
	}
}

func TestProviderIDs_ReturnsCopy(t *testing.T) {
	r := New([]string{"github", "twitter"})
	ids := r.ProviderIDs()
	ids[0] = "mutated"
	if got := r.ProviderIDs(); got[0] != "github" {
		t.Fatalf("internal slice aliased: %v", got)
	}
}

func TestUnconnected(t *testing.T) {
	r := New([]string{"github", "twitter", "facebook"})

	anon := authn.Anonymous()
	if got := r.Unconnected(anon); len(got) != 3 {
		t.Fatalf("anonymous should be unconnected to all: %v", got)
	}

	a := authn.New("john", authn.ProviderAuthority("twitter"))
	want := []string{"facebook", "github"}
	if got := r.Unconnected(a); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected unconnected set: %v", got)
	}

	all := authn.New("john",
		authn.ProviderAuthority("twitter"),
		authn.ProviderAuthority("github"),
		authn.ProviderAuthority("facebook"),
	)
	if got := r.Unconnected(all); len(got) != 0 {
		t.Fatalf("fully connected user should have empty set: %v", got)
	}
}
