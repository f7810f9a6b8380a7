package credentials

import (
	"context"
	"testing"
)

func TestStaticCredentials(t *testing.T) {
	s := Static{ID: "AKID", Secret: "SECRET"}
	id, secret, err := s.Credentials(context.Background())
	if err != nil {
		t.Fatalf("Credentials: %v", err)
	}
	if id != "AKID" || secret != "SECRET" {
		t.Fatalf("Credentials() = (%q, %q), want (AKID, SECRET)", id, secret)
	}
}

func TestNewProviderDefaultsToStatic(t *testing.T) {
	p, err := NewProvider(Config{AccessKeyID: "AKID", AccessKeySecret: "SECRET"})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	if _, ok := p.(Static); !ok {
		t.Fatalf("NewProvider() = %T, want Static", p)
	}
}

func TestNewProviderPicksOnePasswordWhenConfigured(t *testing.T) {
	p, err := NewProvider(Config{
		OnePassword: OnePasswordConfig{Host: "https://connect.example", Token: "tok", VaultID: "vault-1"},
	})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	if _, ok := p.(*OnePassword); !ok {
		t.Fatalf("NewProvider() = %T, want *OnePassword", p)
	}
}

func TestNewOnePasswordRejectsIncompleteConfig(t *testing.T) {
	if _, err := NewOnePassword(OnePasswordConfig{Host: "https://connect.example"}); err == nil {
		t.Fatal("expected an error for missing token/vault_id")
	}
}

func TestOnePasswordRefreshClearsCache(t *testing.T) {
	p := &OnePassword{cached: true, id: "old", secret: "old"}
	p.Refresh()
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.cached {
		t.Fatal("Refresh should clear the cached flag")
	}
}
