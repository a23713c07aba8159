package devauth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/crimetracker/crimetracker-api/internal/ports"
)

func TestProvider_BeginAndExchange(t *testing.T) {
	prov, err := NewProvider(Config{SubjectID: "dev-user", Email: "dev@example.com", DisplayName: "Dev"})
	if err != nil {
		t.Fatalf("NewProvider error: %v", err)
	}
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	prov.now = func() time.Time { return fixed }

	url, state, nonce, err := prov.Begin(context.Background(), ports.BeginInput{RedirectURL: "/"})
	if err != nil {
		t.Fatalf("Begin error: %v", err)
	}
	if !strings.HasPrefix(url, "/auth/callback?") || !strings.Contains(url, "state="+state) {
		t.Fatalf("unexpected authURL: %s", url)
	}
	if state == "" || nonce == "" {
		t.Fatal("state and nonce should be generated")
	}
	id, err := prov.Exchange(context.Background(), ports.ExchangeInput{Code: "dev", State: state, Nonce: nonce})
	if err != nil {
		t.Fatalf("Exchange error: %v", err)
	}
	if id.SubjectID != "dev-user" || id.Email != "dev@example.com" || id.DisplayName != "Dev" {
		t.Fatalf("unexpected identity: %+v", id)
	}
	if !id.ExpiresAt.Equal(fixed.Add(8 * time.Hour)) {
		t.Fatalf("unexpected expiry: %v", id.ExpiresAt)
	}
}

func TestNewProvider_RequiresSubjectAndEmail(t *testing.T) {
	if _, err := NewProvider(Config{Email: "dev@example.com"}); err == nil {
		t.Fatal("expected error for missing subject")
	}
	if _, err := NewProvider(Config{SubjectID: "dev-user"}); err == nil {
		t.Fatal("expected error for missing email")
	}
}
