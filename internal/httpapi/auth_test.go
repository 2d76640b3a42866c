package httpapi

import (
	"context"
	"strings"
	"testing"
	"time"

	"lankapos/internal/domain"
	"lankapos/internal/store/memory"
)

func newTestAuthManager(t *testing.T) (*AuthManager, *memory.Store) {
	t.Helper()
	repo := memory.New()
	seedUser(t, repo, "admin", "admin-secret-1", "admin")
	return NewAuthManager("0123456789abcdef0123456789abcdef", time.Hour, repo), repo
}

func TestLoginIssuesParsableToken(t *testing.T) {
	auth, _ := newTestAuthManager(t)

	resp, err := auth.Login(context.Background(), domain.LoginRequest{
		Username: "Admin",
		Password: "admin-secret-1",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if resp.Role != "admin" {
		t.Fatalf("expected admin role, got %s", resp.Role)
	}

	actor, err := auth.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if actor.Username != "admin" || actor.Role != "admin" {
		t.Fatalf("unexpected actor: %+v", actor)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	auth, _ := newTestAuthManager(t)

	if _, err := auth.Login(context.Background(), domain.LoginRequest{Username: "admin", Password: "wrong"}); err == nil {
		t.Fatalf("expected login to fail with wrong password")
	}
	if _, err := auth.Login(context.Background(), domain.LoginRequest{Username: "ghost", Password: "admin-secret-1"}); err == nil {
		t.Fatalf("expected login to fail for unknown user")
	}
}

func TestLoginUpgradesPlainTextPassword(t *testing.T) {
	auth, repo := newTestAuthManager(t)

	if _, err := auth.Login(context.Background(), domain.LoginRequest{Username: "admin", Password: "admin-secret-1"}); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	users, err := repo.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("list users failed: %v", err)
	}
	for _, user := range users {
		if user.Username == "admin" && !isPasswordHash(user.Password) {
			t.Fatalf("expected stored password to be hashed, got %q", user.Password)
		}
	}
}

func TestParseTokenRejectsTampering(t *testing.T) {
	auth, _ := newTestAuthManager(t)

	resp, err := auth.Login(context.Background(), domain.LoginRequest{Username: "admin", Password: "admin-secret-1"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	parts := strings.Split(resp.AccessToken, ".")
	if len(parts) != 3 {
		t.Fatalf("expected three token segments, got %d", len(parts))
	}
	tampered := parts[0] + "." + parts[1] + ".AAAA" + parts[2][4:]
	if _, err := auth.ParseToken(tampered); err == nil {
		t.Fatalf("expected tampered token to be rejected")
	}

	other := NewAuthManager("another-secret-another-secret-ab", time.Hour, nil)
	if _, err := other.ParseToken(resp.AccessToken); err == nil {
		t.Fatalf("expected token signed with a different secret to be rejected")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	auth, _ := newTestAuthManager(t)

	token, err := auth.sign("admin", "admin", time.Now().UTC().Add(-time.Minute))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if _, err := auth.ParseToken(token); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}

func TestCreateCashierValidation(t *testing.T) {
	auth, _ := newTestAuthManager(t)

	cases := []struct {
		name string
		req  domain.CashierCreateRequest
	}{
		{"short username", domain.CashierCreateRequest{Username: "ab", Password: "secret-1"}},
		{"username with space", domain.CashierCreateRequest{Username: "two words", Password: "secret-1"}},
		{"short password", domain.CashierCreateRequest{Username: "valid", Password: "abc"}},
		{"duplicate username", domain.CashierCreateRequest{Username: "admin", Password: "secret-1"}},
	}
	for _, tc := range cases {
		if _, err := auth.CreateCashier(context.Background(), tc.req); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}

func TestCreateCashierPersistsHashedPassword(t *testing.T) {
	auth, repo := newTestAuthManager(t)

	created, err := auth.CreateCashier(context.Background(), domain.CashierCreateRequest{
		Username: "Sunil",
		Password: "sunil-secret",
	})
	if err != nil {
		t.Fatalf("create cashier failed: %v", err)
	}
	if created.Username != "sunil" || created.Role != "cashier" || !created.Active {
		t.Fatalf("unexpected cashier: %+v", created)
	}

	users, err := repo.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("list users failed: %v", err)
	}
	found := false
	for _, user := range users {
		if user.Username == "sunil" {
			found = true
			if !isPasswordHash(user.Password) {
				t.Fatalf("expected hashed password in store, got %q", user.Password)
			}
		}
	}
	if !found {
		t.Fatalf("cashier not persisted to user store")
	}

	if _, err := auth.Login(context.Background(), domain.LoginRequest{Username: "sunil", Password: "sunil-secret"}); err != nil {
		t.Fatalf("new cashier login failed: %v", err)
	}
}
