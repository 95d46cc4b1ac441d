package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

// TestTokenRoundTrip проверяет выпуск и разбор токена доступа.
func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("secret", "finance-tracker", time.Hour)
	userID := uuid.New()

	token, expiresAt, err := issuer.Issue(userID)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	if !expiresAt.After(time.Now()) {
		t.Fatalf("expected future expiry, got %s", expiresAt)
	}

	parsed, err := issuer.Parse(token)
	if err != nil {
		t.Fatalf("failed to parse token: %v", err)
	}

	if parsed != userID {
		t.Fatalf("expected subject %s, got %s", userID, parsed)
	}
}

// TestTokenWrongSecret проверяет отказ по чужой подписи.
func TestTokenWrongSecret(t *testing.T) {
	issuer := NewTokenIssuer("secret", "finance-tracker", time.Hour)
	other := NewTokenIssuer("another-secret", "finance-tracker", time.Hour)

	token, _, err := issuer.Issue(uuid.New())
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	if _, err := other.Parse(token); err == nil {
		t.Fatal("expected foreign signature to be rejected")
	}
}

// TestTokenWrongIssuer проверяет отказ по издателю.
func TestTokenWrongIssuer(t *testing.T) {
	issuer := NewTokenIssuer("secret", "finance-tracker", time.Hour)
	other := NewTokenIssuer("secret", "another-service", time.Hour)

	token, _, err := issuer.Issue(uuid.New())
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	if _, err := other.Parse(token); err == nil {
		t.Fatal("expected foreign issuer to be rejected")
	}
}

// TestTokenExpired проверяет отказ по истекшему сроку.
func TestTokenExpired(t *testing.T) {
	issuer := NewTokenIssuer("secret", "finance-tracker", -time.Minute)

	token, _, err := issuer.Issue(uuid.New())
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	if _, err := issuer.Parse(token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

// TestTokenGarbage проверяет отказ на неразборчивой строке.
func TestTokenGarbage(t *testing.T) {
	issuer := NewTokenIssuer("secret", "finance-tracker", time.Hour)

	if _, err := issuer.Parse("not-a-jwt"); err == nil {
		t.Fatal("expected malformed token to be rejected")
	}
}

// TestPasswordHashing проверяет bcrypt-хэширование пароля.
func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret-password")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	if !VerifyPassword(hash, "s3cret-password") {
		t.Fatal("expected password to match")
	}

	if VerifyPassword(hash, "wrong-password") {
		t.Fatal("expected wrong password to be rejected")
	}
}
