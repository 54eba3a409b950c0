package auth

import (
	"errors"
	"testing"
	"time"
)

func TestJWTManager(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)

	t.Run("round trip", func(t *testing.T) {
		token, err := m.Generate("Alice")
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		claims, err := m.Validate(token)
		if err != nil {
			t.Fatalf("Validate failed: %v", err)
		}
		if claims.PersonID != "Alice" || claims.Subject != "Alice" {
			t.Errorf("unexpected claims %+v", claims)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, _ := NewJWTManager("other", time.Hour).Generate("Alice")
		if _, err := m.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("expired", func(t *testing.T) {
		token, _ := NewJWTManager("test-secret", -time.Hour).Generate("Alice")
		if _, err := m.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("clock skew within leeway", func(t *testing.T) {
		minter := NewJWTManager("test-secret", time.Hour)
		minter.now = func() time.Time { return time.Now().Add(10 * time.Second) }
		token, err := minter.Generate("Alice")
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if _, err := m.Validate(token); err != nil {
			t.Errorf("token from a slightly fast clock rejected: %v", err)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := m.Validate("not-a-token"); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("empty person", func(t *testing.T) {
		if _, err := m.Generate(""); err == nil {
			t.Error("expected error for empty person ID")
		}
	})
}
