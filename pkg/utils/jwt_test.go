package utils

import (
	"testing"
	"time"
)

func testManager() *JWTManager {
	return NewJWTManager("test-secret", time.Hour, 24*time.Hour)
}

func TestAccessTokenRoundtrip(t *testing.T) {
	m := testManager()
	caps := []string{"operate_orders", "station_view"}

	token, err := m.GenerateAccessToken(7, "mika@example.com", "staff", caps)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := m.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != 7 || claims.Email != "mika@example.com" || claims.Role != "staff" {
		t.Errorf("unexpected claims: %+v", claims)
	}
	if len(claims.Caps) != 2 || claims.Caps[0] != "operate_orders" {
		t.Errorf("unexpected caps: %v", claims.Caps)
	}
}

func TestAccessTokenWrongSecret(t *testing.T) {
	token, err := testManager().GenerateAccessToken(1, "a@example.com", "owner", nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	other := NewJWTManager("different-secret", time.Hour, 24*time.Hour)
	if _, err := other.ValidateAccessToken(token); err == nil {
		t.Error("token signed with another secret should be rejected")
	}
}

func TestExpiredAccessToken(t *testing.T) {
	m := NewJWTManager("test-secret", -time.Minute, 24*time.Hour)
	token, err := m.GenerateAccessToken(1, "a@example.com", "owner", nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := m.ValidateAccessToken(token); err == nil {
		t.Error("expired token should be rejected")
	}
}

func TestRefreshTokenRoundtrip(t *testing.T) {
	m := testManager()
	token, err := m.GenerateRefreshToken(42)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	userID, err := m.ValidateRefreshToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if userID != 42 {
		t.Errorf("userID = %d, want 42", userID)
	}
}
