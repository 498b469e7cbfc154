package token

import (
	"errors"
	"testing"
	"time"
)

func TestSignAndVerify(t *testing.T) {
	codec := NewCodec("test-secret", time.Hour)

	signed, err := codec.Sign("user-1", "admin", "org-1", "acme_academy", "")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	claims, err := codec.Verify(signed)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("UserID = %q", claims.UserID)
	}
	if claims.Role != "admin" {
		t.Errorf("Role = %q", claims.Role)
	}
	if claims.OrgID != "org-1" {
		t.Errorf("OrgID = %q", claims.OrgID)
	}
	if claims.DBName != "acme_academy" {
		t.Errorf("DBName = %q", claims.DBName)
	}
	if claims.SubOrgID != "" {
		t.Errorf("SubOrgID = %q, want empty", claims.SubOrgID)
	}
	if claims.Issuer != "coursedeck" {
		t.Errorf("Issuer = %q", claims.Issuer)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	signed, err := NewCodec("secret-a", time.Hour).Sign("user-1", "learner", "", "", "")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	if _, err := NewCodec("secret-b", time.Hour).Verify(signed); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerify_Expired(t *testing.T) {
	codec := NewCodec("test-secret", -time.Minute)
	signed, err := codec.Sign("user-1", "learner", "", "", "")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	if _, err := codec.Verify(signed); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("expected ErrExpiredToken, got %v", err)
	}
}

func TestVerify_Garbage(t *testing.T) {
	codec := NewCodec("test-secret", time.Hour)
	for _, s := range []string{"", "not-a-token", "aaa.bbb.ccc"} {
		if _, err := codec.Verify(s); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Verify(%q): expected ErrInvalidToken, got %v", s, err)
		}
	}
}
