package auth

import (
	"testing"
	"time"

	"github.com/bitesofsouth/ordering-backend/pkg/config"
	"github.com/bitesofsouth/ordering-backend/pkg/enums"
)

var testCfg = config.JWTConfig{Secret: "test-secret", Issuer: "bitesofsouth"}

func TestIssueAndParseRoundTrip(t *testing.T) {
	t.Parallel()

	raw, err := IssueAccessToken(testCfg, "user-1", enums.RoleStaff, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := ParseAccessToken(testCfg, raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Fatalf("user id = %q", claims.UserID)
	}
	if claims.Role != enums.RoleStaff {
		t.Fatalf("role = %q", claims.Role)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	raw, err := IssueAccessToken(config.JWTConfig{Secret: "other", Issuer: "bitesofsouth"}, "user-1", enums.RoleCustomer, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := ParseAccessToken(testCfg, raw); err == nil {
		t.Fatalf("expected signature error")
	}
}

func TestParseRejectsExpired(t *testing.T) {
	t.Parallel()

	raw, err := IssueAccessToken(testCfg, "user-1", enums.RoleCustomer, -time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := ParseAccessToken(testCfg, raw); err == nil {
		t.Fatalf("expected expiry error")
	}
}

func TestParseDefaultsRole(t *testing.T) {
	t.Parallel()

	raw, err := IssueAccessToken(testCfg, "user-1", "", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := ParseAccessToken(testCfg, raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Role != enums.RoleCustomer {
		t.Fatalf("role = %q, want customer default", claims.Role)
	}
}
