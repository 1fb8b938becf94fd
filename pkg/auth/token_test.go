package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/maajod/maajod-backend/pkg/config"
	"github.com/maajod/maajod-backend/pkg/enums"
)

func testConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "unit-test-secret",
		Issuer:            "maajod-test",
		ExpirationMinutes: 60,
	}
}

func testPayload() AccessTokenPayload {
	return AccessTokenPayload{
		UserID:   uuid.New(),
		Username: "casey",
		Name:     "Casey Jones",
		Role:     enums.UserRoleUser,
	}
}

func TestMintAndParseRoundtrip(t *testing.T) {
	cfg := testConfig()
	payload := testPayload()
	now := time.Now().Truncate(time.Second)

	token, err := MintAccessToken(cfg, now, payload)
	if err != nil {
		t.Fatalf("MintAccessToken: %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Fatalf("expected compact JWS, got %q", token)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.UserID != payload.UserID {
		t.Fatalf("expected user id %s, got %s", payload.UserID, claims.UserID)
	}
	if claims.Username != "casey" || claims.Name != "Casey Jones" {
		t.Fatalf("unexpected identity claims: %+v", claims)
	}
	if claims.Role != enums.UserRoleUser {
		t.Fatalf("expected user role, got %s", claims.Role)
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("expected issuer %q, got %q", cfg.Issuer, claims.Issuer)
	}
	wantExpiry := now.Add(time.Hour)
	if !claims.ExpiresAt.Time.Equal(wantExpiry) {
		t.Fatalf("expected expiry %s, got %s", wantExpiry, claims.ExpiresAt.Time)
	}
}

func TestMintRejectsIncompleteConfig(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.JWTConfig)
	}{
		{"missing secret", func(c *config.JWTConfig) { c.Secret = "" }},
		{"missing issuer", func(c *config.JWTConfig) { c.Issuer = "" }},
		{"zero expiration", func(c *config.JWTConfig) { c.ExpirationMinutes = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			tc.mutate(&cfg)
			if _, err := MintAccessToken(cfg, time.Now(), testPayload()); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestMintRejectsInvalidRole(t *testing.T) {
	payload := testPayload()
	payload.Role = enums.UserRole("root")

	if _, err := MintAccessToken(testConfig(), time.Now(), payload); err == nil {
		t.Fatal("expected error for invalid role")
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	cfg := testConfig()
	token, err := MintAccessToken(cfg, time.Now(), testPayload())
	if err != nil {
		t.Fatalf("MintAccessToken: %v", err)
	}

	other := cfg
	other.Secret = "a different secret"
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatal("expected signature validation to fail")
	}
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	cfg := testConfig()
	token, err := MintAccessToken(cfg, time.Now(), testPayload())
	if err != nil {
		t.Fatalf("MintAccessToken: %v", err)
	}

	other := cfg
	other.Issuer = "someone-else"
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatal("expected issuer validation to fail")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	cfg := testConfig()
	issued := time.Now().Add(-2 * time.Hour)
	token, err := MintAccessToken(cfg, issued, testPayload())
	if err != nil {
		t.Fatalf("MintAccessToken: %v", err)
	}

	if _, err := ParseAccessToken(cfg, token); err == nil {
		t.Fatal("expected expiry validation to fail")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := ParseAccessToken(testConfig(), "not.a.jwt"); err == nil {
		t.Fatal("expected parse failure")
	}
}
