package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/ezoostore/storefront-backend/pkg/config"
	"github.com/ezoostore/storefront-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "secret",
		Issuer:            "ezoo",
		ExpirationMinutes: 7 * 24 * 60,
	}
}

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now().UTC()
	userID := uuid.NewString()

	token, err := MintAccessToken(cfg, now, AccessTokenPayload{
		UserID:   userID,
		Role:     enums.UserRoleAdmin,
		DeviceID: "device-1",
		JTI:      "jti-1",
	})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != userID || claims.Subject != userID {
		t.Fatalf("expected user_id %s, got %s", userID, claims.UserID)
	}
	if claims.Role != enums.UserRoleAdmin {
		t.Fatalf("unexpected role %s", claims.Role)
	}
	if claims.DeviceID != "device-1" {
		t.Fatalf("unexpected device %q", claims.DeviceID)
	}
	if claims.ID != "jti-1" {
		t.Fatalf("expected jti to be preserved, got %q", claims.ID)
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("unexpected issuer %q", claims.Issuer)
	}
	if got := claims.ExpiresAt.Time.Sub(claims.IssuedAt.Time); got != 7*24*time.Hour {
		t.Fatalf("expected seven day token, got %v", got)
	}
}

func TestMintGeneratesJTIWhenMissing(t *testing.T) {
	token, err := MintAccessToken(testJWTConfig(), time.Now(), AccessTokenPayload{UserID: "u", Role: enums.UserRoleUser})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	claims, err := ParseAccessToken(testJWTConfig(), token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.ID == "" {
		t.Fatalf("expected generated jti")
	}
}

func TestMintRejectsInvalidPayload(t *testing.T) {
	cfg := testJWTConfig()
	if _, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{UserID: "u", Role: "owner"}); err == nil {
		t.Fatalf("expected invalid role to fail")
	}
	if _, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{Role: enums.UserRoleUser}); err == nil {
		t.Fatalf("expected missing user to fail")
	}
	cfg.Secret = ""
	if _, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{UserID: "u", Role: enums.UserRoleUser}); err == nil {
		t.Fatalf("expected missing secret to fail")
	}
}

func TestParseRejectsTamperedAndExpiredTokens(t *testing.T) {
	cfg := testJWTConfig()
	cfg.ExpirationMinutes = 1
	past := time.Now().Add(-time.Hour)

	token, err := MintAccessToken(cfg, past, AccessTokenPayload{UserID: "u", Role: enums.UserRoleUser, JTI: "old"})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := ParseAccessToken(cfg, token); err == nil {
		t.Fatalf("expected expired token to fail")
	}
	claims, err := ParseAccessTokenAllowExpired(cfg, token)
	if err != nil {
		t.Fatalf("allow expired parse: %v", err)
	}
	if claims.ID != "old" {
		t.Fatalf("expected jti from expired token, got %q", claims.ID)
	}

	other := cfg
	other.Secret = "different"
	if _, err := ParseAccessTokenAllowExpired(other, token); err == nil {
		t.Fatalf("expected signature mismatch to fail")
	}

	parts := strings.Split(token, ".")
	if _, err := ParseAccessTokenAllowExpired(cfg, parts[0]+"."+parts[1]+".bogus"); err == nil {
		t.Fatalf("expected tampered signature to fail")
	}
}

func TestParseRejectsSubjectMismatch(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now()
	claims := AccessTokenClaims{
		UserID: "victim",
		Role:   enums.UserRoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Subject:   "attacker",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
			ID:        "jti",
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseAccessToken(cfg, token); err == nil {
		t.Fatalf("expected mismatched subject to fail")
	}
}

func TestParseToleratesSmallClockSkew(t *testing.T) {
	cfg := testJWTConfig()
	cfg.ExpirationMinutes = 1
	token, err := MintAccessToken(cfg, time.Now().Add(-time.Minute-10*time.Second), AccessTokenPayload{UserID: "u", Role: enums.UserRoleUser})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := ParseAccessToken(cfg, token); err != nil {
		t.Fatalf("expected token inside skew window to parse, got %v", err)
	}
}
