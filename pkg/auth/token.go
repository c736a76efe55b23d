package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ezoostore/storefront-backend/pkg/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// clockSkew is tolerated on exp/iat so a storefront replica with a slightly
// fast clock does not reject fresh tokens.
const clockSkew = 30 * time.Second

var signingMethod = jwt.SigningMethodHS256

var errSubjectMismatch = errors.New("token subject does not match user id")

// MintAccessToken signs an HS256 access token for payload. A blank JTI gets a
// fresh uuid; the JTI is the key of the redis access session.
func MintAccessToken(cfg config.JWTConfig, now time.Time, payload AccessTokenPayload) (string, error) {
	if err := checkSigningConfig(cfg); err != nil {
		return "", err
	}
	if cfg.ExpirationMinutes <= 0 {
		return "", fmt.Errorf("jwt expiration minutes must be positive")
	}
	if err := payload.validate(); err != nil {
		return "", err
	}

	jti := strings.TrimSpace(payload.JTI)
	if jti == "" {
		jti = uuid.NewString()
	}

	claims := AccessTokenClaims{
		UserID:   payload.UserID,
		Role:     payload.Role,
		DeviceID: payload.DeviceID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Subject:   payload.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.AccessTokenTTL())),
			ID:        jti,
		},
	}
	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("signing jwt: %w", err)
	}
	return signed, nil
}

// ParseAccessToken verifies signature, issuer and expiry.
func ParseAccessToken(cfg config.JWTConfig, tokenString string) (*AccessTokenClaims, error) {
	return parse(cfg, tokenString, jwt.WithLeeway(clockSkew), jwt.WithExpirationRequired())
}

// ParseAccessTokenAllowExpired verifies the signature and issuer only. Refresh
// uses it to find the access session behind an expired token.
func ParseAccessTokenAllowExpired(cfg config.JWTConfig, tokenString string) (*AccessTokenClaims, error) {
	return parse(cfg, tokenString, jwt.WithoutClaimsValidation())
}

func parse(cfg config.JWTConfig, tokenString string, opts ...jwt.ParserOption) (*AccessTokenClaims, error) {
	if err := checkSigningConfig(cfg); err != nil {
		return nil, err
	}

	opts = append(opts, jwt.WithIssuer(cfg.Issuer), jwt.WithValidMethods([]string{signingMethod.Alg()}))
	claims := &AccessTokenClaims{}
	_, err := jwt.NewParser(opts...).ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return []byte(cfg.Secret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims.Subject != "" && claims.Subject != claims.UserID {
		return nil, errSubjectMismatch
	}
	return claims, nil
}

func checkSigningConfig(cfg config.JWTConfig) error {
	switch {
	case cfg.Secret == "":
		return fmt.Errorf("jwt secret is required")
	case cfg.Issuer == "":
		return fmt.Errorf("jwt issuer is required")
	}
	return nil
}
