// Package auth signs and verifies the two JWTs the API issues: short-lived
// access tokens and the admin impersonation marker. Both use HS256 with
// separate secrets.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dealeros/dealeros-backend/pkg/config"
	"github.com/dealeros/dealeros-backend/pkg/enums"
)

var (
	signingMethod = jwt.SigningMethodHS256

	ErrInvalidAccessToken = errors.New("invalid access token")
	errSecretRequired     = errors.New("jwt secret is required")
)

// AccessTokenPayload is what callers supply when minting.
type AccessTokenPayload struct {
	UserID         uuid.UUID
	ActiveDealerID *uuid.UUID
	Role           enums.MemberRole
	JTI            string
}

func (p AccessTokenPayload) validate() error {
	switch {
	case p.UserID == uuid.Nil:
		return errors.New("user id is required")
	case p.ActiveDealerID != nil && !p.Role.IsValid():
		return fmt.Errorf("invalid member role %q", p.Role)
	case p.ActiveDealerID == nil && p.Role != "":
		// A user with no dealership yet carries neither hint.
		return fmt.Errorf("role %q requires an active dealer", p.Role)
	}
	return nil
}

// AccessTokenClaims is the signed body of an access token. The dealer and
// role are hints: tenancy is re-resolved from the database on each request.
type AccessTokenClaims struct {
	UserID         uuid.UUID        `json:"user_id"`
	ActiveDealerID *uuid.UUID       `json:"active_dealer_id,omitempty"`
	Role           enums.MemberRole `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// ImpersonationClaims is the signed body of the impersonation cookie.
type ImpersonationClaims struct {
	Type        string    `json:"typ"`
	AdminUserID uuid.UUID `json:"admin_user_id"`
	DealerID    uuid.UUID `json:"dealer_id"`
	jwt.RegisteredClaims
}

func MintAccessToken(cfg config.JWTConfig, now time.Time, payload AccessTokenPayload) (string, error) {
	switch {
	case cfg.Secret == "":
		return "", errSecretRequired
	case cfg.Issuer == "":
		return "", errors.New("jwt issuer is required")
	case cfg.ExpirationMinutes <= 0:
		return "", errors.New("jwt expiration minutes must be positive")
	}
	if err := payload.validate(); err != nil {
		return "", err
	}

	jti := strings.TrimSpace(payload.JTI)
	if jti == "" {
		jti = uuid.NewString()
	}
	return sign(cfg.Secret, AccessTokenClaims{
		UserID:         payload.UserID,
		ActiveDealerID: payload.ActiveDealerID,
		Role:           payload.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(cfg.ExpirationMinutes) * time.Minute)),
			ID:        jti,
		},
	})
}

// ParseAccessToken verifies signature, issuer and expiry.
func ParseAccessToken(cfg config.JWTConfig, token string) (*AccessTokenClaims, error) {
	if cfg.Secret == "" {
		return nil, errSecretRequired
	}
	claims := &AccessTokenClaims{}
	if err := parse(cfg.Secret, token, claims, jwt.WithIssuer(cfg.Issuer)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAccessToken, err)
	}
	return claims, nil
}

// ParseAccessTokenAllowExpired verifies signature and issuer but not the time
// claims, so refresh and logout can still read the jti of an expired token.
func ParseAccessTokenAllowExpired(cfg config.JWTConfig, token string) (*AccessTokenClaims, error) {
	if cfg.Secret == "" {
		return nil, errSecretRequired
	}
	claims := &AccessTokenClaims{}
	if err := parse(cfg.Secret, token, claims, jwt.WithoutClaimsValidation()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAccessToken, err)
	}
	if claims.Issuer != cfg.Issuer {
		return nil, fmt.Errorf("%w: unexpected issuer %q", ErrInvalidAccessToken, claims.Issuer)
	}
	return claims, nil
}

func sign(secret string, claims jwt.Claims) (string, error) {
	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing jwt: %w", err)
	}
	return signed, nil
}

func parse(secret, token string, claims jwt.Claims, opts ...jwt.ParserOption) error {
	opts = append(opts, jwt.WithValidMethods([]string{signingMethod.Alg()}))
	_, err := jwt.NewParser(opts...).ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	return err
}
