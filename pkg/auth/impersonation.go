package auth

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dealeros/dealeros-backend/pkg/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	impersonationType     = "impersonation"
	impersonationAudience = "dealeros-impersonation"
)

// ErrInvalidImpersonation covers forged, malformed and expired markers alike.
var ErrInvalidImpersonation = errors.New("invalid impersonation marker")

// ImpersonationMarker is the decoded, signature-checked content of the cookie.
// Expiry is carried so callers can evaluate it against their own request instant.
type ImpersonationMarker struct {
	AdminUserID uuid.UUID
	DealerID    uuid.UUID
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// Expired reports whether the marker is past its fixed expiry at now.
func (m ImpersonationMarker) Expired(now time.Time) bool {
	return !now.Before(m.ExpiresAt)
}

// MintImpersonationToken signs a time-boxed marker for adminID acting as dealerID.
func MintImpersonationToken(jwtCfg config.JWTConfig, cfg config.ImpersonationConfig, now time.Time, adminID, dealerID uuid.UUID) (string, ImpersonationMarker, error) {
	if strings.TrimSpace(cfg.Secret) == "" {
		return "", ImpersonationMarker{}, fmt.Errorf("impersonation secret is required")
	}
	if cfg.TTL <= 0 {
		return "", ImpersonationMarker{}, fmt.Errorf("impersonation ttl must be positive")
	}
	if adminID == uuid.Nil || dealerID == uuid.Nil {
		return "", ImpersonationMarker{}, fmt.Errorf("admin and dealer ids are required")
	}

	marker := ImpersonationMarker{
		AdminUserID: adminID,
		DealerID:    dealerID,
		IssuedAt:    now.UTC().Truncate(time.Second),
		ExpiresAt:   now.UTC().Add(cfg.TTL).Truncate(time.Second),
	}
	claims := ImpersonationClaims{
		Type:        impersonationType,
		AdminUserID: adminID,
		DealerID:    dealerID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    jwtCfg.Issuer,
			Subject:   adminID.String(),
			Audience:  jwt.ClaimStrings{impersonationAudience},
			IssuedAt:  jwt.NewNumericDate(marker.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(marker.ExpiresAt),
			ID:        uuid.NewString(),
		},
	}

	signed, err := sign(cfg.Secret, claims)
	if err != nil {
		return "", ImpersonationMarker{}, err
	}
	return signed, marker, nil
}

// ParseImpersonationToken verifies the signature and shape of a marker.
// Expiry is not enforced here; the tenancy resolver checks it against the request clock.
func ParseImpersonationToken(jwtCfg config.JWTConfig, cfg config.ImpersonationConfig, tokenString string) (ImpersonationMarker, error) {
	if strings.TrimSpace(cfg.Secret) == "" || strings.TrimSpace(tokenString) == "" {
		return ImpersonationMarker{}, ErrInvalidImpersonation
	}

	claims := &ImpersonationClaims{}
	if err := parse(cfg.Secret, tokenString, claims, jwt.WithoutClaimsValidation()); err != nil {
		return ImpersonationMarker{}, fmt.Errorf("%w: %v", ErrInvalidImpersonation, err)
	}

	if claims.Type != impersonationType || claims.Issuer != jwtCfg.Issuer {
		return ImpersonationMarker{}, ErrInvalidImpersonation
	}
	if !hasAudience(claims.Audience, impersonationAudience) {
		return ImpersonationMarker{}, ErrInvalidImpersonation
	}
	if claims.AdminUserID == uuid.Nil || claims.DealerID == uuid.Nil || claims.ExpiresAt == nil {
		return ImpersonationMarker{}, ErrInvalidImpersonation
	}

	marker := ImpersonationMarker{
		AdminUserID: claims.AdminUserID,
		DealerID:    claims.DealerID,
		ExpiresAt:   claims.ExpiresAt.Time.UTC(),
	}
	if claims.IssuedAt != nil {
		marker.IssuedAt = claims.IssuedAt.Time.UTC()
	}
	return marker, nil
}

func hasAudience(aud jwt.ClaimStrings, want string) bool {
	return slices.Contains(aud, want)
}
