package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"thermostat_automation/internal/config"
	"thermostat_automation/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Invocation is either Sweep or SingleOwner. It is built once per request or cron tick.
type Invocation interface {
	isInvocation()
}

// Sweep is a cron-triggered pass over every owner.
type Sweep struct{}

// SingleOwner is an on-demand run restricted to one owner.
type SingleOwner struct {
	OwnerID string
}

func (Sweep) isInvocation()       {}
func (SingleOwner) isInvocation() {}

// IsCron reports whether inv is a sweep.
func IsCron(inv Invocation) bool {
	_, ok := inv.(Sweep)
	return ok
}

// ScopeOwner returns the owner id inv is restricted to, or "" for a sweep.
func ScopeOwner(inv Invocation) string {
	if so, ok := inv.(SingleOwner); ok {
		return so.OwnerID
	}
	return ""
}

// Claims defines JWT claims; Subject is the owner id.
type Claims struct {
	jwt.RegisteredClaims
}

// Authorizer turns a bearer credential into an Invocation.
type Authorizer struct {
	cronSecret     []byte
	cronSecretHash []byte
	signingKey     []byte
	roles          repository.Roles
}

func NewAuthorizer(cfg config.AuthConfig, roles repository.Roles) *Authorizer {
	return &Authorizer{
		cronSecret:     []byte(cfg.CronSecret),
		cronSecretHash: []byte(cfg.CronSecretHash),
		signingKey:     []byte(cfg.JWTSecret),
		roles:          roles,
	}
}

// Authorize checks the plain cron secret, then a user JWT, then the hashed cron secret.
// bcrypt runs only for bearers that are not shaped like a JWT.
func (a *Authorizer) Authorize(bearer string) (Invocation, error) {
	bearer = strings.TrimSpace(bearer)
	if bearer == "" {
		return nil, ErrUnauthorized
	}
	if len(a.cronSecret) > 0 && subtle.ConstantTimeCompare(a.cronSecret, []byte(bearer)) == 1 {
		return Sweep{}, nil
	}

	if strings.Count(bearer, ".") == 2 {
		owner, err := a.parseToken(bearer)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
		}
		return SingleOwner{OwnerID: owner}, nil
	}

	if len(a.cronSecretHash) > 0 && bcrypt.CompareHashAndPassword(a.cronSecretHash, []byte(bearer)) == nil {
		return Sweep{}, nil
	}
	return nil, ErrUnauthorized
}

func (a *Authorizer) parseToken(accessToken string) (string, error) {
	if len(a.signingKey) == 0 {
		return "", errors.New("user tokens are not accepted")
	}
	token, err := jwt.ParseWithClaims(accessToken, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Ensure HMAC signing is used
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.signingKey, nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}

// IssueToken signs a user token for ownerID. Used by the CLI and tests.
func (a *Authorizer) IssueToken(ownerID string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   ownerID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})
	return token.SignedString(a.signingKey)
}

// RequireAdmin lets sweeps through and checks the admin role for single owners.
func (a *Authorizer) RequireAdmin(ctx context.Context, inv Invocation) error {
	switch v := inv.(type) {
	case Sweep:
		return nil
	case SingleOwner:
		ok, err := a.roles.IsAdmin(ctx, v.OwnerID)
		if err != nil {
			return fmt.Errorf("role lookup: %w", err)
		}
		if !ok {
			return ErrForbidden
		}
		return nil
	default:
		return ErrUnauthorized
	}
}
