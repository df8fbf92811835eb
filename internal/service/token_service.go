package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"thermostat_automation/internal/logger"
	"thermostat_automation/internal/models"
	"thermostat_automation/internal/netatmo"
	"thermostat_automation/internal/repository"

	"golang.org/x/sync/singleflight"
)

const (
	// refreshSkew is the headroom below which a stored token is refreshed.
	refreshSkew = 5 * time.Second
	// expiryMargin is subtracted from the vendor lifetime before persisting.
	expiryMargin = 60 * time.Second
)

var errSuperseded = errors.New("refresh token was rotated by a concurrent writer")

// Refresher exchanges a refresh token for a new grant.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (netatmo.Grant, error)
}

// TokenService keeps owner sessions valid. Refreshes are single-writer per owner:
// singleflight inside the process, compare-and-swap on the stored refresh token across processes.
type TokenService struct {
	repo      repository.TokenRepo
	refresher Refresher
	log       *logger.Logger
	now       func() time.Time
	group     singleflight.Group
}

func NewTokenService(repo repository.TokenRepo, refresher Refresher, log *logger.Logger) *TokenService {
	if log == nil {
		log = logger.Nop()
	}
	return &TokenService{repo: repo, refresher: refresher, log: log, now: time.Now}
}

// EnsureFresh returns t unchanged while it is usable, otherwise a refreshed and persisted token.
func (s *TokenService) EnsureFresh(ctx context.Context, t models.OwnerToken) (models.OwnerToken, error) {
	if t.UsableAt(s.now(), refreshSkew) {
		return t, nil
	}

	v, err, _ := s.group.Do(t.OwnerID, func() (any, error) {
		return s.refresh(ctx, t)
	})
	if err != nil {
		return models.OwnerToken{}, err
	}
	return v.(models.OwnerToken), nil
}

// ForOwner loads the stored token and ensures it is fresh.
func (s *TokenService) ForOwner(ctx context.Context, ownerID string) (models.OwnerToken, error) {
	t, err := s.repo.Get(ctx, ownerID)
	if err != nil {
		return models.OwnerToken{}, fmt.Errorf("load token: %w", err)
	}
	if t == nil {
		return models.OwnerToken{}, fmt.Errorf("%w: %s", ErrTokenMissing, ownerID)
	}
	return s.EnsureFresh(ctx, *t)
}

func (s *TokenService) refresh(ctx context.Context, t models.OwnerToken) (models.OwnerToken, error) {
	grant, err := s.refresher.Refresh(ctx, t.RefreshToken)
	if err != nil {
		s.log.Errorw("token_refresh_failed", "owner_id", t.OwnerID, "err", err)
		return models.OwnerToken{}, &TokenRefreshFailedError{OwnerID: t.OwnerID, Err: err}
	}

	now := s.now()
	lifetime := grant.TTL - expiryMargin
	if lifetime < 0 {
		lifetime = grant.TTL
	}
	next := models.OwnerToken{
		OwnerID:      t.OwnerID,
		AccessToken:  grant.AccessToken,
		RefreshToken: grant.RefreshToken,
		Scope:        grant.Scope,
		ExpiresAt:    now.Add(lifetime),
		UpdatedAt:    now,
	}

	swapped, err := s.repo.CompareAndSwap(ctx, t.RefreshToken, next)
	if err != nil {
		return models.OwnerToken{}, &TokenRefreshFailedError{OwnerID: t.OwnerID, Err: fmt.Errorf("persist: %w", err)}
	}
	if !swapped {
		// Another process won; its row is authoritative.
		current, err := s.repo.Get(ctx, t.OwnerID)
		if err == nil && current != nil && current.UsableAt(now, refreshSkew) {
			s.log.Infow("token_refresh_superseded", "owner_id", t.OwnerID)
			return *current, nil
		}
		return models.OwnerToken{}, &TokenRefreshFailedError{OwnerID: t.OwnerID, Err: errSuperseded}
	}

	s.log.Infow("token_refreshed", "owner_id", t.OwnerID, "expires_at", next.ExpiresAt)
	return next, nil
}
