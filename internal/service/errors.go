package service

import (
	"errors"
	"fmt"
)

// Domain errors mapped to HTTP statuses by the handlers.
var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrTokenMissing       = errors.New("no vendor token stored for owner")
	ErrTokenRefreshFailed = errors.New("token refresh failed")
	ErrMappingNotFound    = errors.New("room mapping not found")
	ErrRoomUnpaired       = errors.New("room mapping has no vendor room")
	ErrOwnerRequired      = errors.New("owner_id is required")
	ErrInvalidTimeRange   = errors.New("invalid time range: From must be <= To")
	ErrInvalidEventType   = errors.New("type must be heat or stop")
)

// TokenRefreshFailedError carries the owner whose session could not be renewed.
type TokenRefreshFailedError struct {
	OwnerID string
	Err     error
}

func (e *TokenRefreshFailedError) Error() string {
	return fmt.Sprintf("token refresh failed for owner %s: %v", e.OwnerID, e.Err)
}

func (e *TokenRefreshFailedError) Unwrap() error { return e.Err }

func (e *TokenRefreshFailedError) Is(target error) bool { return target == ErrTokenRefreshFailed }
