package models

import "time"

// OwnerToken is the vendor OAuth session of one owner.
type OwnerToken struct {
	OwnerID      string    `json:"owner_id"`
	AccessToken  string    `json:"-"`
	RefreshToken string    `json:"-"`
	Scope        string    `json:"scope"`
	ExpiresAt    time.Time `json:"expires_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UsableAt reports whether the access token can still be sent at now,
// keeping skew of headroom before ExpiresAt.
func (t OwnerToken) UsableAt(now time.Time, skew time.Duration) bool {
	return t.AccessToken != "" && now.Before(t.ExpiresAt.Add(-skew))
}
