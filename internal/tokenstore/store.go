// Package tokenstore keeps short-lived QR attendance tokens. Tokens are
// ephemeral by nature: losing them on restart only forces a re-issue.
package tokenstore

import (
	"context"
	"time"
)

// TokenInfo is what a token authorizes: one check-in against one shift.
// Shift display fields are copied at issue time.
type TokenInfo struct {
	ShiftID          int64     `json:"shift_id"`
	ShiftName        string    `json:"shift_name"`
	StartTime        string    `json:"start_time"`
	EndTime          string    `json:"end_time"`
	ToleranceMinutes int       `json:"tolerance_minutes"`
	IssuedAt         time.Time `json:"issued_at"`
	ExpiresAt        time.Time `json:"expires_at"`
}

// Expired reports whether the token is past its expiry at now.
func (t TokenInfo) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// Store is the token map shared by concurrent issue and scan requests.
//
// Take removes a token and holds it for the caller, so at most one scan works
// on a given token at a time. A second Take of a held token waits until the
// holder either hands it back with Restore or drops it with Release, and only
// then reports whether the token still exists.
type Store interface {
	Save(ctx context.Context, token string, info TokenInfo) error
	Take(ctx context.Context, token string) (TokenInfo, bool, error)
	Restore(ctx context.Context, token string, info TokenInfo, now time.Time) error
	Release(ctx context.Context, token string) error
	PurgeExpired(ctx context.Context, now time.Time) (int, error)
	Len(ctx context.Context) (int, error)
}
