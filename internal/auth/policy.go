package auth

import (
	"time"

	apperrors "autoshop/internal/errors"
)

// Identity is the caller resolved from a bearer token.
type Identity struct {
	UserID    uint
	IsAdmin   bool
	TokenID   string
	ExpiresAt time.Time
}

// RequireSelf allows the call only when the identity owns the target.
// Both sides are decoded user IDs, never raw claim representations.
func RequireSelf(identity *Identity, ownerID uint) error {
	if identity == nil {
		return apperrors.ErrTokenMissing
	}
	if identity.UserID != ownerID {
		return apperrors.ErrForbidden
	}
	return nil
}

// RequireAdmin allows the call only when the identity carries the admin claim.
func RequireAdmin(identity *Identity) error {
	if identity == nil {
		return apperrors.ErrTokenMissing
	}
	if !identity.IsAdmin {
		return apperrors.ErrAdminRequired
	}
	return nil
}
