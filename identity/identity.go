// Package identity wraps the external identity directory that owns user
// profile data. The application never stores usernames or avatars locally;
// every read resolves them through a Directory.
package identity

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("identity: user not found")

// Profile is the directory's view of a user. Fields other than ID may be
// empty when the directory record is incomplete; callers decide whether an
// incomplete profile is fatal.
type Profile struct {
	ID              string
	Username        string
	FirstName       string
	LastName        string
	ProfileImageURL string
}

// Complete reports whether the profile carries the display data the feed
// requires.
func (p *Profile) Complete() bool {
	return p.Username != "" && p.ProfileImageURL != ""
}

type Directory interface {
	// Get resolves a single user. Returns ErrNotFound for unknown IDs.
	Get(ctx context.Context, userID string) (*Profile, error)
	// List resolves a batch of users in one call. Unknown IDs are simply
	// absent from the result.
	List(ctx context.Context, userIDs []string) ([]*Profile, error)
}
