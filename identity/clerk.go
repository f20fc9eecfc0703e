package identity

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/clerk/clerk-sdk-go/v2/user"
)

// ClerkDirectory resolves profiles through the Clerk Backend API.
type ClerkDirectory struct {
	users *user.Client
}

// NewClerkDirectory builds a directory client from CLERK_SECRET_KEY. The
// client is constructed once at startup and passed into handlers; there is
// no process-global singleton.
func NewClerkDirectory() (*ClerkDirectory, error) {
	secretKey := os.Getenv("CLERK_SECRET_KEY")
	if secretKey == "" {
		return nil, errors.New("CLERK_SECRET_KEY is not set")
	}

	config := &clerk.ClientConfig{}
	config.Key = clerk.String(secretKey)

	return &ClerkDirectory{users: user.NewClient(config)}, nil
}

func (d *ClerkDirectory) Get(ctx context.Context, userID string) (*Profile, error) {
	u, err := d.users.Get(ctx, userID)
	if err != nil {
		var apiErr *clerk.APIErrorResponse
		if errors.As(err, &apiErr) && apiErr.Response != nil && apiErr.Response.StatusCode == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return profileFromClerk(u), nil
}

func (d *ClerkDirectory) List(ctx context.Context, userIDs []string) ([]*Profile, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	params := &user.ListParams{UserIDs: userIDs}
	params.Limit = clerk.Int64(int64(len(userIDs)))

	list, err := d.users.List(ctx, params)
	if err != nil {
		return nil, err
	}

	profiles := make([]*Profile, 0, len(list.Users))
	for _, u := range list.Users {
		profiles = append(profiles, profileFromClerk(u))
	}
	return profiles, nil
}

func profileFromClerk(u *clerk.User) *Profile {
	p := &Profile{ID: u.ID}
	if u.Username != nil {
		p.Username = *u.Username
	}
	if u.FirstName != nil {
		p.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		p.LastName = *u.LastName
	}
	if u.ImageURL != nil {
		p.ProfileImageURL = *u.ImageURL
	}
	return p
}
