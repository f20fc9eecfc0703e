package identity

import (
	"context"
	"errors"
)

// MockDirectory simulates the external identity directory for testing.
type MockDirectory struct {
	Profiles   map[string]*Profile
	ShouldFail bool
	ListCalls  int
	GetCalls   int
}

func NewMockDirectory() *MockDirectory {
	return &MockDirectory{Profiles: make(map[string]*Profile)}
}

// AddProfile registers a complete profile under the given ID.
func (m *MockDirectory) AddProfile(id, username string) *Profile {
	profile := &Profile{
		ID:              id,
		Username:        username,
		ProfileImageURL: "https://images.example.com/" + id + ".png",
	}
	m.Profiles[id] = profile
	return profile
}

func (m *MockDirectory) Get(ctx context.Context, userID string) (*Profile, error) {
	m.GetCalls++
	if m.ShouldFail {
		return nil, errMockDirectory
	}
	profile, ok := m.Profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return profile, nil
}

func (m *MockDirectory) List(ctx context.Context, userIDs []string) ([]*Profile, error) {
	m.ListCalls++
	if m.ShouldFail {
		return nil, errMockDirectory
	}
	var result []*Profile
	for _, id := range userIDs {
		if profile, ok := m.Profiles[id]; ok {
			result = append(result, profile)
		}
	}
	return result, nil
}

var errMockDirectory = errors.New("mock: directory failed")
