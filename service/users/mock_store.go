package users

import (
	"context"
	"errors"

	"github.com/creatorsclub/creators-club-server/cmd/models"
	"gorm.io/gorm"
)

// MockStore simulates the follow-graph store for testing.
type MockStore struct {
	Users      map[string]*models.User
	Follows    []models.Follow
	ShouldFail bool
}

func NewMockStore() *MockStore {
	return &MockStore{Users: make(map[string]*models.User)}
}

var errMockStore = errors.New("mock: store failed")

func (m *MockStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	if m.ShouldFail {
		return nil, errMockStore
	}
	user, ok := m.Users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (m *MockStore) CreateUser(ctx context.Context, id string) (*models.User, error) {
	if m.ShouldFail {
		return nil, errMockStore
	}
	if user, ok := m.Users[id]; ok {
		return user, nil
	}
	user := &models.User{ID: id}
	m.Users[id] = user
	return user, nil
}

func (m *MockStore) UserIDsIn(ctx context.Context, ids []string) ([]string, error) {
	if m.ShouldFail {
		return nil, errMockStore
	}
	var found []string
	for _, id := range ids {
		if _, ok := m.Users[id]; ok {
			found = append(found, id)
		}
	}
	return found, nil
}

func (m *MockStore) Follow(ctx context.Context, followerID, followedID string) error {
	if m.ShouldFail {
		return errMockStore
	}
	if _, ok := m.Users[followedID]; !ok {
		return gorm.ErrRecordNotFound
	}
	for _, follow := range m.Follows {
		if follow.FollowerID == followerID && follow.FollowedID == followedID {
			return nil
		}
	}
	m.Follows = append(m.Follows, models.Follow{FollowerID: followerID, FollowedID: followedID})
	return nil
}

func (m *MockStore) Unfollow(ctx context.Context, followerID, followedID string) error {
	if m.ShouldFail {
		return errMockStore
	}
	if _, ok := m.Users[followedID]; !ok {
		return gorm.ErrRecordNotFound
	}
	kept := m.Follows[:0]
	for _, follow := range m.Follows {
		if follow.FollowerID != followerID || follow.FollowedID != followedID {
			kept = append(kept, follow)
		}
	}
	m.Follows = kept
	return nil
}

func (m *MockStore) IsFollowing(ctx context.Context, followerID, followedID string) (bool, error) {
	if m.ShouldFail {
		return false, errMockStore
	}
	for _, follow := range m.Follows {
		if follow.FollowerID == followerID && follow.FollowedID == followedID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockStore) FollowerIDs(ctx context.Context, userID string) ([]string, error) {
	if m.ShouldFail {
		return nil, errMockStore
	}
	var ids []string
	for _, follow := range m.Follows {
		if follow.FollowedID == userID {
			ids = append(ids, follow.FollowerID)
		}
	}
	return ids, nil
}

func (m *MockStore) FollowingIDs(ctx context.Context, userID string) ([]string, error) {
	if m.ShouldFail {
		return nil, errMockStore
	}
	var ids []string
	for _, follow := range m.Follows {
		if follow.FollowerID == userID {
			ids = append(ids, follow.FollowedID)
		}
	}
	return ids, nil
}
