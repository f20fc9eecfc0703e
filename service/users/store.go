package users

import (
	"context"

	"github.com/creatorsclub/creators-club-server/cmd/models"
	"gorm.io/gorm"
)

// Store abstracts the follow-graph rows so the handlers can be tested without
// a database.
type Store interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	// CreateUser inserts the row if absent; calling it again is a no-op.
	CreateUser(ctx context.Context, id string) (*models.User, error)
	UserIDsIn(ctx context.Context, ids []string) ([]string, error)
	// Follow connects follower into followed's follower set; re-following is
	// a no-op. Unknown followed user surfaces gorm.ErrRecordNotFound.
	Follow(ctx context.Context, followerID, followedID string) error
	Unfollow(ctx context.Context, followerID, followedID string) error
	IsFollowing(ctx context.Context, followerID, followedID string) (bool, error)
	FollowerIDs(ctx context.Context, userID string) ([]string, error)
	FollowingIDs(ctx context.Context, userID string) ([]string, error)
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *GormStore) CreateUser(ctx context.Context, id string) (*models.User, error) {
	user := models.User{ID: id}
	if err := s.db.WithContext(ctx).Where("id = ?", id).FirstOrCreate(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *GormStore) UserIDsIn(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []string
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id IN ?", ids).Pluck("id", &found).Error
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (s *GormStore) Follow(ctx context.Context, followerID, followedID string) error {
	if err := s.db.WithContext(ctx).First(&models.User{}, "id = ?", followedID).Error; err != nil {
		return err
	}
	follow := models.Follow{FollowerID: followerID, FollowedID: followedID}
	return s.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		FirstOrCreate(&follow).Error
}

func (s *GormStore) Unfollow(ctx context.Context, followerID, followedID string) error {
	if err := s.db.WithContext(ctx).First(&models.User{}, "id = ?", followedID).Error; err != nil {
		return err
	}
	return s.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Delete(&models.Follow{}).Error
}

func (s *GormStore) IsFollowing(ctx context.Context, followerID, followedID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Count(&count).Error
	return count > 0, err
}

func (s *GormStore) FollowerIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("followed_id = ?", userID).
		Order("created_at ASC").
		Pluck("follower_id", &ids).Error
	return ids, err
}

func (s *GormStore) FollowingIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Order("created_at ASC").
		Pluck("followed_id", &ids).Error
	return ids, err
}
