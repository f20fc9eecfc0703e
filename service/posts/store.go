package posts

import (
	"context"
	"time"

	"github.com/creatorsclub/creators-club-server/cmd/models"
	"gorm.io/gorm"
)

// Store abstracts the relational operations the post handlers need, so the
// pagination and authorization logic can be exercised without a database.
type Store interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPost(ctx context.Context, id string) (*models.Post, error)
	// ListPosts returns up to n posts ordered created_at DESC, id DESC. When
	// cursorID is set the page starts at that post inclusively; an unknown
	// cursor surfaces gorm.ErrRecordNotFound.
	ListPosts(ctx context.Context, authorID, cursorID string, n int) ([]models.Post, error)
	// UpdatePostContent archives the post's current content into its edit
	// history and writes the new content in one transaction.
	UpdatePostContent(ctx context.Context, post *models.Post, content string) error
	DeletePost(ctx context.Context, post *models.Post) error
	LikePost(ctx context.Context, postID, userID string) error
	UnlikePost(ctx context.Context, postID, userID string) error
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) CreatePost(ctx context.Context, post *models.Post) error {
	return s.db.WithContext(ctx).Create(post).Error
}

func (s *GormStore) GetPost(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).
		Preload("Media", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Edits", func(db *gorm.DB) *gorm.DB { return db.Order("edited_at ASC") }).
		Preload("Likes").
		First(&post, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *GormStore) ListPosts(ctx context.Context, authorID, cursorID string, n int) ([]models.Post, error) {
	query := s.db.WithContext(ctx).Model(&models.Post{}).
		Preload("Media", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Edits", func(db *gorm.DB) *gorm.DB { return db.Order("edited_at ASC") }).
		Preload("Likes").
		Order("created_at DESC, id DESC").
		Limit(n)

	if authorID != "" {
		query = query.Where("author_id = ?", authorID)
	}

	if cursorID != "" {
		var cursor models.Post
		if err := s.db.WithContext(ctx).Select("id", "created_at").
			First(&cursor, "id = ?", cursorID).Error; err != nil {
			return nil, err
		}
		query = query.Where(
			"created_at < ? OR (created_at = ? AND id <= ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var result []models.Post
	if err := query.Find(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

func (s *GormStore) UpdatePostContent(ctx context.Context, post *models.Post, content string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		edit := models.PostEdit{
			PostID:   post.ID,
			Content:  post.Content,
			EditedAt: time.Now(),
		}
		if err := tx.Create(&edit).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Where("id = ?", post.ID).
			Update("content", content).Error
	})
}

func (s *GormStore) DeletePost(ctx context.Context, post *models.Post) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.PostLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.PostEdit{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.PostMedia{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, "id = ?", post.ID).Error
	})
}

func (s *GormStore) LikePost(ctx context.Context, postID, userID string) error {
	like := models.PostLike{PostID: postID, UserID: userID}
	return s.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		FirstOrCreate(&like).Error
}

func (s *GormStore) UnlikePost(ctx context.Context, postID, userID string) error {
	return s.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&models.PostLike{}).Error
}
