package posts

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/creatorsclub/creators-club-server/cmd/models"
	"github.com/creatorsclub/creators-club-server/storage"
	"gorm.io/gorm"
)

// MockStore simulates the relational store for testing.
type MockStore struct {
	Posts       map[string]*models.Post
	ShouldFail  bool
	CreateCalls int
}

func NewMockStore() *MockStore {
	return &MockStore{Posts: make(map[string]*models.Post)}
}

var errMockStore = errors.New("mock: store failed")

func (m *MockStore) CreatePost(ctx context.Context, post *models.Post) error {
	m.CreateCalls++
	if m.ShouldFail {
		return errMockStore
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}
	m.Posts[post.ID] = post
	return nil
}

func (m *MockStore) GetPost(ctx context.Context, id string) (*models.Post, error) {
	if m.ShouldFail {
		return nil, errMockStore
	}
	post, ok := m.Posts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *post
	return &clone, nil
}

func (m *MockStore) ListPosts(ctx context.Context, authorID, cursorID string, n int) ([]models.Post, error) {
	if m.ShouldFail {
		return nil, errMockStore
	}

	var cursor *models.Post
	if cursorID != "" {
		found, ok := m.Posts[cursorID]
		if !ok {
			return nil, gorm.ErrRecordNotFound
		}
		cursor = found
	}

	all := make([]models.Post, 0, len(m.Posts))
	for _, post := range m.Posts {
		if authorID != "" && post.AuthorID != authorID {
			continue
		}
		if cursor != nil {
			beforeCursor := post.CreatedAt.Before(cursor.CreatedAt) ||
				(post.CreatedAt.Equal(cursor.CreatedAt) && post.ID <= cursor.ID)
			if !beforeCursor {
				continue
			}
		}
		all = append(all, *post)
	}

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})

	if len(all) > n {
		all = all[:n]
	}
	return all, nil
}

func (m *MockStore) UpdatePostContent(ctx context.Context, post *models.Post, content string) error {
	if m.ShouldFail {
		return errMockStore
	}
	stored, ok := m.Posts[post.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.Edits = append(stored.Edits, models.PostEdit{
		PostID:   stored.ID,
		Content:  stored.Content,
		EditedAt: time.Now(),
	})
	stored.Content = content
	stored.UpdatedAt = time.Now()
	return nil
}

func (m *MockStore) DeletePost(ctx context.Context, post *models.Post) error {
	if m.ShouldFail {
		return errMockStore
	}
	delete(m.Posts, post.ID)
	return nil
}

func (m *MockStore) LikePost(ctx context.Context, postID, userID string) error {
	if m.ShouldFail {
		return errMockStore
	}
	post, ok := m.Posts[postID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for _, like := range post.Likes {
		if like.UserID == userID {
			return nil
		}
	}
	post.Likes = append(post.Likes, models.PostLike{PostID: postID, UserID: userID})
	return nil
}

func (m *MockStore) UnlikePost(ctx context.Context, postID, userID string) error {
	if m.ShouldFail {
		return errMockStore
	}
	post, ok := m.Posts[postID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	kept := post.Likes[:0]
	for _, like := range post.Likes {
		if like.UserID != userID {
			kept = append(kept, like)
		}
	}
	post.Likes = kept
	return nil
}

// MockUploader simulates the object-store client.
type MockUploader struct {
	ShouldFail  bool
	DeletedKeys []string
	Tickets     int
}

func (m *MockUploader) GenerateUploadURL(ctx context.Context, ownerID, contentType string) (*storage.UploadTicket, error) {
	if m.ShouldFail {
		return nil, errors.New("mock: presign failed")
	}
	kind, err := storage.KindForContentType(contentType)
	if err != nil {
		return nil, err
	}
	m.Tickets++
	key := ownerID + "/object"
	return &storage.UploadTicket{
		URL:       "https://uploads.example.com/" + key,
		Key:       key,
		PublicURL: "https://media.example.com/" + key,
		Kind:      kind,
		ExpiresAt: time.Now().Add(storage.UploadURLTTL),
	}, nil
}

func (m *MockUploader) DeleteObject(ctx context.Context, key string) error {
	if m.ShouldFail {
		return errors.New("mock: delete failed")
	}
	m.DeletedKeys = append(m.DeletedKeys, key)
	return nil
}
