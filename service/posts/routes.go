package posts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/creatorsclub/creators-club-server/cmd/models"
	"github.com/creatorsclub/creators-club-server/cmd/utils"
	"github.com/creatorsclub/creators-club-server/identity"
	"github.com/creatorsclub/creators-club-server/storage"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	MaxContentLength = 1000
	MaxMediaItems    = 3

	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Uploader mints upload tickets and removes stored objects. Satisfied by
// *storage.Client.
type Uploader interface {
	GenerateUploadURL(ctx context.Context, ownerID, contentType string) (*storage.UploadTicket, error)
	DeleteObject(ctx context.Context, key string) error
}

type Handler struct {
	store     Store
	directory identity.Directory
	uploads   Uploader
}

func NewHandler(store Store, directory identity.Directory, uploads Uploader) *Handler {
	return &Handler{store: store, directory: directory, uploads: uploads}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/posts", utils.AuthMiddleware(h.CreatePost)).Methods("POST")
	router.HandleFunc("/posts", h.GetPosts).Methods("GET")
	router.HandleFunc("/posts/media/upload-url", utils.AuthMiddleware(h.GenerateUploadURL)).Methods("POST")
	router.HandleFunc("/posts/{id}", h.GetPost).Methods("GET")
	router.HandleFunc("/posts/{id}", utils.AuthMiddleware(h.UpdatePost)).Methods("PUT")
	router.HandleFunc("/posts/{id}", utils.AuthMiddleware(h.DeletePost)).Methods("DELETE")
	router.HandleFunc("/posts/{id}/like", utils.AuthMiddleware(h.LikePost)).Methods("POST")
	router.HandleFunc("/posts/{id}/unlike", utils.AuthMiddleware(h.UnlikePost)).Methods("POST")
}

// PostAuthor is the directory data joined onto every feed post.
type PostAuthor struct {
	Username        string `json:"username"`
	ProfileImageURL string `json:"profile_image_url"`
}

type FeedPost struct {
	ID          string             `json:"id"`
	AuthorID    string             `json:"author_id"`
	Author      PostAuthor         `json:"author"`
	Content     string             `json:"content"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
	Media       []models.PostMedia `json:"media"`
	Edits       []models.PostEdit  `json:"edits"`
	LikeCount   int                `json:"like_count"`
	ViewerLiked bool               `json:"viewer_liked"`
}

type FeedPage struct {
	Posts      []FeedPost `json:"posts"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// GetPosts serves the paginated feed. The cursor is the ID of the first post
// of the requested page; limit+1 rows are fetched and the extra row, when
// present, becomes the next cursor.
func (h *Handler) GetPosts(w http.ResponseWriter, r *http.Request) {
	limit := DefaultPageSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			utils.WriteError(w, http.StatusBadRequest, utils.CodeBadRequest, "Invalid limit")
			return
		}
		limit = parsed
		if limit > MaxPageSize {
			limit = MaxPageSize
		}
	}

	authorID := r.URL.Query().Get("author")
	cursor := r.URL.Query().Get("cursor")
	viewerID := utils.ViewerIDFromRequest(r)

	rows, err := h.store.ListPosts(r.Context(), authorID, cursor, limit+1)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteError(w, http.StatusNotFound, utils.CodeNotFound, "Unknown cursor")
			return
		}
		log.Printf("Error retrieving posts: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, utils.CodeInternal, "Error retrieving posts")
		return
	}

	var nextCursor string
	if len(rows) > limit {
		nextCursor = rows[limit].ID
		rows = rows[:limit]
	}

	feedPosts, err := h.enrichPosts(r.Context(), rows, viewerID)
	if err != nil {
		log.Printf("Error enriching posts: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, utils.CodeInternal, "Error resolving post authors")
		return
	}

	utils.WriteJSON(w, http.StatusOK, FeedPage{Posts: feedPosts, NextCursor: nextCursor})
}

// enrichPosts joins directory profiles onto post rows with one batched
// lookup. Any author with an incomplete directory record fails the whole
// page; there is no partial degradation.
func (h *Handler) enrichPosts(ctx context.Context, rows []models.Post, viewerID string) ([]FeedPost, error) {
	distinct := make([]string, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for _, post := range rows {
		if !seen[post.AuthorID] {
			seen[post.AuthorID] = true
			distinct = append(distinct, post.AuthorID)
		}
	}

	profiles, err := h.directory.List(ctx, distinct)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*identity.Profile, len(profiles))
	for _, profile := range profiles {
		byID[profile.ID] = profile
	}

	feedPosts := make([]FeedPost, 0, len(rows))
	for _, post := range rows {
		profile := byID[post.AuthorID]
		if profile == nil || !profile.Complete() {
			return nil, fmt.Errorf("author %s has no usable directory record", post.AuthorID)
		}
		feedPosts = append(feedPosts, feedPostFrom(&post, profile, viewerID))
	}
	return feedPosts, nil
}

func feedPostFrom(post *models.Post, profile *identity.Profile, viewerID string) FeedPost {
	viewerLiked := false
	for _, like := range post.Likes {
		if viewerID != "" && like.UserID == viewerID {
			viewerLiked = true
			break
		}
	}

	media := post.Media
	if media == nil {
		media = []models.PostMedia{}
	}
	edits := post.Edits
	if edits == nil {
		edits = []models.PostEdit{}
	}

	return FeedPost{
		ID:       post.ID,
		AuthorID: post.AuthorID,
		Author: PostAuthor{
			Username:        profile.Username,
			ProfileImageURL: profile.ProfileImageURL,
		},
		Content:     post.Content,
		CreatedAt:   post.CreatedAt,
		UpdatedAt:   post.UpdatedAt,
		Media:       media,
		Edits:       edits,
		LikeCount:   len(post.Likes),
		ViewerLiked: viewerLiked,
	}
}

// GetPost retrieves a single post without author enrichment.
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	post, err := h.store.GetPost(r.Context(), vars["id"])
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteError(w, http.StatusNotFound, utils.CodeNotFound, "Post not found")
			return
		}
		utils.WriteError(w, http.StatusInternalServerError, utils.CodeInternal, "Error retrieving post")
		return
	}

	utils.WriteJSON(w, http.StatusOK, post)
}

type mediaInput struct {
	Key    string `json:"key"`
	URL    string `json:"url"`
	Kind   string `json:"kind"`
	Format string `json:"format"`
}

type createPostRequest struct {
	Content string       `json:"content"`
	Media   []mediaInput `json:"media"`
}

// CreatePost persists a post with pre-uploaded media descriptors. All
// validation happens before any store call.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		utils.WriteError(w, http.StatusUnauthorized, utils.CodeUnauthorized, "Unauthorized")
		return
	}

	var req createPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, utils.CodeBadRequest, "Invalid request body")
		return
	}

	if err := validateContent(req.Content); err != nil {
		utils.WriteError(w, http.StatusBadRequest, utils.CodeBadRequest, err.Error())
		return
	}
	if len(req.Media) > MaxMediaItems {
		utils.WriteError(w, http.StatusBadRequest, utils.CodeBadRequest,
			fmt.Sprintf("At most %d media items per post", MaxMediaItems))
		return
	}
	for _, m := range req.Media {
		if m.Kind != models.MediaKindImage && m.Kind != models.MediaKindVideo {
			utils.WriteError(w, http.StatusBadRequest, utils.CodeBadRequest,
				fmt.Sprintf("Unknown media kind %q", m.Kind))
			return
		}
		if m.Key == "" || m.URL == "" {
			utils.WriteError(w, http.StatusBadRequest, utils.CodeBadRequest, "Media key and url are required")
			return
		}
	}

	post := models.Post{
		ID:       uuid.New().String(),
		AuthorID: userID,
		Content:  req.Content,
	}
	for i, m := range req.Media {
		post.Media = append(post.Media, models.PostMedia{
			ID:       uuid.New().String(),
			PostID:   post.ID,
			Key:      m.Key,
			URL:      m.URL,
			Kind:     m.Kind,
			Format:   m.Format,
			Position: i,
		})
	}

	if err := h.store.CreatePost(r.Context(), &post); err != nil {
		log.Printf("Error creating post: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, utils.CodeInternal, "Error creating post")
		return
	}

	utils.WriteJSON(w, http.StatusCreated, post)
}

type updatePostRequest struct {
	Content string `json:"content"`
}

// UpdatePost edits a post's content. Only the author may edit; the prior
// content is archived into the edit history unless the content is unchanged.
// Media is immutable after creation.
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		utils.WriteError(w, http.StatusUnauthorized, utils.CodeUnauthorized, "Unauthorized")
		return
	}

	vars := mux.Vars(r)
	post, err := h.store.GetPost(r.Context(), vars["id"])
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteError(w, http.StatusNotFound, utils.CodeNotFound, "Post not found")
			return
		}
		utils.WriteError(w, http.StatusInternalServerError, utils.CodeInternal, "Error retrieving post")
		return
	}

	if post.AuthorID != userID {
		utils.WriteError(w, http.StatusForbidden, utils.CodeForbidden, "Only the author may edit this post")
		return
	}

	var req updatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, utils.CodeBadRequest, "Invalid request body")
		return
	}
	if err := validateContent(req.Content); err != nil {
		utils.WriteError(w, http.StatusBadRequest, utils.CodeBadRequest, err.Error())
		return
	}

	// Unchanged content must not grow the edit history.
	if req.Content == post.Content {
		utils.WriteJSON(w, http.StatusOK, post)
		return
	}

	if err := h.store.UpdatePostContent(r.Context(), post, req.Content); err != nil {
		log.Printf("Error updating post %s: %v", post.ID, err)
		utils.WriteError(w, http.StatusInternalServerError, utils.CodeInternal, "Error updating post")
		return
	}

	updated, err := h.store.GetPost(r.Context(), post.ID)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, utils.CodeInternal, "Error retrieving post")
		return
	}

	utils.WriteJSON(w, http.StatusOK, updated)
}

// DeletePost removes a post. Stored media objects are deleted first, then the
// rows in one transaction; the two steps are not transactionally coupled, so
// an object-store failure leaves the post intact while a row failure can
// leave dangling deletions.
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		utils.WriteError(w, http.StatusUnauthorized, utils.CodeUnauthorized, "Unauthorized")
		return
	}

	vars := mux.Vars(r)
	post, err := h.store.GetPost(r.Context(), vars["id"])
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteError(w, http.StatusNotFound, utils.CodeNotFound, "Post not found")
			return
		}
		utils.WriteError(w, http.StatusInternalServerError, utils.CodeInternal, "Error retrieving post")
		return
	}

	if post.AuthorID != userID {
		utils.WriteError(w, http.StatusForbidden, utils.CodeForbidden, "Only the author may delete this post")
		return
	}

	for _, media := range post.Media {
		if err := h.uploads.DeleteObject(r.Context(), media.Key); err != nil {
			log.Printf("Error deleting object %s: %v", media.Key, err)
			utils.WriteError(w, http.StatusInternalServerError, utils.CodeInternal, "Error deleting post media")
			return
		}
	}

	if err := h.store.DeletePost(r.Context(), post); err != nil {
		log.Printf("Error deleting post %s: %v", post.ID, err)
		utils.WriteError(w, http.StatusInternalServerError, utils.CodeInternal, "Error deleting post")
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Post deleted successfully",
	})
}

// LikePost adds the viewer to the post's liker set. Liking an already-liked
// post is a no-op.
func (h *Handler) LikePost(w http.ResponseWriter, r *http.Request) {
	h.setLike(w, r, true)
}

// UnlikePost removes the viewer from the post's liker set. Unliking a post
// that was never liked is a no-op.
func (h *Handler) UnlikePost(w http.ResponseWriter, r *http.Request) {
	h.setLike(w, r, false)
}

func (h *Handler) setLike(w http.ResponseWriter, r *http.Request, liked bool) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		utils.WriteError(w, http.StatusUnauthorized, utils.CodeUnauthorized, "Unauthorized")
		return
	}

	vars := mux.Vars(r)
	post, err := h.store.GetPost(r.Context(), vars["id"])
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteError(w, http.StatusNotFound, utils.CodeNotFound, "Post not found")
			return
		}
		utils.WriteError(w, http.StatusInternalServerError, utils.CodeInternal, "Error retrieving post")
		return
	}

	if liked {
		err = h.store.LikePost(r.Context(), post.ID, userID)
	} else {
		err = h.store.UnlikePost(r.Context(), post.ID, userID)
	}
	if err != nil {
		log.Printf("Error updating like on post %s: %v", post.ID, err)
		utils.WriteError(w, http.StatusInternalServerError, utils.CodeInternal, "Error updating like")
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]bool{"liked": liked})
}

type uploadURLRequest struct {
	ContentType string `json:"content_type"`
}

// GenerateUploadURL mints a 5-minute pre-signed PUT URL so the client can
// upload one media file directly to the object store.
func (h *Handler) GenerateUploadURL(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		utils.WriteError(w, http.StatusUnauthorized, utils.CodeUnauthorized, "Unauthorized")
		return
	}

	var req uploadURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, utils.CodeBadRequest, "Invalid request body")
		return
	}

	ticket, err := h.uploads.GenerateUploadURL(r.Context(), userID, req.ContentType)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedContentType) {
			utils.WriteError(w, http.StatusInternalServerError, utils.CodeInternal,
				fmt.Sprintf("Unsupported media type %q", req.ContentType))
			return
		}
		log.Printf("Error minting upload URL: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, utils.CodeInternal, "Error generating upload URL")
		return
	}

	utils.WriteJSON(w, http.StatusOK, ticket)
}

func validateContent(content string) error {
	length := utf8.RuneCountInString(content)
	if length < 1 {
		return errors.New("Content is required")
	}
	if length > MaxContentLength {
		return fmt.Errorf("Content exceeds %d characters", MaxContentLength)
	}
	return nil
}
