package users

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/creatorsclub/creators-club-server/cmd/utils"
	"github.com/creatorsclub/creators-club-server/identity"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Handler struct {
	store     Store
	directory identity.Directory
}

func NewHandler(store Store, directory identity.Directory) *Handler {
	return &Handler{store: store, directory: directory}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/newuser", h.HandleNewUser).Methods("GET")
	router.HandleFunc("/users", utils.AuthMiddleware(h.CreateUser)).Methods("POST")
	router.HandleFunc("/users", h.GetUsers).Methods("GET")
	router.HandleFunc("/users/{id}", h.GetUser).Methods("GET")
	router.HandleFunc("/users/{id}/follow", utils.AuthMiddleware(h.FollowUser)).Methods("POST")
	router.HandleFunc("/users/{id}/unfollow", utils.AuthMiddleware(h.UnfollowUser)).Methods("POST")
	router.HandleFunc("/users/{id}/following-status", utils.AuthMiddleware(h.IsFollowing)).Methods("GET")
	router.HandleFunc("/users/{id}/followers", h.GetFollowers).Methods("GET")
	router.HandleFunc("/users/{id}/following", h.GetFollowing).Methods("GET")
}

// UserSummary is the externally-enriched view of a graph neighbour.
type UserSummary struct {
	ID              string `json:"id"`
	Username        string `json:"username"`
	FirstName       string `json:"first_name,omitempty"`
	LastName        string `json:"last_name,omitempty"`
	ProfileImageURL string `json:"profile_image_url"`
	IsSelf          bool   `json:"is_self"`
}

// HandleNewUser provisions the local row on a user's first authenticated
// visit: 401 when unauthenticated, 304 when the row already exists, 200 once
// created. Always redirects to /.
func (h *Handler) HandleNewUser(w http.ResponseWriter, r *http.Request) {
	viewerID := utils.ViewerIDFromRequest(r)
	if viewerID == "" {
		http.Redirect(w, r, "/", http.StatusUnauthorized)
		return
	}

	_, err := h.store.GetUser(r.Context(), viewerID)
	if err == nil {
		http.Redirect(w, r, "/", http.StatusNotModified)
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.WriteError(w, http.StatusInternalServerError, utils.CodeInternal, "Error looking up user")
		return
	}

	if _, err := h.store.CreateUser(r.Context(), viewerID); err != nil {
		log.Printf("Error provisioning user %s: %v", viewerID, err)
		utils.WriteError(w, http.StatusInternalServerError, utils.CodeInternal, "Error creating user")
		return
	}

	http.Redirect(w, r, "/", http.StatusOK)
}

// CreateUser lazily inserts the viewer's row. Safe to call repeatedly.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	viewerID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		utils.WriteError(w, http.StatusUnauthorized, utils.CodeUnauthorized, "Unauthorized")
		return
	}

	user, err := h.store.CreateUser(r.Context(), viewerID)
	if err != nil {
		log.Printf("Error creating user %s: %v", viewerID, err)
		utils.WriteError(w, http.StatusInternalServerError, utils.CodeInternal, "Error creating user")
		return
	}

	utils.WriteJSON(w, http.StatusCreated, user)
}

// GetUser joins the directory profile onto the local row.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID := vars["id"]

	profile, err := h.directory.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			utils.WriteError(w, http.StatusNotFound, utils.CodeNotFound,
				fmt.Sprintf("User of ID %s does not exist", userID))
			return
		}
		log.Printf("Error resolving user %s: %v", userID, err)
		utils.WriteError(w, http.StatusInternalServerError, utils.CodeInternal, "Error resolving user")
		return
	}
	if profile.Username == "" {
		utils.WriteError(w, http.StatusNotFound, utils.CodeNotFound,
			fmt.Sprintf("User of ID %s does not exist", userID))
		return
	}

	user, err := h.store.GetUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteError(w, http.StatusNotFound, utils.CodeNotFound,
				fmt.Sprintf("User of ID %s does not exist", userID))
			return
		}
		utils.WriteError(w, http.StatusInternalServerError, utils.CodeInternal, "Error retrieving user")
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"id":                user.ID,
		"created_at":        user.CreatedAt,
		"username":          profile.Username,
		"first_name":        profile.FirstName,
		"last_name":         profile.LastName,
		"profile_image_url": profile.ProfileImageURL,
	})
}

// GetUsers resolves a batch of IDs through the directory and returns the ones
// that also have a local row.
func (h *Handler) GetUsers(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("ids")
	if raw == "" {
		utils.WriteJSON(w, http.StatusOK, []UserSummary{})
		return
	}
	ids := strings.Split(raw, ",")

	profiles, err := h.directory.List(r.Context(), ids)
	if err != nil {
		log.Printf("Error resolving users: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, utils.CodeInternal, "Error resolving users")
		return
	}

	resolved := make([]string, 0, len(profiles))
	for _, profile := range profiles {
		resolved = append(resolved, profile.ID)
	}
	localIDs, err := h.store.UserIDsIn(r.Context(), resolved)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, utils.CodeInternal, "Error retrieving users")
		return
	}
	local := make(map[string]bool, len(localIDs))
	for _, id := range localIDs {
		local[id] = true
	}

	viewerID := utils.ViewerIDFromRequest(r)
	summaries := make([]UserSummary, 0, len(profiles))
	for _, profile := range profiles {
		if !local[profile.ID] {
			continue
		}
		summaries = append(summaries, summaryFrom(profile, viewerID))
	}

	utils.WriteJSON(w, http.StatusOK, summaries)
}

// FollowUser connects the viewer into the target's follower set.
func (h *Handler) FollowUser(w http.ResponseWriter, r *http.Request) {
	h.mutateFollow(w, r, true)
}

// UnfollowUser disconnects the viewer from the target's follower set.
func (h *Handler) UnfollowUser(w http.ResponseWriter, r *http.Request) {
	h.mutateFollow(w, r, false)
}

func (h *Handler) mutateFollow(w http.ResponseWriter, r *http.Request, follow bool) {
	viewerID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		utils.WriteError(w, http.StatusUnauthorized, utils.CodeUnauthorized, "Unauthorized")
		return
	}

	vars := mux.Vars(r)
	targetID := vars["id"]

	if targetID == viewerID {
		utils.WriteError(w, http.StatusBadRequest, utils.CodeBadRequest, "Cannot follow yourself")
		return
	}

	if follow {
		err = h.store.Follow(r.Context(), viewerID, targetID)
	} else {
		err = h.store.Unfollow(r.Context(), viewerID, targetID)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteError(w, http.StatusNotFound, utils.CodeNotFound, "User not found")
			return
		}
		log.Printf("Error updating follow %s -> %s: %v", viewerID, targetID, err)
		utils.WriteError(w, http.StatusInternalServerError, utils.CodeInternal, "Error updating follow")
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]bool{"following": follow})
}

// IsFollowing reports whether the viewer follows the queried user.
func (h *Handler) IsFollowing(w http.ResponseWriter, r *http.Request) {
	viewerID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		utils.WriteError(w, http.StatusUnauthorized, utils.CodeUnauthorized, "Unauthorized")
		return
	}

	vars := mux.Vars(r)
	targetID := vars["id"]

	if _, err := h.store.GetUser(r.Context(), targetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteError(w, http.StatusNotFound, utils.CodeNotFound, "User not found")
			return
		}
		utils.WriteError(w, http.StatusInternalServerError, utils.CodeInternal, "Error retrieving user")
		return
	}

	following, err := h.store.IsFollowing(r.Context(), viewerID, targetID)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, utils.CodeInternal, "Error checking follow status")
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]bool{"is_following": following})
}

// GetFollowers lists the queried user's followers as enriched summaries.
func (h *Handler) GetFollowers(w http.ResponseWriter, r *http.Request) {
	h.listGraph(w, r, h.store.FollowerIDs)
}

// GetFollowing lists the users the queried user follows.
func (h *Handler) GetFollowing(w http.ResponseWriter, r *http.Request) {
	h.listGraph(w, r, h.store.FollowingIDs)
}

func (h *Handler) listGraph(w http.ResponseWriter, r *http.Request, edges func(context.Context, string) ([]string, error)) {
	vars := mux.Vars(r)
	userID := vars["id"]

	if _, err := h.store.GetUser(r.Context(), userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteError(w, http.StatusNotFound, utils.CodeNotFound, "User not found")
			return
		}
		utils.WriteError(w, http.StatusInternalServerError, utils.CodeInternal, "Error retrieving user")
		return
	}

	ids, err := edges(r.Context(), userID)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, utils.CodeInternal, "Error retrieving follow graph")
		return
	}
	if len(ids) == 0 {
		utils.WriteJSON(w, http.StatusOK, []UserSummary{})
		return
	}

	profiles, err := h.directory.List(r.Context(), ids)
	if err != nil {
		log.Printf("Error resolving graph users: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, utils.CodeInternal, "Error resolving users")
		return
	}

	viewerID := utils.ViewerIDFromRequest(r)
	summaries := make([]UserSummary, 0, len(profiles))
	for _, profile := range profiles {
		if profile.Username == "" {
			utils.WriteError(w, http.StatusInternalServerError, utils.CodeInternal,
				fmt.Sprintf("User of ID %s does not have a username", profile.ID))
			return
		}
		summaries = append(summaries, summaryFrom(profile, viewerID))
	}

	utils.WriteJSON(w, http.StatusOK, summaries)
}

func summaryFrom(profile *identity.Profile, viewerID string) UserSummary {
	return UserSummary{
		ID:              profile.ID,
		Username:        profile.Username,
		FirstName:       profile.FirstName,
		LastName:        profile.LastName,
		ProfileImageURL: profile.ProfileImageURL,
		IsSelf:          viewerID != "" && profile.ID == viewerID,
	}
}
