package utils

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v4"
)

type contextKey string

const UserIDKey contextKey = "userID"

// GetUserIDFromContext returns the authenticated viewer's identity-provider ID.
func GetUserIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(UserIDKey).(string)
	if !ok || userID == "" {
		return "", errors.New("user ID not found in context")
	}
	return userID, nil
}

// AuthMiddleware validates the session token minted by the identity provider
// and stores its subject (the external user ID) in the request context.
func AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := viewerIDFromHeader(r)
		if err != nil {
			WriteError(w, http.StatusUnauthorized, CodeUnauthorized, err.Error())
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		next(w, r.WithContext(ctx))
	}
}

// ViewerIDFromRequest resolves the viewer on public endpoints that behave
// differently for signed-in users (e.g. viewer_liked on the feed). Returns
// empty string when no valid token accompanies the request.
func ViewerIDFromRequest(r *http.Request) string {
	userID, err := viewerIDFromHeader(r)
	if err != nil {
		return ""
	}
	return userID
}

func viewerIDFromHeader(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("authorization header required")
	}

	tokenString := strings.Replace(authHeader, "Bearer ", "", 1)

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(os.Getenv("SECRET_KEY")), nil
	})

	if err != nil || !token.Valid {
		return "", errors.New("invalid token")
	}

	if claims.Subject == "" {
		return "", errors.New("invalid user ID in token")
	}

	return claims.Subject, nil
}
