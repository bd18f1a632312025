package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"studyshelf/internal/pkg/jwtutil"
	"studyshelf/internal/transport/http/response"
)

const (
	ContextUserIDKey   = "user_id"
	ContextUsernameKey = "username"
)

var (
	errMissingHeader = errors.New("missing authorization header")
	errBadScheme     = errors.New("invalid authorization scheme")
)

// AuthJWT accepts "Authorization: Bearer <token>" signed with secret and
// stores the caller's id and username on the context.
func AuthJWT(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			unauthorized(c, err.Error())
			return
		}

		claims, err := jwtutil.ParseToken(secret, token)
		if err != nil {
			unauthorized(c, "invalid or expired token")
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextUsernameKey, claims.Username)
		c.Next()
	}
}

// UserID reads the id AuthJWT stored on the context.
func UserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get(ContextUserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

func bearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errMissingHeader
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", errBadScheme
	}
	return strings.TrimSpace(token), nil
}

func unauthorized(c *gin.Context, message string) {
	response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, message)
	c.Abort()
}
