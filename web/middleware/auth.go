// Package middleware provides the gin middleware of the harmonia server,
// most importantly the bearer-token authentication middleware.
package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/harmonia-media/harmonia/database/model"
	"github.com/harmonia-media/harmonia/logger"
	"github.com/harmonia-media/harmonia/web/entity"
	"github.com/harmonia-media/harmonia/web/service"
)

const authUserKey = "harmonia/authUser"

// AuthUser is the request-scoped authorization context: the authenticated
// user's identity, the flattened permission id sets and the raw grant
// records. Built fresh on every request and discarded when it ends.
type AuthUser struct {
	Id        string    `json:"id"`
	Username  string    `json:"username"`
	IsAdmin   bool      `json:"isAdmin"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	FlatServerPermissions       []string `json:"flatServerPermissions"`
	FlatServerFolderPermissions []string `json:"flatServerFolderPermissions"`

	ServerPermissions       []model.ServerPermission       `json:"serverPermissions"`
	ServerFolderPermissions []model.ServerFolderPermission `json:"serverFolderPermissions"`

	// ServerId is the requested server id path parameter, when present.
	ServerId string `json:"serverId,omitempty"`
}

// CanAccessServer reports whether the user is granted the given server.
// Admins can access every server.
func (u *AuthUser) CanAccessServer(serverId string) bool {
	if u.IsAdmin {
		return true
	}
	for _, id := range u.FlatServerPermissions {
		if id == serverId {
			return true
		}
	}
	return false
}

// CanAccessServerFolder reports whether the user is granted the given
// server folder. Admins can access every folder.
func (u *AuthUser) CanAccessServerFolder(serverFolderId string) bool {
	if u.IsAdmin {
		return true
	}
	for _, id := range u.FlatServerFolderPermissions {
		if id == serverFolderId {
			return true
		}
	}
	return false
}

// Authenticate verifies the bearer access token, checks that the account is
// still enabled against a fresh read of the user record, and attaches the
// authorization context for downstream handlers. Token and enablement
// failures short-circuit with the uniform 401 body; unexpected store errors
// fall through to a 500.
func Authenticate(tokens *service.TokenService, users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, ok := bearerToken(c)
		if !ok {
			abortUnauthorized(c, "Invalid authorization.")
			return
		}

		claims, err := tokens.Parse(tokenStr)
		if err != nil {
			if errors.Is(err, service.ErrTokenExpired) {
				abortUnauthorized(c, "Token has expired.")
			} else {
				abortUnauthorized(c, "Invalid authorization.")
			}
			return
		}

		// Fresh read so disabling an account takes effect on the next
		// request, not at natural token expiry.
		user, err := users.FindById(claims.Id)
		if err != nil {
			var apiErr *entity.ApiError
			if errors.As(err, &apiErr) {
				abortUnauthorized(c, "Invalid authorization.")
				return
			}
			abortError(c, err)
			return
		}

		if !user.Enabled {
			abortUnauthorized(c, "Your account is not enabled.")
			return
		}

		serverPerms, err := users.GetServerPermissions(user.Id)
		if err != nil {
			abortError(c, err)
			return
		}
		folderPerms, err := users.GetServerFolderPermissions(user.Id)
		if err != nil {
			abortError(c, err)
			return
		}

		c.Set(authUserKey, &AuthUser{
			Id:                          user.Id,
			Username:                    user.Username,
			IsAdmin:                     user.IsAdmin,
			Enabled:                     user.Enabled,
			CreatedAt:                   user.CreatedAt,
			UpdatedAt:                   user.UpdatedAt,
			FlatServerPermissions:       service.FlattenServerPermissions(serverPerms),
			FlatServerFolderPermissions: service.FlattenServerFolderPermissions(folderPerms),
			ServerPermissions:           serverPerms,
			ServerFolderPermissions:     folderPerms,
			ServerId:                    c.Param("serverId"),
		})
		c.Next()
	}
}

// RequireAdmin aborts with 403 unless the authenticated user is an admin.
// Must run after Authenticate.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := GetAuthUser(c)
		if user == nil || !user.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden,
				entity.NewErrorResponse(http.StatusForbidden, "Insufficient permissions.", c.Request.URL.Path))
			return
		}
		c.Next()
	}
}

// GetAuthUser returns the authorization context attached by Authenticate,
// or nil when the request is unauthenticated.
func GetAuthUser(c *gin.Context) *AuthUser {
	value, ok := c.Get(authUserKey)
	if !ok {
		return nil
	}
	user, ok := value.(*AuthUser)
	if !ok {
		return nil
	}
	return user
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || strings.TrimSpace(token) == "" {
		return "", false
	}
	return token, true
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		entity.NewErrorResponse(http.StatusUnauthorized, message, c.Request.URL.Path))
}

func abortError(c *gin.Context, err error) {
	logger.Error("authentication middleware:", err)
	c.AbortWithStatusJSON(http.StatusInternalServerError,
		entity.NewErrorResponse(http.StatusInternalServerError, "Something went wrong.", c.Request.URL.Path))
}
