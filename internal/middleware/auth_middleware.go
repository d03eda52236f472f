package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/virginiacakes/storefront-backend/internal/app/model"
	"github.com/virginiacakes/storefront-backend/internal/app/repository"
	"github.com/virginiacakes/storefront-backend/internal/errors"
	"github.com/virginiacakes/storefront-backend/pkg/redis"
	"github.com/virginiacakes/storefront-backend/pkg/util"
)

// Context keys for user information
const (
	UserIDKey      = "user_id"
	UserEmailKey   = "user_email"
	UserRoleKey    = "user_role"
	AccessTokenKey = "access_token"
)

type AuthMiddleware struct {
	jwtSecret string
	tokens    redis.Store
	admins    repository.AdminRepository
}

// NewAuthMiddleware builds the auth middleware. tokens may be nil when redis is disabled.
func NewAuthMiddleware(jwtSecret string, tokens redis.Store, admins repository.AdminRepository) *AuthMiddleware {
	if tokens == nil {
		tokens = redis.NoopStore{}
	}
	return &AuthMiddleware{
		jwtSecret: jwtSecret,
		tokens:    tokens,
		admins:    admins,
	}
}

// bearerToken reads "Authorization: Bearer <token>"
func bearerToken(c *gin.Context) (token string, malformed bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", true
	}
	return strings.TrimSpace(parts[1]), false
}

func (m *AuthMiddleware) verify(c *gin.Context, token string) (*util.Claims, error) {
	claims, err := util.ValidateToken(token, m.jwtSecret)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != util.TokenTypeAccess {
		return nil, util.ErrInvalidToken
	}
	return claims, nil
}

func setUser(c *gin.Context, claims *util.Claims, token string) {
	c.Set(UserIDKey, claims.UserID)
	c.Set(UserEmailKey, claims.Email)
	c.Set(UserRoleKey, model.UserRole(claims.Role))
	c.Set(AccessTokenKey, token)
}

// WebSocketToken copies ?token= into the Authorization header during a
// websocket handshake. Mount it before Authenticate on the upgrade route only.
func WebSocketToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" && websocket.IsWebSocketUpgrade(c.Request) {
			if token := c.Query("token"); token != "" {
				c.Request.Header.Set("Authorization", "Bearer "+token)
			}
		}
		c.Next()
	}
}

// Authenticate validates the access token (required)
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		token, malformed := bearerToken(c)
		if malformed {
			log.Warn("Invalid authorization header format", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "Invalid authorization header")
			c.Abort()
			return
		}
		if token == "" {
			log.Warn("Missing authorization header", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthMissingToken, "Missing bearer token")
			c.Abort()
			return
		}

		claims, err := m.verify(c, token)
		if err != nil {
			log.Warn("Token validation failed", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			if err == util.ErrExpiredToken {
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenExpired, "Token expired")
			} else {
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "Invalid token")
			}
			c.Abort()
			return
		}

		revoked, err := m.tokens.IsTokenBlacklisted(c.Request.Context(), token)
		if err != nil {
			// redis outage must not lock every customer out
			log.Warn("Token blacklist lookup failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
		if revoked {
			log.Warn("Revoked token used", map[string]interface{}{
				"user_id": claims.UserID,
				"path":    c.Request.URL.Path,
			})
			errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenRevoked, "Token revoked")
			c.Abort()
			return
		}

		setUser(c, claims, token)

		log.Debug("User authenticated successfully", map[string]interface{}{
			"user_id": claims.UserID,
			"email":   claims.Email,
		})

		c.Next()
	}
}

// OptionalAuthenticate sets user info when a valid token is present and continues as guest otherwise
func (m *AuthMiddleware) OptionalAuthenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		token, malformed := bearerToken(c)
		if malformed || token == "" {
			c.Next()
			return
		}

		claims, err := m.verify(c, token)
		if err != nil {
			log.Debug("Token validation failed - continuing as guest", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			c.Next()
			return
		}

		if revoked, _ := m.tokens.IsTokenBlacklisted(c.Request.Context(), token); revoked {
			c.Next()
			return
		}

		setUser(c, claims, token)
		c.Next()
	}
}

// RequireAdmin allows only users on the admin allow-list. Must run after Authenticate.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		userID, ok := GetUserID(c)
		if !ok {
			errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthMissingToken, "Missing bearer token")
			c.Abort()
			return
		}

		isAdmin, err := m.admins.IsAdmin(userID)
		if err != nil {
			log.Error("Admin lookup failed", err, map[string]interface{}{
				"user_id": userID,
			})
			errors.InternalError(c, err.Error())
			c.Abort()
			return
		}

		if !isAdmin {
			log.Warn("Non-admin attempted admin route", map[string]interface{}{
				"user_id": userID,
				"path":    c.Request.URL.Path,
			})
			errors.RespondWithError(c, http.StatusForbidden, errors.AuthzAdminOnly, "Forbidden")
			c.Abort()
			return
		}

		c.Next()
	}
}

// IsAdmin reports whether the authenticated user is on the allow-list. Used by routes that are
// open to everyone but reveal more to admins.
func (m *AuthMiddleware) IsAdmin(c *gin.Context) bool {
	userID, ok := GetUserID(c)
	if !ok {
		return false
	}
	isAdmin, err := m.admins.IsAdmin(userID)
	return err == nil && isAdmin
}

// GetUserID extracts user ID from context
func GetUserID(c *gin.Context) (uint, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := userID.(uint)
	return id, ok
}

// GetUserEmail extracts user email from context
func GetUserEmail(c *gin.Context) (string, bool) {
	email, exists := c.Get(UserEmailKey)
	if !exists {
		return "", false
	}
	s, ok := email.(string)
	return s, ok
}

// GetUserRole extracts user role from context
func GetUserRole(c *gin.Context) (model.UserRole, bool) {
	role, exists := c.Get(UserRoleKey)
	if !exists {
		return "", false
	}
	r, ok := role.(model.UserRole)
	return r, ok
}

// GetAccessToken returns the raw bearer token of the request
func GetAccessToken(c *gin.Context) string {
	return c.GetString(AccessTokenKey)
}
