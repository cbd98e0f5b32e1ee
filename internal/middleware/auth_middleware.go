package middleware

import (
	"net/http"
	"strings"

	"taskhub/internal/auth"
	"taskhub/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Context keys set by JWTAuthMiddleware.
const (
	UserIDKey = "userID"
	RoleKey   = "role"
)

type authOptions struct {
	queryToken bool
}

type AuthOption func(*authOptions)

// AllowQueryToken accepts the token as a ?token= query parameter when the
// Authorization header is absent. Browsers cannot set headers on a
// WebSocket handshake; mount it on the upgrade route only.
func AllowQueryToken() AuthOption {
	return func(o *authOptions) { o.queryToken = true }
}

// JWTAuthMiddleware rejects requests without a valid Bearer token and
// stores the caller's id and role in the context.
func JWTAuthMiddleware(secret string, opts ...AuthOption) gin.HandlerFunc {
	issuer := auth.NewTokenIssuer(secret, 0)
	var o authOptions
	for _, opt := range opts {
		opt(&o)
	}

	return func(c *gin.Context) {
		tokenStr, msg := bearerToken(c, o.queryToken)
		if msg != "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		claims, err := issuer.ParseToken(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID in token"})
			return
		}

		c.Set(UserIDKey, userID)
		c.Set(RoleKey, claims.Role)
		c.Next()
	}
}

func bearerToken(c *gin.Context, queryToken bool) (string, string) {
	header := c.GetHeader("Authorization")
	if header == "" {
		if token := c.Query("token"); queryToken && token != "" {
			return token, ""
		}
		return "", "Authorization header is required"
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", "Authorization header format must be Bearer {token}"
	}
	return parts[1], ""
}

// RequireRole lets only principals with the given role through. It must
// run after JWTAuthMiddleware.
func RequireRole(role model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if r, _ := c.Get(RoleKey); r != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}
		c.Next()
	}
}
