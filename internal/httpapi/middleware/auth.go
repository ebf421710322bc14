package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"reviewhub/internal/httpapi/rbac"
	"reviewhub/internal/httpapi/service"
)

const actorKey = "actor"

// RequireAuth rejects requests without a valid bearer token and stores
// the resolved actor in the request context.
func RequireAuth(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := bearerClaims(c, authService)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			c.Abort()
			return
		}
		setActor(c, claims)
		c.Next()
	}
}

// OptionalAuth resolves the actor when a valid token is present and
// leaves the anonymous actor otherwise. Used on resources whose reads
// are open to anyone.
func OptionalAuth(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") != "" {
			claims, err := bearerClaims(c, authService)
			if err != nil {
				// A presented-but-broken token is an error, not anonymity.
				c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
				c.Abort()
				return
			}
			setActor(c, claims)
		}
		c.Next()
	}
}

func bearerClaims(c *gin.Context, authService service.AuthService) (*service.Claims, error) {
	authHeader := c.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, errMalformedHeader
	}
	return authService.ValidateToken(parts[1])
}

func setActor(c *gin.Context, claims *service.Claims) {
	role, err := rbac.ParseRole(claims.Role)
	if err != nil {
		role = rbac.RoleUser
	}
	c.Set(actorKey, rbac.Actor{
		UserID:        claims.UserID,
		Role:          role,
		Superuser:     claims.Superuser,
		Authenticated: true,
	})
	c.Set("claims", claims)
}

// Actor returns the request's actor; the zero value is anonymous.
func Actor(c *gin.Context) rbac.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(rbac.Actor); ok {
			return actor
		}
	}
	return rbac.Actor{}
}

// Claims returns the token claims when the request is authenticated.
func Claims(c *gin.Context) (*service.Claims, bool) {
	v, ok := c.Get("claims")
	if !ok {
		return nil, false
	}
	claims, ok := v.(*service.Claims)
	return claims, ok
}
