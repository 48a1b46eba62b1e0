package api

import (
	"net/http"
	"strings"

	"github.com/Domenick1991/parkinglot/internal/domain"
	"github.com/Domenick1991/parkinglot/internal/service/auth"
	"github.com/gin-gonic/gin"
)

const (
	// TokenCookie carries the access token for browser clients.
	TokenCookie = "access_token"
	claimsKey   = "claims"
)

// RequireAuth rejects requests without a valid, unrevoked token with a
// uniform 401 body.
func RequireAuth(service auth.AuthUseCase) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := service.ValidateToken(c.Request.Context(), tokenFromRequest(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := currentClaims(c)
		if claims == nil || !claims.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": domain.ErrForbidden.Error()})
			return
		}
		c.Next()
	}
}

func tokenFromRequest(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	token, err := c.Cookie(TokenCookie)
	if err != nil {
		return ""
	}
	return token
}

func currentClaims(c *gin.Context) *auth.Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}
