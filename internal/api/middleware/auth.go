package middleware

import (
	"errors"
	"net/http"
	"strings"

	"passport-admin-go/internal/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// AccessTokenCookie carries the operator token for browser requests.
const AccessTokenCookie = "access_token"

const claimsKey = "auth_claims"

// Claims is the operator token payload. Supabase access tokens carry the
// same "role" claim.
type Claims struct {
	Role  string `json:"role"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

type AuthConfig struct {
	Secret       string
	RequiredRole string
}

// Auth validates an HS256 bearer token (header or cookie). With an empty
// secret it lets every request through.
func Auth(cfg AuthConfig) gin.HandlerFunc {
	if cfg.Secret == "" {
		return func(c *gin.Context) { c.Next() }
	}
	key := []byte(cfg.Secret)
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			abortAuth(c, http.StatusUnauthorized, "missing token")
			return
		}

		claims := &Claims{}
		_, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
			return key, nil
		})
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "token has expired"
			}
			logger.Warn("Unauthorized request",
				zap.String("request_id", GetRequestID(c.Request.Context())),
				zap.String("path", c.Request.URL.Path),
				zap.Error(err))
			abortAuth(c, http.StatusUnauthorized, msg)
			return
		}

		if cfg.RequiredRole != "" && claims.Role != cfg.RequiredRole {
			logger.Warn("Forbidden request",
				zap.String("request_id", GetRequestID(c.Request.Context())),
				zap.String("role", claims.Role))
			abortAuth(c, http.StatusForbidden, "insufficient role")
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// GetClaims returns the claims of an authenticated request.
func GetClaims(c *gin.Context) (*Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok
}

func bearerToken(c *gin.Context) string {
	if after, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil {
		return cookie
	}
	return ""
}

func abortAuth(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
