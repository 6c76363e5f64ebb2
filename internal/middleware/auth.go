package middleware

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/cp-ladders/backend/internal/domain"
	"github.com/cp-ladders/backend/internal/infrastructure"
)

const (
	// AuthorizationHeader is the header key for the JWT token
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for the JWT token
	BearerPrefix = "Bearer "
	// UserIDKey is the context key for the authenticated user ID
	UserIDKey = "userID"
)

// TokenVerifier validates bearer tokens issued by the account service.
// This side never mints tokens; it shares only the HS256 secret.
type TokenVerifier struct {
	config *infrastructure.JWTConfig
}

// NewTokenVerifier creates a verifier for externally issued tokens
func NewTokenVerifier(config *infrastructure.JWTConfig) *TokenVerifier {
	return &TokenVerifier{config: config}
}

// Verify parses and validates a token, returning the subject user ID
func (v *TokenVerifier) Verify(tokenString string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidToken
		}
		return []byte(v.config.SecretKey), nil
	}, jwt.WithIssuer(v.config.Issuer))
	if err != nil || !token.Valid {
		return 0, domain.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, domain.ErrInvalidToken
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, domain.ErrInvalidToken
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return 0, domain.ErrInvalidToken
	}
	return uint(userID), nil
}

// OptionalAuthMiddleware attaches the token's user identity to the
// request when a valid bearer token is present. Requests without one
// pass through untouched; the identity is used for log and trace
// attribution only.
func OptionalAuthMiddleware(verifier *TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthorizationHeader)
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			c.Next()
			return
		}

		token := strings.TrimPrefix(authHeader, BearerPrefix)
		if token == "" {
			c.Next()
			return
		}

		if userID, err := verifier.Verify(token); err == nil {
			c.Set(UserIDKey, userID)
		}
		c.Next()
	}
}

// GetUserID extracts the authenticated user ID from the gin context
func GetUserID(c *gin.Context) (uint, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := userID.(uint)
	return id, ok
}
