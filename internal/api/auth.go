package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/storyhub-api/internal/models"
)

const actorKey = "actor"

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Claims is the payload of caller tokens issued by the auth service
type Claims struct {
	jwt.RegisteredClaims
	Name string      `json:"name"`
	Role models.Role `json:"role"`
}

// TokenManager verifies and issues HS256 caller tokens
type TokenManager struct {
	secretKey []byte
}

// NewTokenManager creates a manager for the shared secret
func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{secretKey: []byte(secret)}
}

// Issue signs a token for the given identity
func (m *TokenManager) Issue(userID, name string, role models.Role, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Name: name,
		Role: role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secretKey)
}

// Verify parses a token and returns the caller it identifies
func (m *TokenManager) Verify(tokenString string) (*models.Actor, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	// user ids are UUID columns
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, ErrInvalidToken
	}

	role := claims.Role
	if !models.ValidRoles[role] {
		role = models.RoleUser
	}
	return &models.Actor{ID: claims.Subject, Name: claims.Name, Role: role}, nil
}

// identityMiddleware attaches the caller when a valid bearer token is present.
// A missing token leaves the request anonymous; a bad one is rejected.
func identityMiddleware(tokens *TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			abortWithError(c, http.StatusUnauthorized, codeUnauthorized, "authorization header must be a bearer token")
			return
		}

		actor, err := tokens.Verify(tokenString)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, codeUnauthorized, err.Error())
			return
		}

		c.Set(actorKey, actor)
		c.Next()
	}
}

// requireAuth rejects anonymous requests
func requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentActor(c) == nil {
			abortWithError(c, http.StatusUnauthorized, codeUnauthorized, "authentication required")
			return
		}
		c.Next()
	}
}

// requireRole allows only callers holding one of roles
func requireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := currentActor(c)
		if actor == nil {
			abortWithError(c, http.StatusUnauthorized, codeUnauthorized, "authentication required")
			return
		}
		for _, r := range roles {
			if actor.Role == r {
				c.Next()
				return
			}
		}
		abortWithError(c, http.StatusForbidden, codeForbidden, "insufficient permissions")
	}
}

// currentActor returns the authenticated caller or nil
func currentActor(c *gin.Context) *models.Actor {
	v, ok := c.Get(actorKey)
	if !ok {
		return nil
	}
	actor, _ := v.(*models.Actor)
	return actor
}

// mustActor returns the caller of a route guarded by requireAuth
func mustActor(c *gin.Context) models.Actor {
	if a := currentActor(c); a != nil {
		return *a
	}
	return models.Actor{}
}
