package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"road_treatment/internal/config"
	"road_treatment/internal/models"
)

const actorKey = "actor"

var (
	secret   = []byte(config.DefaultJWTSecret)
	tokenTTL = config.DefaultTokenTTL
)

// Claims is the token payload. Handlers read it through CurrentActor.
type Claims struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
	TMCID *uint  `json:"tmc_id"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether the actor bypasses TMC scoping.
func (c *Claims) IsAdmin() bool { return c.Role == models.RoleAdmin }

// Configure sets the signing secret and token lifetime. Empty values keep the defaults.
func Configure(signingSecret string, ttl time.Duration) {
	if signingSecret != "" {
		secret = []byte(signingSecret)
	}
	if ttl > 0 {
		tokenTTL = ttl
	}
}

func GenerateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		ID:    user.ID,
		Email: user.Email,
		Role:  user.Role,
		TMCID: user.TMCID,
		Name:  user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func ValidateToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// RequireAuth ensures a valid JWT is present
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}

		claims, err := ValidateToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(actorKey, claims)
		c.Next()
	}
}

// CurrentActor returns the claims stored by RequireAuth, or nil on public routes.
func CurrentActor(c *gin.Context) *Claims {
	v, ok := c.Get(actorKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*Claims)
	return claims
}
