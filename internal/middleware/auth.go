package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/lshigami/Kestrel/internal/dto"
	"github.com/lshigami/Kestrel/internal/model"
)

const (
	ContextUserIDKey = "userId"
	ContextRoleKey   = "userRole"
)

// GenerateToken issues an HS256 bearer token carrying the user's id and
// role. Identity is owned by an external service; this exists for tooling
// and tests that need a valid token against the shared secret.
func GenerateToken(secret string, userID uint, role model.Role) (string, error) {
	claims := jwt.MapClaims{
		"userId": userID,
		"role":   string(role),
		"iat":    time.Now().Unix(),
		"exp":    time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Authenticate resolves the bearer token to a user id and role on every
// request and stores them in the gin context.
func Authenticate(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Missing or invalid Authorization header"})
			return
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Invalid Authorization header format"})
			return
		}
		tokenString := authHeader[len("Bearer "):]

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Invalid or expired token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || claims["userId"] == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Invalid token payload"})
			return
		}

		userID, ok := claims["userId"].(float64) // JWT numbers decode as float64
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Invalid token payload"})
			return
		}
		role, _ := claims["role"].(string)
		if role == "" {
			role = string(model.RoleStudent)
		}

		c.Set(ContextUserIDKey, uint(userID))
		c.Set(ContextRoleKey, model.Role(role))
		c.Next()
	}
}

// RequireRoles rejects requests whose resolved role is not in the allow
// list.
func RequireRoles(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := UserRole(c)
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, dto.ErrorResponse{Error: "You do not have permission to access this resource"})
	}
}

// UserID returns the authenticated user's id from the gin context.
func UserID(c *gin.Context) uint {
	if v, ok := c.Get(ContextUserIDKey); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

// UserRole returns the authenticated user's role from the gin context.
func UserRole(c *gin.Context) model.Role {
	if v, ok := c.Get(ContextRoleKey); ok {
		if role, ok := v.(model.Role); ok {
			return role
		}
	}
	return model.RoleStudent
}
