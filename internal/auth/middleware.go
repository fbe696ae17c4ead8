package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"gymsched/internal/api"
	"gymsched/internal/policy"
)

func AuthMiddleware(accessTokenSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, api.Response{Success: false, Error: "unauthorized", Message: "Authorization header required"})
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[0]) != "Bearer" {
			c.JSON(http.StatusUnauthorized, api.Response{Success: false, Error: "unauthorized", Message: "Invalid authorization header format"})
			c.Abort()
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, api.Response{Success: false, Error: "unauthorized", Message: "Token is empty"})
			c.Abort()
			return
		}

		claims, err := ValidateToken(tokenString, accessTokenSecret)
		if err != nil {
			switch {
			case errors.Is(err, ErrTokenExpired):
				c.JSON(http.StatusUnauthorized, api.Response{Success: false, Error: "token_expired", Message: "Token expired"})
			default:
				c.JSON(http.StatusUnauthorized, api.Response{Success: false, Error: "unauthorized", Message: "Invalid or malformed token"})
			}
			c.Abort()
			return
		}

		if claims.TokenType != "access" {
			c.JSON(http.StatusUnauthorized, api.Response{Success: false, Error: "unauthorized", Message: "Access token required"})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_email", claims.Email)
		c.Set("user_role", claims.Role)
		c.Set("user_gym_id", claims.GymID)

		c.Next()
	}
}

func RequireRole(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("user_role")
		if !exists {
			c.JSON(http.StatusUnauthorized, api.Response{Success: false, Error: "unauthorized", Message: "User role not found"})
			c.Abort()
			return
		}

		roleStr, ok := role.(string)
		if !ok || roleStr != requiredRole {
			c.JSON(http.StatusForbidden, api.Response{Success: false, Error: "forbidden", Message: "Insufficient permissions"})
			c.Abort()
			return
		}

		c.Next()
	}
}

func GetUserID(c *gin.Context) (int, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}

	id, ok := userID.(int)
	if !ok {
		return 0, false
	}

	return id, true
}

// GetActor assembles the policy actor from the values the middleware stored.
func GetActor(c *gin.Context) (policy.Actor, bool) {
	userID, ok := GetUserID(c)
	if !ok {
		return policy.Actor{}, false
	}

	role, ok := c.Get("user_role")
	if !ok {
		return policy.Actor{}, false
	}
	roleStr, ok := role.(string)
	if !ok {
		return policy.Actor{}, false
	}

	gymID, ok := c.Get("user_gym_id")
	if !ok {
		return policy.Actor{}, false
	}
	gymIDInt, ok := gymID.(int)
	if !ok {
		return policy.Actor{}, false
	}

	return policy.Actor{UserID: userID, Role: roleStr, GymID: gymIDInt}, true
}
