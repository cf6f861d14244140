package middleware

import (
	"net/http"
	"os"
	"strings"

	"hrcore/internal/identity"
	"hrcore/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const identityKey = "identity"

func GetJWTSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		if os.Getenv("GIN_MODE") == "release" {
			panic("FATAL: JWT_SECRET environment variable is required in production mode")
		}
		secret = "default_super_secret_key" // Development fallback only — DO NOT use in production
	}
	return []byte(secret)
}

// RequireAuth validates the bearer token and stores the caller's Identity in
// the gin context. Token issuance happens elsewhere; this service only
// validates. Expected claims: sub (employee number), name, hr (bool).
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Try cookie first, fallback to Authorization header
		tokenString, cookieErr := c.Cookie("access_token")
		if cookieErr != nil || tokenString == "" {
			authHeader := c.GetHeader("Authorization")
			if authHeader == "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid authorization format. Expected 'Bearer <token>'"))
				return
			}
			tokenString = parts[1]
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return GetJWTSecret(), nil
		})

		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token"))
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token claims"))
			return
		}

		employeeNo, ok := claims["sub"].(float64)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Employee number not found in token"))
			return
		}

		caller := identity.Identity{EmployeeNo: int64(employeeNo)}
		if name, ok := claims["name"].(string); ok {
			caller.DisplayName = name
		}
		if hr, ok := claims["hr"].(bool); ok {
			caller.HRRole = hr
		}

		c.Set(identityKey, caller)
		c.Next()
	}
}

// RequireHR runs after RequireAuth and rejects callers without the HR role.
func RequireHR() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := CallerIdentity(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
			return
		}
		if !caller.HRRole {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: HR role required"))
			return
		}
		c.Next()
	}
}

// CallerIdentity returns the Identity stored by RequireAuth.
func CallerIdentity(c *gin.Context) (identity.Identity, bool) {
	value, exists := c.Get(identityKey)
	if !exists {
		return identity.Identity{}, false
	}
	caller, ok := value.(identity.Identity)
	return caller, ok
}
