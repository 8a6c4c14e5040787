package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Auth validates the bearer token and stores the caller's identity in the
// request context. Missing token -> 401, invalid token -> 403.
func Auth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			tokenStr, found := strings.CutPrefix(header, "Bearer ")
			if !found || tokenStr == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Access token required")
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusForbidden, "Invalid token")
			}

			c.Set("user_id", claims.UserID)
			c.Set("user_email", claims.Email)
			return next(c)
		}
	}
}

// UserID returns the authenticated user id set by Auth.
func UserID(c echo.Context) string {
	id, _ := c.Get("user_id").(string)
	return id
}

// UserEmail returns the authenticated user email set by Auth.
func UserEmail(c echo.Context) string {
	email, _ := c.Get("user_email").(string)
	return email
}
