package middleware // package middleware contains reusable HTTP middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Context keys set by JWTAuth.
const (
	CtxUserID   = "user_id"
	CtxUsername = "username"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and stores the subject claim as a uint64 under "user_id".  The secret
// must match the one used when issuing tokens.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			uid, username, msg := parseBearer(secret, strings.TrimPrefix(auth, "Bearer "))
			if msg != "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": msg})
			}
			c.Set(CtxUserID, uid)
			c.Set(CtxUsername, username)
			return next(c)
		}
	}
}

// OptionalJWT identifies the caller when a valid Bearer token is present
// and lets every request through.  It runs ahead of group middleware such
// as the rate limiter, which keys on "user_id"; routes that require a user
// still apply JWTAuth.
func OptionalJWT(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if strings.HasPrefix(auth, "Bearer ") {
				if uid, username, msg := parseBearer(secret, strings.TrimPrefix(auth, "Bearer ")); msg == "" {
					c.Set(CtxUserID, uid)
					c.Set(CtxUsername, username)
				}
			}
			return next(c)
		}
	}
}

// parseBearer validates raw and returns its subject and username.  A
// non-empty msg describes why the token was rejected.
func parseBearer(secret, raw string) (uid uint64, username interface{}, msg string) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		// reject anything but HMAC
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, echo.ErrUnauthorized
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return 0, nil, "invalid token"
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return 0, nil, "invalid claims"
	}
	uid, ok = subject(claims["sub"])
	if !ok {
		return 0, nil, "invalid claims"
	}
	return uid, claims["username"], ""
}

// subject converts the sub claim to a user id.  Numbers arrive as float64
// from the JSON decoder; string subjects are accepted too.
func subject(v interface{}) (uint64, bool) {
	switch t := v.(type) {
	case float64:
		if t <= 0 || t != float64(uint64(t)) {
			return 0, false
		}
		return uint64(t), true
	case string:
		n, err := strconv.ParseUint(t, 10, 64)
		return n, err == nil && n > 0
	}
	return 0, false
}
