package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const callerIDKey contextKey = "user_id"

// JWTAuth verifies HS256 bearer tokens and exposes the user_id claim as the caller.
type JWTAuth struct {
	secret []byte
}

func NewJWTAuth(secret string) *JWTAuth {
	return &JWTAuth{secret: []byte(secret)}
}

// IssueToken signs a token for userID that expires after ttl.
func (j *JWTAuth) IssueToken(userID int64, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"iat":     now.Unix(),
		"exp":     now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
}

// Middleware rejects requests without a valid bearer token.
func (j *JWTAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := j.authenticate(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		ctx := context.WithValue(r.Context(), callerIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (j *JWTAuth) authenticate(r *http.Request) (int64, error) {
	raw := bearerToken(r)
	if raw == "" {
		return 0, errors.New("missing bearer token")
	}

	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return j.secret, nil
	})
	if errors.Is(err, jwt.ErrTokenExpired) {
		return 0, errors.New("token has expired")
	}
	if err != nil || !token.Valid {
		return 0, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errors.New("invalid token claims")
	}
	return userIDClaim(claims["user_id"])
}

// bearerToken reads the Authorization header, or the token query parameter
// for websocket clients that cannot set headers.
func bearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return ""
		}
		return parts[1]
	}
	return r.URL.Query().Get("token")
}

func userIDClaim(v interface{}) (int64, error) {
	switch id := v.(type) {
	case float64:
		if id == float64(int64(id)) && id > 0 {
			return int64(id), nil
		}
	case string:
		if n, err := strconv.ParseInt(id, 10, 64); err == nil && n > 0 {
			return n, nil
		}
	}
	return 0, fmt.Errorf("invalid user_id claim %v", v)
}

// CallerID returns the authenticated user id stored by JWTAuth.Middleware.
func CallerID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(callerIDKey).(int64)
	return id, ok
}
