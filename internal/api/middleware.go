/**
 * @description
 * This file contains custom middleware for the HTTP router. Session tokens are
 * HS256 JWTs minted by the auth layer; the middleware validates them and puts
 * the caller's identity, role and society scope on the request context.
 *
 * @dependencies
 * - context, net/http, strings: Standard Go libraries.
 * - github.com/golang-jwt/jwt/v5: JWT parsing and validation.
 * - github.com/google/uuid: For identity parsing.
 */

package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/ourrapartment10-dot/payments-service/internal/domain"
)

// sessionContextKey is a custom type for the context key to avoid collisions.
type sessionContextKey string

const sessionKey sessionContextKey = "session"

// Session carries the authenticated caller's identity and scope.
type Session struct {
	UserID    uuid.UUID
	SocietyID uuid.UUID
	Role      string
}

// IsAdmin reports whether the session holds admin or super-admin privileges.
func (s Session) IsAdmin() bool {
	return s.Role == domain.RoleAdmin || s.Role == domain.RoleSuperAdmin
}

// SessionAuthMiddleware creates a middleware that validates session JWTs.
func SessionAuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, http.StatusUnauthorized, "Authorization header required")
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				writeError(w, http.StatusUnauthorized, "Invalid Authorization header format")
				return
			}

			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				writeError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				writeError(w, http.StatusUnauthorized, "Invalid token claims")
				return
			}

			sub, _ := claims["sub"].(string)
			userID, err := uuid.Parse(sub)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "User ID not found in token")
				return
			}

			societyStr, _ := claims["society_id"].(string)
			societyID, err := uuid.Parse(societyStr)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Society ID not found in token")
				return
			}

			role, _ := claims["role"].(string)
			switch role {
			case domain.RoleResident, domain.RoleAdmin, domain.RoleSuperAdmin:
			default:
				writeError(w, http.StatusUnauthorized, "Unknown role in token")
				return
			}

			session := Session{UserID: userID, SocietyID: societyID, Role: role}
			ctx := context.WithValue(r.Context(), sessionKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates a route group to the given roles.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := GetSession(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			if !allowed[session.Role] {
				writeError(w, http.StatusForbidden, "Insufficient privileges")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetSession retrieves the authenticated session from the request context.
func GetSession(ctx context.Context) (Session, bool) {
	session, ok := ctx.Value(sessionKey).(Session)
	return session, ok
}
