package middleware

import (
	"context"
	"strings"

	"connectrpc.com/connect"

	"github.com/uilacceb/splitter/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// PersonIDKey is the context key for the authenticated person ID.
const PersonIDKey contextKey = "person_id"

// GetPersonID extracts the person ID from the context.
// Returns empty string if not found.
func GetPersonID(ctx context.Context) string {
	personID, _ := ctx.Value(PersonIDKey).(string)
	return personID
}

// WithPersonID returns a copy of ctx carrying personID.
func WithPersonID(ctx context.Context, personID string) context.Context {
	return context.WithValue(ctx, PersonIDKey, personID)
}

// bearerToken returns the token from an "Authorization: Bearer <token>" header.
func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || scheme != "Bearer" || token == "" {
		return "", false
	}
	return token, true
}

// RequireAuth returns an interceptor that validates the bearer token and puts
// the caller's person ID in the request context.
func RequireAuth(jwtManager *auth.JWTManager) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			authHeader := req.Header().Get("Authorization")
			if authHeader == "" {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
			}

			tokenString, ok := bearerToken(authHeader)
			if !ok {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidToken)
			}

			claims, err := jwtManager.Validate(tokenString)
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			return next(WithPersonID(ctx, claims.PersonID), req)
		}
	}
}

// OptionalAuth validates a bearer token if one is present but lets anonymous
// requests through. The stateless calculator endpoints use it so their logs
// still name the caller when known.
func OptionalAuth(jwtManager *auth.JWTManager) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if tokenString, ok := bearerToken(req.Header().Get("Authorization")); ok {
				// Invalid tokens are ignored
				if claims, err := jwtManager.Validate(tokenString); err == nil {
					ctx = WithPersonID(ctx, claims.PersonID)
				}
			}
			return next(ctx, req)
		}
	}
}
