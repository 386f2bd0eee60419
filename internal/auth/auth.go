package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every verification failure: absent, malformed,
// tampered, or signed with a different key. Callers must not distinguish.
var ErrInvalidToken = errors.New("invalid token")

// Identity is the verified subject of a request.
type Identity struct {
	UserID   string
	Username string
}

// Authenticator issues and verifies signed session tokens. The signing
// key is injected at construction and lives for the process lifetime.
// Tokens carry no expiry and cannot be revoked server-side.
type Authenticator struct {
	secret []byte
}

func New(secret []byte) *Authenticator {
	return &Authenticator{secret: secret}
}

// Issue signs a token binding the identity's username and user_id.
func (a *Authenticator) Issue(id Identity) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": id.Username,
		"user_id":  id.UserID,
	})
	return token.SignedString(a.secret)
}

// Verify validates the signature and decodes the identity. Any failure
// yields ErrInvalidToken; no expiry or revocation checks are performed.
func (a *Authenticator) Verify(tokenStr string) (Identity, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return Identity{}, ErrInvalidToken
	}
	username, ok := claims["username"].(string)
	if !ok {
		return Identity{}, ErrInvalidToken
	}

	return Identity{UserID: userID, Username: username}, nil
}

type contextKey string

const identityCtxKey = contextKey("identity")

// Middleware verifies the bearer token before the wrapped handler runs.
// On any failure it responds 401 and the handler is never invoked.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Invalid JWT Token", http.StatusUnauthorized)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			http.Error(w, "Invalid JWT Token", http.StatusUnauthorized)
			return
		}

		id, err := a.Verify(parts[1])
		if err != nil {
			http.Error(w, "Invalid JWT Token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), identityCtxKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// IdentityFromContext extracts the verified identity in handlers.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityCtxKey).(Identity)
	return id, ok
}
