// middleware/auth.go
package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type contextKey string

const userContextKey contextKey = "user"

const tokenCacheSize = 1024

// cachedToken is one verified bearer token. A cached entry is only good until
// the token's own expiry; after that it reads as a miss.
type cachedToken struct {
	userID    string
	expiresAt time.Time
}

func (c cachedToken) valid(now time.Time) bool {
	return c.expiresAt.IsZero() || now.Before(c.expiresAt)
}

// Identity resolves the calling user from a Bearer token and stores the user
// id in the request context. Verified tokens are kept in a bounded cache so
// hot clients skip the parse; nothing about permissions or membership is ever
// cached here. Requests without a usable token pass through anonymously, the
// services reject them where a user is required.
type Identity struct {
	secret []byte
	cache  *lru.Cache[string, cachedToken]
	logger *logrus.Logger
}

func NewIdentity(secret string, logger *logrus.Logger) (*Identity, error) {
	cache, err := lru.New[string, cachedToken](tokenCacheSize)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Identity{secret: []byte(secret), cache: cache, logger: logger}, nil
}

func (m *Identity) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			next.ServeHTTP(w, r)
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			next.ServeHTTP(w, r)
			return
		}

		if entry, ok := m.cache.Get(tokenString); ok {
			if entry.valid(time.Now()) {
				next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), entry.userID)))
				return
			}
			m.cache.Remove(tokenString)
		}

		entry, err := m.resolve(tokenString)
		if err != nil {
			m.logger.WithError(err).Debug("could not resolve user from token")
			next.ServeHTTP(w, r)
			return
		}

		m.cache.Add(tokenString, entry)
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), entry.userID)))
	})
}

func (m *Identity) resolve(tokenString string) (cachedToken, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return cachedToken{}, jwt.ErrTokenUnverifiable
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return cachedToken{}, jwt.ErrTokenInvalidClaims
	}
	userID, _ := claims["userId"].(string)
	if _, err := primitive.ObjectIDFromHex(userID); err != nil {
		return cachedToken{}, jwt.ErrTokenInvalidClaims
	}

	entry := cachedToken{userID: userID}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		entry.expiresAt = exp.Time
	}
	return entry, nil
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userContextKey, userID)
}

// UserID returns the resolved user id of the request, if any.
func UserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userContextKey).(string)
	return userID, ok && userID != ""
}
