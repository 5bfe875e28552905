package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSigningSecret = "thisisasecretkeythatis32charslong!!"

// signToken builds a token the middleware should accept, unless mutated by
// the options.
func signToken(t *testing.T, userID uuid.UUID, secret string, expiresAt time.Time) string {
	t.Helper()

	claims := tokenClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

// runAuthenticated sends a request through the middleware and reports the
// user ID the downstream handler observed.
func runAuthenticated(authHeader string) (*httptest.ResponseRecorder, uuid.UUID, bool) {
	m := NewAuthMiddleware(testSigningSecret)

	var gotUserID uuid.UUID
	var called bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		gotUserID, _ = GetUserID(r)
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/study/reviews", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}

	w := httptest.NewRecorder()
	m.Authenticate(next).ServeHTTP(w, req)
	return w, gotUserID, called
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()
	userID := uuid.New()

	t.Run("valid token passes the user through", func(t *testing.T) {
		t.Parallel()
		token := signToken(t, userID, testSigningSecret, time.Now().Add(time.Hour))

		w, gotUserID, called := runAuthenticated("Bearer " + token)
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, called)
		assert.Equal(t, userID, gotUserID)
	})

	t.Run("missing header", func(t *testing.T) {
		t.Parallel()
		w, _, called := runAuthenticated("")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, called)
	})

	t.Run("malformed header", func(t *testing.T) {
		t.Parallel()
		for _, header := range []string{"Bearer", "Basic abc", "Bearer a b"} {
			w, _, called := runAuthenticated(header)
			assert.Equal(t, http.StatusUnauthorized, w.Code, "header=%q", header)
			assert.False(t, called)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		t.Parallel()
		token := signToken(t, userID, testSigningSecret, time.Now().Add(-time.Hour))

		w, _, called := runAuthenticated("Bearer " + token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, called)
		assert.Contains(t, w.Body.String(), "Token expired")
	})

	t.Run("wrong signing key", func(t *testing.T) {
		t.Parallel()
		token := signToken(t, userID, "adifferentsecretthatisalso32chars!!", time.Now().Add(time.Hour))

		w, _, called := runAuthenticated("Bearer " + token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, called)
	})

	t.Run("token without a user ID", func(t *testing.T) {
		t.Parallel()
		token := signToken(t, uuid.Nil, testSigningSecret, time.Now().Add(time.Hour))

		w, _, called := runAuthenticated("Bearer " + token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, called)
	})
}

func TestGetUserIDWithoutContext(t *testing.T) {
	t.Parallel()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	_, ok := GetUserID(req)
	assert.False(t, ok)
}
