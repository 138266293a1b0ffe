package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoIdentity is a protected handler that writes back what the gate put in
// the context.
func echoIdentity(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFromContext(r.Context())
		require.True(t, ok, "identity missing from context")
		userID, _ := UserIDFromContext(r.Context())
		assert.Equal(t, id.UserID, userID)
		_, _ = w.Write([]byte(id.UserID + "|" + id.Name))
	})
}

func serveWithHeader(h http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRequireAuth_ValidToken(t *testing.T) {
	ts := newTestTokenService(t)
	token, err := ts.Issue("user-42", "Jan Jansen")
	require.NoError(t, err)

	h := RequireAuth(ts)(echoIdentity(t))

	for _, scheme := range []string{"Bearer", "bearer", "BEARER"} {
		rec := serveWithHeader(h, scheme+" "+token)
		assert.Equal(t, http.StatusOK, rec.Code, "scheme %q", scheme)
		assert.Equal(t, "user-42|Jan Jansen", rec.Body.String())
	}
}

func TestRequireAuth_RejectsUniformly(t *testing.T) {
	ts := newTestTokenService(t)
	good, err := ts.Issue("user-42", "Jan")
	require.NoError(t, err)

	expired, err := newTestTokenService(t, WithClock(func() time.Time {
		return time.Now().Add(-48 * time.Hour)
	})).Issue("user-42", "Jan")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic " + good},
		{"scheme only", "Bearer"},
		{"empty token", "Bearer   "},
		{"raw token without scheme", good},
		{"garbage token", "Bearer not-a-jwt"},
		{"expired token", "Bearer " + expired},
	}

	var bodies []string
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			h := RequireAuth(ts)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
				called = true
			}))

			rec := serveWithHeader(h, tt.header)

			assert.False(t, called, "protected handler must not run")
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.JSONEq(t, `{"error":"unauthorized","message":"authentication required"}`, rec.Body.String())
			bodies = append(bodies, rec.Body.String())
		})
	}

	for _, b := range bodies {
		assert.Equal(t, bodies[0], b, "rejection bodies must be identical")
	}
}

func TestIdentityFromContext_Anonymous(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	_, ok := IdentityFromContext(req.Context())
	assert.False(t, ok)

	id, ok := UserIDFromContext(req.Context())
	assert.False(t, ok)
	assert.Empty(t, id)
}
