package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Clark-Hu/movierank/internal/auth"
	"github.com/Clark-Hu/movierank/internal/config"
	"github.com/Clark-Hu/movierank/internal/domain"
	"github.com/Clark-Hu/movierank/internal/logging"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newGateServer(t *testing.T) (*Server, *auth.TokenService) {
	t.Helper()
	tokens := auth.NewTokenService([]byte(testSecret), time.Hour)
	srv := New(config.Config{Port: "0"}, nil, nil, tokens, nil, logging.Nop())
	return srv, tokens
}

func gated(srv *Server, admin bool) http.Handler {
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		_, _ = w.Write([]byte(identity.ID))
	})
	if admin {
		return srv.requireAuth(srv.requireAdmin(final))
	}
	return srv.requireAuth(final)
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"abc", "abc"},
		{"Bearer abc", "abc"},
		{"bearer  abc ", "abc"},
		{"  abc  ", "abc"},
		{"Bearer", "Bearer"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, bearerToken(tt.header), "header %q", tt.header)
	}
}

func TestRequireAuth(t *testing.T) {
	srv, tokens := newGateServer(t)
	identity := domain.Identity{ID: "user-1", Username: "alice", Role: domain.RoleUser}
	token, err := tokens.Issue(identity)
	require.NoError(t, err)

	expired := auth.NewTokenService([]byte(testSecret), time.Nanosecond)
	stale, err := expired.Issue(identity)
	require.NoError(t, err)
	time.Sleep(1100 * time.Millisecond)

	tests := []struct {
		name   string
		header string
		status int
		code   string
	}{
		{"missing", "", http.StatusUnauthorized, "AUTH_REQUIRED"},
		{"garbage", "Bearer nope", http.StatusUnauthorized, "INVALID_TOKEN"},
		{"wrong secret", "Bearer " + signWith(t, "another-secret-of-enough-length", identity), http.StatusUnauthorized, "INVALID_TOKEN"},
		{"expired", stale, http.StatusUnauthorized, "INVALID_TOKEN"},
		{"bearer form", "Bearer " + token, http.StatusOK, ""},
		{"raw form", token, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			gated(srv, false).ServeHTTP(rec, req)

			require.Equal(t, tt.status, rec.Code)
			if tt.code != "" {
				var body errorResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, tt.code, body.Code)
				return
			}
			assert.Equal(t, "user-1", rec.Body.String())
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	srv, tokens := newGateServer(t)

	userToken, err := tokens.Issue(domain.Identity{ID: "u", Username: "alice", Role: domain.RoleUser})
	require.NoError(t, err)
	adminToken, err := tokens.Issue(domain.Identity{ID: "a", Username: "root", Role: domain.RoleAdmin})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	rec := httptest.NewRecorder()
	gated(srv, true).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec = httptest.NewRecorder()
	gated(srv, true).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a", rec.Body.String())
}

func TestParseRating(t *testing.T) {
	tests := []struct {
		raw  string
		want *float64
	}{
		{"", nil},
		{"null", nil},
		{`"4"`, nil},
		{"true", nil},
		{"4.5", floatPtr(4.5)},
		{"3", floatPtr(3)},
	}
	for _, tt := range tests {
		got := parseRating(json.RawMessage(tt.raw))
		if tt.want == nil {
			assert.Nil(t, got, "raw %q", tt.raw)
			continue
		}
		require.NotNil(t, got, "raw %q", tt.raw)
		assert.Equal(t, *tt.want, *got)
	}
}

func TestParseMovieID(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"", ""},
		{"null", ""},
		{"123", ""},
		{"true", ""},
		{`{"id":"x"}`, ""},
		{`"abc"`, "abc"},
		{`"6ba7b810-9dad-11d1-80b4-00c04fd430c8"`, "6ba7b810-9dad-11d1-80b4-00c04fd430c8"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseMovieID(json.RawMessage(tt.raw)), "raw %q", tt.raw)
	}
}

func TestHealthzWithoutStore(t *testing.T) {
	srv, _ := newGateServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func signWith(t *testing.T, secret string, identity domain.Identity) string {
	t.Helper()
	token, err := auth.NewTokenService([]byte(secret), time.Hour).Issue(identity)
	require.NoError(t, err)
	return token
}

func floatPtr(v float64) *float64 { return &v }
