package social

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"review-service/internal/session"
	"review-service/internal/shared/httpx"
	"review-service/internal/shared/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlers(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	iss := jwt.NewIssuer("test", time.Hour)
	guard := httpx.NewAuthGuard(iss, session.NewMemory())
	h := NewHandler(f.svc)

	mux := http.NewServeMux()
	mux.Handle("POST /follows", guard.Wrap(h.Follow))
	mux.Handle("DELETE /follows/{username}", guard.Wrap(h.Unfollow))
	mux.Handle("GET /users/{username}/following", guard.Wrap(h.ListFollowing))

	tok, err := iss.Make(f.ids["alice"].UserID, "alice")
	require.NoError(t, err)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantBody   string
	}{
		{"follow", http.MethodPost, "/follows", `{"username":"bob"}`, http.StatusCreated, `"already_following":false`},
		{"follow again", http.MethodPost, "/follows", `{"username":"bob"}`, http.StatusOK, `"already_following":true`},
		{"follow self", http.MethodPost, "/follows", `{"username":"alice"}`, http.StatusBadRequest, "self_follow"},
		{"follow missing", http.MethodPost, "/follows", `{"username":""}`, http.StatusBadRequest, "validation_failed"},
		{"follow unknown", http.MethodPost, "/follows", `{"username":"ghost"}`, http.StatusNotFound, "not_found"},
		{"list", http.MethodGet, "/users/alice/following", "", http.StatusOK, `"items":["bob"]`},
		{"unfollow", http.MethodDelete, "/follows/bob", "", http.StatusOK, "ok"},
		{"unfollow again", http.MethodDelete, "/follows/bob", "", http.StatusConflict, "not_following"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Authorization", "Bearer "+tok)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}
