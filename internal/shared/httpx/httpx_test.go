package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"review-service/internal/domain"
	"review-service/internal/session"
	"review-service/internal/shared/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapMapsErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantReason string
	}{
		{"validation", domain.NewValidationError("title", "is required"), http.StatusBadRequest, "validation_failed"},
		{"forbidden wrapped", fmt.Errorf("update ticket: %w", domain.ErrForbidden), http.StatusForbidden, "forbidden"},
		{"not found", domain.ErrNotFound, http.StatusNotFound, "not_found"},
		{"duplicate review", domain.ErrDuplicateReview, http.StatusConflict, "duplicate_review"},
		{"self follow", domain.ErrSelfFollow, http.StatusBadRequest, "self_follow"},
		{"not following", domain.ErrNotFollowing, http.StatusConflict, "not_following"},
		{"internal", errors.New("boom"), http.StatusInternalServerError, "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Wrap(func(w http.ResponseWriter, r *http.Request) error { return tt.err })
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			var body APIError
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantReason, body.Reason)
		})
	}
}

func TestWrapMasksInternalErrors(t *testing.T) {
	h := Wrap(func(w http.ResponseWriter, r *http.Request) error { return errors.New("pq: password leaked") })
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.NotContains(t, w.Body.String(), "leaked")
}

func TestValidationFieldsInBody(t *testing.T) {
	h := Wrap(func(w http.ResponseWriter, r *http.Request) error {
		return domain.NewValidationError("rating", "must be at most 5")
	})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", nil))

	var body APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "must be at most 5", body.Fields["rating"])
}

func TestAuthGuard(t *testing.T) {
	iss := jwt.NewIssuer("test", time.Hour)
	deny := session.NewMemory()
	g := NewAuthGuard(iss, deny)

	var got domain.Identity
	h := g.Wrap(func(w http.ResponseWriter, r *http.Request, id domain.Identity) error {
		got = id
		w.WriteHeader(http.StatusNoContent)
		return nil
	})

	good, err := iss.Make(7, "bob")
	require.NoError(t, err)
	revoked, err := iss.Make(7, "bob")
	require.NoError(t, err)

	rr := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	rr.Header.Set("Authorization", "Bearer "+revoked)
	require.NoError(t, g.Revoke(rr))

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"garbage", "Bearer nope", http.StatusUnauthorized},
		{"revoked", "Bearer " + revoked, http.StatusUnauthorized},
		{"ok", "Bearer " + good, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
	assert.Equal(t, domain.Identity{UserID: 7, Username: "bob"}, got)
}

func TestPathID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/tickets/abc", nil)
	req.SetPathValue("ticket_id", "abc")
	_, err := PathID(req, "ticket_id")
	assert.ErrorIs(t, err, ErrBadRequest)

	req.SetPathValue("ticket_id", "12")
	id, err := PathID(req, "ticket_id")
	require.NoError(t, err)
	assert.Equal(t, uint(12), id)
}
