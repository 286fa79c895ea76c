package content

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"review-service/internal/domain"
	"review-service/internal/session"
	"review-service/internal/shared/httpx"
	"review-service/internal/shared/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type api struct {
	mux    *http.ServeMux
	tokens map[uint]string
}

func newAPI(t *testing.T, e env) api {
	t.Helper()
	iss := jwt.NewIssuer("test", time.Hour)
	guard := httpx.NewAuthGuard(iss, session.NewMemory())
	h := NewHandler(e.svc)

	mux := http.NewServeMux()
	mux.Handle("POST /tickets", guard.Wrap(h.CreateTicket))
	mux.Handle("GET /tickets/{ticket_id}", guard.Wrap(h.GetTicket))
	mux.Handle("PUT /tickets/{ticket_id}", guard.Wrap(h.UpdateTicket))
	mux.Handle("DELETE /tickets/{ticket_id}", guard.Wrap(h.DeleteTicket))
	mux.Handle("GET /tickets/{ticket_id}/image", guard.Wrap(h.TicketImage))
	mux.Handle("GET /tickets/{ticket_id}/reviews", guard.Wrap(h.ListTicketReviews))
	mux.Handle("POST /tickets/{ticket_id}/reviews", guard.Wrap(h.CreateReview))
	mux.Handle("POST /reviews", guard.Wrap(h.CreateTicketAndReview))
	mux.Handle("GET /reviews/{review_id}", guard.Wrap(h.GetReview))
	mux.Handle("PUT /reviews/{review_id}", guard.Wrap(h.UpdateReview))
	mux.Handle("DELETE /reviews/{review_id}", guard.Wrap(h.DeleteReview))

	tokens := map[uint]string{}
	for _, id := range []domain.Identity{alice, bob} {
		tok, err := iss.Make(id.UserID, id.Username)
		require.NoError(t, err)
		tokens[id.UserID] = tok
	}
	return api{mux: mux, tokens: tokens}
}

func (a api) do(t *testing.T, who domain.Identity, method, path, contentType string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+a.tokens[who.UserID])
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	a.mux.ServeHTTP(w, req)
	return w
}

func (a api) json(t *testing.T, who domain.Identity, method, path, body string) *httptest.ResponseRecorder {
	return a.do(t, who, method, path, "application/json", []byte(body))
}

func multipartBody(t *testing.T, fields map[string]string, image []byte) (string, []byte) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if image != nil {
		fw, err := mw.CreateFormFile("image", "cover.png")
		require.NoError(t, err)
		_, err = fw.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return mw.FormDataContentType(), buf.Bytes()
}

func decodeInto[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestTicketLifecycleOverHTTP(t *testing.T) {
	e := newEnv(t)
	a := newAPI(t, e)

	ct, body := multipartBody(t, map[string]string{"title": "Dune", "description": "Herbert"}, pngBytes)
	w := a.do(t, alice, http.MethodPost, "/tickets", ct, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	tk := decodeInto[Ticket](t, w)
	assert.NotEmpty(t, tk.Image)

	path := "/tickets/" + itoa(tk.ID)

	w = a.json(t, bob, http.MethodPut, path, `{"title":"Mine now"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.json(t, alice, http.MethodPut, path, `{"title":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"title"`)

	w = a.json(t, alice, http.MethodPut, path, `{"title":"Dune Messiah"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = a.json(t, bob, http.MethodGet, path+"/image", "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Location"), "https://images.test/tickets/"))

	w = a.json(t, bob, http.MethodPost, path+"/reviews", `{"headline":"Good","rating":4}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = a.json(t, bob, http.MethodPost, path+"/reviews", `{"headline":"Again","rating":4}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = a.json(t, bob, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeInto[TicketWithReviews](t, w)
	assert.Equal(t, "Dune Messiah", got.Ticket.Title)
	assert.Len(t, got.Reviews, 1)

	w = a.json(t, bob, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.json(t, alice, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = a.json(t, alice, http.MethodGet, path+"/reviews", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBadPathAndBody(t *testing.T) {
	e := newEnv(t)
	a := newAPI(t, e)

	w := a.json(t, alice, http.MethodGet, "/tickets/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.json(t, alice, http.MethodPost, "/tickets", `{"title":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.json(t, alice, http.MethodGet, "/reviews/77", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStandaloneReviewMultipart(t *testing.T) {
	e := newEnv(t)
	a := newAPI(t, e)

	ct, body := multipartBody(t, map[string]string{
		"title": "Emma", "headline": "Witty", "rating": "5", "body": "Austen at her best",
	}, pngBytes)
	w := a.do(t, alice, http.MethodPost, "/reviews", ct, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	out := decodeInto[TicketAndReview](t, w)
	assert.Equal(t, out.Ticket.ID, out.Review.TicketID)
	assert.NotEmpty(t, out.Ticket.Image)

	ct, body = multipartBody(t, map[string]string{"title": "Emma", "headline": "x", "rating": "five"}, nil)
	w = a.do(t, alice, http.MethodPost, "/reviews", ct, body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "rating")

	w = a.json(t, alice, http.MethodPost, "/reviews", `{"review":{"headline":"no ticket","rating":1}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateReviewChoosesUseCase(t *testing.T) {
	e := newEnv(t)
	a := newAPI(t, e)

	w := a.json(t, alice, http.MethodPost, "/reviews",
		`{"ticket":{"title":"Dune"},"review":{"headline":"Classic","rating":5}}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	own := decodeInto[TicketAndReview](t, w)

	w = a.json(t, bob, http.MethodPost, "/tickets/"+itoa(own.Ticket.ID)+"/reviews", `{"headline":"Meh","rating":2}`)
	require.Equal(t, http.StatusCreated, w.Code)
	bobs := decodeInto[Review](t, w)

	// owner of both rows edits both
	w = a.json(t, alice, http.MethodPut, "/reviews/"+itoa(own.Review.ID),
		`{"ticket":{"title":"Dune (1965)"},"review":{"headline":"Classic","rating":4}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	both := decodeInto[TicketAndReview](t, w)
	require.NotNil(t, both.Ticket)
	assert.Equal(t, "Dune (1965)", both.Ticket.Title)

	// reviewer of someone else's ticket edits the review only
	w = a.json(t, bob, http.MethodPut, "/reviews/"+itoa(bobs.ID), `{"review":{"headline":"Grew on me","rating":3}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	only := decodeInto[TicketAndReview](t, w)
	assert.Nil(t, only.Ticket)
	assert.Equal(t, 3, only.Review.Rating)

	// and may not touch the ticket part
	w = a.json(t, bob, http.MethodPut, "/reviews/"+itoa(bobs.ID),
		`{"ticket":{"title":"Stolen"},"review":{"headline":"x","rating":3}}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.json(t, alice, http.MethodPut, "/reviews/"+itoa(bobs.ID), `{"review":{"headline":"x","rating":0}}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.json(t, bob, http.MethodDelete, "/reviews/"+itoa(bobs.ID), "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}
