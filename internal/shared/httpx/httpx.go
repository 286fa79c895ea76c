package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"review-service/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"
)

type HandlerFunc func(http.ResponseWriter, *http.Request) error

type APIError struct {
	Error  string            `json:"error"`
	Reason string            `json:"reason,omitempty"`
	Status int               `json:"status"`
	Fields map[string]string `json:"fields,omitempty"`
}

var ErrBadRequest = errors.New("bad request")

var handlerErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "review_http_errors_total",
	Help: "Handler errors by status and reason.",
}, []string{"status", "reason"})

func WriteJSON(w http.ResponseWriter, v any, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, err error, reason string) {
	if err == nil {
		err = errors.New(http.StatusText(status))
	}
	handlerErrors.WithLabelValues(strconv.Itoa(status), reason).Inc()
	out := APIError{Error: err.Error(), Reason: reason, Status: status}
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		out.Fields = verr.Fields
	}
	WriteJSON(w, out, status)
}

// StatusOf maps a domain error to an HTTP status and a machine readable reason.
func StatusOf(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, "validation_failed"
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, domain.ErrSelfFollow):
		return http.StatusBadRequest, "self_follow"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, domain.ErrBadCredentials):
		return http.StatusUnauthorized, "bad_credentials"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrDuplicateReview):
		return http.StatusConflict, "duplicate_review"
	case errors.Is(err, domain.ErrUsernameTaken):
		return http.StatusConflict, "username_taken"
	case errors.Is(err, domain.ErrNotFollowing):
		return http.StatusConflict, "not_following"
	}
	return http.StatusInternalServerError, "internal"
}

func Wrap(fn HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			Fail(w, r, err)
		}
	})
}

// Fail writes err as an APIError. Internal errors are logged and masked.
func Fail(w http.ResponseWriter, r *http.Request, err error) {
	code, reason := StatusOf(err)
	if code >= http.StatusInternalServerError {
		log.WithFields(log.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
			"status": code,
		}).WithError(err).Error("request failed")
		err = errors.New("internal error")
	}
	WriteError(w, code, err, reason)
}

func Decode[T any](r *http.Request) (T, error) {
	var t T
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		return t, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return t, nil
}

func PathID(r *http.Request, name string) (uint, error) {
	n, err := strconv.ParseUint(r.PathValue(name), 10, 64)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("%w: invalid %s", ErrBadRequest, name)
	}
	return uint(n), nil
}

func QueryInt(r *http.Request, key string, def int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// ClientIP prefers the first X-Forwarded-For hop.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i > 0 {
		host = host[:i]
	}
	return host
}
