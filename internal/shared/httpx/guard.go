package httpx

import (
	"errors"
	"net/http"

	"review-service/internal/domain"
	"review-service/internal/session"
	"review-service/internal/shared/jwt"
)

// IdentityHandlerFunc receives the authenticated caller explicitly.
type IdentityHandlerFunc func(w http.ResponseWriter, r *http.Request, id domain.Identity) error

type TokenParser interface {
	Parse(tok string) (jwt.Claims, error)
}

type AuthGuard struct {
	tokens TokenParser
	deny   session.Denylist
}

func NewAuthGuard(tokens TokenParser, deny session.Denylist) *AuthGuard {
	return &AuthGuard{tokens: tokens, deny: deny}
}

var errSessionCheck = errors.New("session check failed")

func (g *AuthGuard) claims(r *http.Request) (jwt.Claims, int, string) {
	tok := BearerToken(r)
	if tok == "" {
		return jwt.Claims{}, http.StatusUnauthorized, "missing_bearer"
	}
	c, err := g.tokens.Parse(tok)
	if err != nil {
		return jwt.Claims{}, http.StatusUnauthorized, "invalid_token"
	}
	revoked, err := g.deny.Revoked(r.Context(), c.TokenID)
	if err != nil {
		return jwt.Claims{}, http.StatusServiceUnavailable, "session_check_failed"
	}
	if revoked {
		return jwt.Claims{}, http.StatusUnauthorized, "revoked_token"
	}
	return c, 0, ""
}

// Wrap authenticates the request and calls fn with the caller's identity.
func (g *AuthGuard) Wrap(fn IdentityHandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, status, reason := g.claims(r)
		if status != 0 {
			err := domain.ErrUnauthorized
			if status == http.StatusServiceUnavailable {
				err = errSessionCheck
			}
			WriteError(w, status, err, reason)
			return
		}
		id := domain.Identity{UserID: c.UserID, Username: c.Username}
		if err := fn(w, r, id); err != nil {
			Fail(w, r, err)
		}
	})
}

// Revoke puts the request's bearer token on the denylist.
func (g *AuthGuard) Revoke(r *http.Request) error {
	c, status, _ := g.claims(r)
	if status != 0 {
		return domain.ErrUnauthorized
	}
	return g.deny.Revoke(r.Context(), c.TokenID, c.ExpiresAt)
}
