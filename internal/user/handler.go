package user

import (
	"net/http"

	"review-service/internal/domain"
	"review-service/internal/shared/httpx"
)

type TokenMaker interface {
	Make(userID uint, username string) (string, error)
}

type TokenRevoker interface {
	Revoke(r *http.Request) error
}

type Handler struct {
	svc    Service
	tokens TokenMaker
	revoke TokenRevoker
}

func NewHandler(s Service, tokens TokenMaker, revoke TokenRevoker) *Handler {
	return &Handler{svc: s, tokens: tokens, revoke: revoke}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) error {
	body, err := httpx.Decode[RegisterReq](r)
	if err != nil {
		return err
	}
	u, err := h.svc.Register(r.Context(), body)
	if err != nil {
		return err
	}
	return h.writeToken(w, u, http.StatusCreated)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) error {
	body, err := httpx.Decode[LoginReq](r)
	if err != nil {
		return err
	}
	u, err := h.svc.Login(r.Context(), body)
	if err != nil {
		return err
	}
	return h.writeToken(w, u, http.StatusOK)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request, _ domain.Identity) error {
	if err := h.revoke.Revoke(r); err != nil {
		return err
	}
	httpx.WriteJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
	return nil
}

func (h *Handler) WhoAmI(w http.ResponseWriter, r *http.Request, id domain.Identity) error {
	httpx.WriteJSON(w, id, http.StatusOK)
	return nil
}

func (h *Handler) writeToken(w http.ResponseWriter, u *User, code int) error {
	token, err := h.tokens.Make(u.ID, u.Username)
	if err != nil {
		return err
	}
	httpx.WriteJSON(w, AuthResponse{UserID: u.ID, Username: u.Username, AccessToken: token}, code)
	return nil
}
