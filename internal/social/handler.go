package social

import (
	"net/http"
	"strings"

	"review-service/internal/domain"
	"review-service/internal/shared/httpx"
	"review-service/internal/shared/validate"
)

type Handler struct{ svc Service }

func NewHandler(s Service) *Handler { return &Handler{svc: s} }

type followReq struct {
	Username string `json:"username" validate:"required,max=150"`
}

func (h *Handler) Follow(w http.ResponseWriter, r *http.Request, id domain.Identity) error {
	in, err := httpx.Decode[followReq](r)
	if err != nil {
		return err
	}
	in.Username = strings.TrimSpace(in.Username)
	if err := validate.Struct(in); err != nil {
		return err
	}
	res, err := h.svc.Follow(r.Context(), id, in.Username)
	if err != nil {
		return err
	}
	code := http.StatusCreated
	if res.AlreadyFollowing {
		code = http.StatusOK
	}
	httpx.WriteJSON(w, res, code)
	return nil
}

func (h *Handler) Unfollow(w http.ResponseWriter, r *http.Request, id domain.Identity) error {
	if err := h.svc.Unfollow(r.Context(), id, r.PathValue("username")); err != nil {
		return err
	}
	httpx.WriteJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
	return nil
}

func (h *Handler) ListFollowing(w http.ResponseWriter, r *http.Request, _ domain.Identity) error {
	name := r.PathValue("username")
	items, err := h.svc.ListFollowing(r.Context(), name)
	if err != nil {
		return err
	}
	httpx.WriteJSON(w, map[string]any{"username": name, "items": items}, http.StatusOK)
	return nil
}

func (h *Handler) ListFollowers(w http.ResponseWriter, r *http.Request, _ domain.Identity) error {
	name := r.PathValue("username")
	items, err := h.svc.ListFollowers(r.Context(), name)
	if err != nil {
		return err
	}
	httpx.WriteJSON(w, map[string]any{"username": name, "items": items}, http.StatusOK)
	return nil
}
