package feed

import (
	"net/http"

	"review-service/internal/domain"
	"review-service/internal/shared/httpx"
)

type Handler struct{ svc Service }

func NewHandler(s Service) *Handler { return &Handler{svc: s} }

func (h *Handler) Home(w http.ResponseWriter, r *http.Request, id domain.Identity) error {
	items, err := h.svc.ForUser(r.Context(), id)
	if err != nil {
		return err
	}
	return writePage(w, r, items)
}

func (h *Handler) All(w http.ResponseWriter, r *http.Request, _ domain.Identity) error {
	items, err := h.svc.All(r.Context())
	if err != nil {
		return err
	}
	return writePage(w, r, items)
}

func (h *Handler) Posts(w http.ResponseWriter, r *http.Request, _ domain.Identity) error {
	items, err := h.svc.ByOwner(r.Context(), r.PathValue("username"))
	if err != nil {
		return err
	}
	return writePage(w, r, items)
}

func writePage(w http.ResponseWriter, r *http.Request, items []Item) error {
	limit := httpx.QueryInt(r, "limit", 50)
	offset := httpx.QueryInt(r, "offset", 0)
	if limit > 200 {
		limit = 200
	}
	httpx.WriteJSON(w, map[string]any{
		"items":  Page(items, limit, offset),
		"total":  len(items),
		"limit":  limit,
		"offset": offset,
	}, http.StatusOK)
	return nil
}
