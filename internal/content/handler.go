package content

import (
	"net/http"

	"review-service/internal/domain"
	"review-service/internal/shared/httpx"
)

type Handler struct{ svc Service }

func NewHandler(s Service) *Handler { return &Handler{svc: s} }

func (h *Handler) CreateTicket(w http.ResponseWriter, r *http.Request, id domain.Identity) error {
	in, img, err := decodeTicket(r)
	if err != nil {
		return err
	}
	t, err := h.svc.CreateTicket(r.Context(), id, in, img)
	if err != nil {
		return err
	}
	httpx.WriteJSON(w, t, http.StatusCreated)
	return nil
}

func (h *Handler) GetTicket(w http.ResponseWriter, r *http.Request, _ domain.Identity) error {
	tid, err := httpx.PathID(r, "ticket_id")
	if err != nil {
		return err
	}
	t, err := h.svc.GetTicket(r.Context(), tid)
	if err != nil {
		return err
	}
	reviews, err := h.svc.ReviewsByTicket(r.Context(), tid)
	if err != nil {
		return err
	}
	httpx.WriteJSON(w, TicketWithReviews{Ticket: t, Reviews: reviews}, http.StatusOK)
	return nil
}

func (h *Handler) UpdateTicket(w http.ResponseWriter, r *http.Request, id domain.Identity) error {
	tid, err := httpx.PathID(r, "ticket_id")
	if err != nil {
		return err
	}
	in, img, err := decodeTicket(r)
	if err != nil {
		return err
	}
	t, err := h.svc.UpdateTicket(r.Context(), id, tid, in, img)
	if err != nil {
		return err
	}
	httpx.WriteJSON(w, t, http.StatusOK)
	return nil
}

func (h *Handler) DeleteTicket(w http.ResponseWriter, r *http.Request, id domain.Identity) error {
	tid, err := httpx.PathID(r, "ticket_id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteTicket(r.Context(), id, tid); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (h *Handler) TicketImage(w http.ResponseWriter, r *http.Request, _ domain.Identity) error {
	tid, err := httpx.PathID(r, "ticket_id")
	if err != nil {
		return err
	}
	u, err := h.svc.ImageURL(r.Context(), tid)
	if err != nil {
		return err
	}
	http.Redirect(w, r, u, http.StatusFound)
	return nil
}

func (h *Handler) ListTicketReviews(w http.ResponseWriter, r *http.Request, _ domain.Identity) error {
	tid, err := httpx.PathID(r, "ticket_id")
	if err != nil {
		return err
	}
	items, err := h.svc.ReviewsByTicket(r.Context(), tid)
	if err != nil {
		return err
	}
	httpx.WriteJSON(w, map[string]any{"ticket_id": tid, "items": items}, http.StatusOK)
	return nil
}

func (h *Handler) CreateReview(w http.ResponseWriter, r *http.Request, id domain.Identity) error {
	tid, err := httpx.PathID(r, "ticket_id")
	if err != nil {
		return err
	}
	var in ReviewInput
	if isMultipart(r) {
		if err := parseForm(r); err != nil {
			return err
		}
		in, err = formReview(r)
	} else {
		in, err = httpx.Decode[ReviewInput](r)
	}
	if err != nil {
		return err
	}
	rv, err := h.svc.CreateReview(r.Context(), id, tid, in)
	if err != nil {
		return err
	}
	httpx.WriteJSON(w, rv, http.StatusCreated)
	return nil
}

// CreateTicketAndReview is the standalone review: a new ticket and its review.
func (h *Handler) CreateTicketAndReview(w http.ResponseWriter, r *http.Request, id domain.Identity) error {
	in, img, err := decodeTicketReview(r)
	if err != nil {
		return err
	}
	if in.Ticket == nil {
		return domain.NewValidationError("title", "is required")
	}
	t, rv, err := h.svc.CreateTicketAndReview(r.Context(), id, *in.Ticket, in.Review, img)
	if err != nil {
		return err
	}
	httpx.WriteJSON(w, TicketAndReview{Ticket: t, Review: rv}, http.StatusCreated)
	return nil
}

func (h *Handler) GetReview(w http.ResponseWriter, r *http.Request, _ domain.Identity) error {
	rid, err := httpx.PathID(r, "review_id")
	if err != nil {
		return err
	}
	rv, err := h.svc.GetReview(r.Context(), rid)
	if err != nil {
		return err
	}
	t, err := h.svc.GetTicket(r.Context(), rv.TicketID)
	if err != nil {
		return err
	}
	httpx.WriteJSON(w, TicketAndReview{Ticket: t, Review: rv}, http.StatusOK)
	return nil
}

// UpdateReview picks the use-case from an explicit ownership check: the
// ticket part is only editable by someone who owns both rows.
func (h *Handler) UpdateReview(w http.ResponseWriter, r *http.Request, id domain.Identity) error {
	rid, err := httpx.PathID(r, "review_id")
	if err != nil {
		return err
	}
	in, img, err := decodeTicketReview(r)
	if err != nil {
		return err
	}
	if in.Ticket == nil {
		if img != nil {
			return domain.NewValidationError("image", "belongs to the ticket part")
		}
		rv, err := h.svc.UpdateReviewOnly(r.Context(), id, rid, in.Review)
		if err != nil {
			return err
		}
		httpx.WriteJSON(w, TicketAndReview{Review: rv}, http.StatusOK)
		return nil
	}

	both, err := h.svc.CanEditTicketOf(r.Context(), id, rid)
	if err != nil {
		return err
	}
	if !both {
		return domain.ErrForbidden
	}
	t, rv, err := h.svc.UpdateTicketAndReview(r.Context(), id, rid, *in.Ticket, in.Review, img)
	if err != nil {
		return err
	}
	httpx.WriteJSON(w, TicketAndReview{Ticket: t, Review: rv}, http.StatusOK)
	return nil
}

func (h *Handler) DeleteReview(w http.ResponseWriter, r *http.Request, id domain.Identity) error {
	rid, err := httpx.PathID(r, "review_id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteReview(r.Context(), id, rid); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}
