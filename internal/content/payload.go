package content

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"review-service/internal/domain"
	"review-service/internal/shared/httpx"
)

type TicketReviewReq struct {
	Ticket *TicketInput `json:"ticket"`
	Review ReviewInput  `json:"review"`
}

type TicketWithReviews struct {
	Ticket  *Ticket  `json:"ticket"`
	Reviews []Review `json:"reviews"`
}

type TicketAndReview struct {
	Ticket *Ticket `json:"ticket"`
	Review *Review `json:"review"`
}

func isMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "multipart/form-data"
}

func parseForm(r *http.Request) error {
	if err := r.ParseMultipartForm(MaxImageBytes + 1<<20); err != nil {
		return fmt.Errorf("%w: %v", httpx.ErrBadRequest, err)
	}
	return nil
}

func formUpload(r *http.Request, field string) (*Upload, error) {
	file, hdr, err := r.FormFile(field)
	if err == http.ErrMissingFile {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", httpx.ErrBadRequest, err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxImageBytes+1))
	if err != nil {
		return nil, err
	}
	return &Upload{Filename: hdr.Filename, ContentType: hdr.Header.Get("Content-Type"), Data: data}, nil
}

func formTicket(r *http.Request) TicketInput {
	return TicketInput{Title: r.FormValue("title"), Description: r.FormValue("description")}
}

func formReview(r *http.Request) (ReviewInput, error) {
	in := ReviewInput{Headline: r.FormValue("headline"), Body: r.FormValue("body")}
	if s := strings.TrimSpace(r.FormValue("rating")); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return in, domain.NewValidationError("rating", "must be an integer")
		}
		in.Rating = &n
	}
	return in, nil
}

// decodeTicket accepts JSON or a multipart form with an optional "image" file.
func decodeTicket(r *http.Request) (TicketInput, *Upload, error) {
	if !isMultipart(r) {
		in, err := httpx.Decode[TicketInput](r)
		return in, nil, err
	}
	if err := parseForm(r); err != nil {
		return TicketInput{}, nil, err
	}
	up, err := formUpload(r, "image")
	return formTicket(r), up, err
}

// decodeTicketReview reads the combined form. In multipart mode the ticket
// part is present when a "title" field was sent.
func decodeTicketReview(r *http.Request) (TicketReviewReq, *Upload, error) {
	if !isMultipart(r) {
		in, err := httpx.Decode[TicketReviewReq](r)
		return in, nil, err
	}
	if err := parseForm(r); err != nil {
		return TicketReviewReq{}, nil, err
	}
	var out TicketReviewReq
	if _, ok := r.MultipartForm.Value["title"]; ok {
		t := formTicket(r)
		out.Ticket = &t
	}
	rv, err := formReview(r)
	if err != nil {
		return out, nil, err
	}
	out.Review = rv
	up, err := formUpload(r, "image")
	return out, up, err
}
