package content

import (
	"errors"
	"net/http"
	"strings"

	"review-service/internal/domain"
	"review-service/internal/shared/validate"
)

const MaxImageBytes = 5 << 20

// ValidateTicket checks field limits. nil or *domain.ValidationError.
func ValidateTicket(in TicketInput) error { return validate.Struct(in) }

// ValidateReview checks field limits and the 0..5 rating range.
func ValidateReview(in ReviewInput) error { return validate.Struct(in) }

func ValidateUpload(up *Upload) error {
	if up == nil {
		return nil
	}
	if len(up.Data) == 0 {
		return domain.NewValidationError("image", "is empty")
	}
	if len(up.Data) > MaxImageBytes {
		return domain.NewValidationError("image", "must be at most 5MB")
	}
	if !strings.HasPrefix(http.DetectContentType(up.Data), "image/") {
		return domain.NewValidationError("image", "must be an image")
	}
	return nil
}

// collect merges validator results so one response lists every bad field.
func collect(errs ...error) error {
	var out *domain.ValidationError
	for _, err := range errs {
		if err == nil {
			continue
		}
		var verr *domain.ValidationError
		if !errors.As(err, &verr) {
			return err
		}
		if out == nil {
			out = &domain.ValidationError{Fields: map[string]string{}}
		}
		out.Merge(verr)
	}
	if out == nil {
		return nil
	}
	return out
}
