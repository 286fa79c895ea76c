package access

import "review-service/internal/domain"

// CanMutate reports whether actor owns the entity owned by ownerID.
// An empty identity never owns anything.
func CanMutate(actor domain.Identity, ownerID uint) bool {
	return !actor.IsZero() && actor.UserID == ownerID
}

func Require(actor domain.Identity, ownerID uint) error {
	if !CanMutate(actor, ownerID) {
		return domain.ErrForbidden
	}
	return nil
}
