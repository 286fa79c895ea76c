package content

import (
	"context"
	"fmt"
	"time"

	"review-service/internal/access"
	"review-service/internal/clock"
	"review-service/internal/domain"

	log "github.com/sirupsen/logrus"
)

type Service interface {
	CreateTicket(ctx context.Context, actor domain.Identity, in TicketInput, img *Upload) (*Ticket, error)
	GetTicket(ctx context.Context, id uint) (*Ticket, error)
	ListTickets(ctx context.Context) ([]Ticket, error)
	TicketsByOwner(ctx context.Context, ownerIDs ...uint) ([]Ticket, error)
	UpdateTicket(ctx context.Context, actor domain.Identity, id uint, in TicketInput, img *Upload) (*Ticket, error)
	DeleteTicket(ctx context.Context, actor domain.Identity, id uint) error
	ImageURL(ctx context.Context, id uint) (string, error)

	CreateReview(ctx context.Context, actor domain.Identity, ticketID uint, in ReviewInput) (*Review, error)
	CreateTicketAndReview(ctx context.Context, actor domain.Identity, t TicketInput, rv ReviewInput, img *Upload) (*Ticket, *Review, error)
	GetReview(ctx context.Context, id uint) (*Review, error)
	ListReviews(ctx context.Context) ([]Review, error)
	ReviewsByOwner(ctx context.Context, ownerIDs ...uint) ([]Review, error)
	ReviewsByTicket(ctx context.Context, ticketID uint) ([]Review, error)
	ReviewsOnTicketsOf(ctx context.Context, ownerID uint) ([]Review, error)
	CanEditTicketOf(ctx context.Context, actor domain.Identity, reviewID uint) (bool, error)
	UpdateReviewOnly(ctx context.Context, actor domain.Identity, reviewID uint, in ReviewInput) (*Review, error)
	UpdateTicketAndReview(ctx context.Context, actor domain.Identity, reviewID uint, t TicketInput, rv ReviewInput, img *Upload) (*Ticket, *Review, error)
	DeleteReview(ctx context.Context, actor domain.Identity, id uint) error
}

type service struct {
	repo   Repository
	images ImageStore
	events Publisher
	clock  clock.Clock

	publishTimeout time.Duration
}

type Option func(*service)

func WithClock(c clock.Clock) Option { return func(s *service) { s.clock = c } }

// WithPublishTimeout bounds how long a request waits on the event writer.
func WithPublishTimeout(d time.Duration) Option { return func(s *service) { s.publishTimeout = d } }

func NewService(r Repository, images ImageStore, events Publisher, opts ...Option) Service {
	s := &service{
		repo: r, images: images, events: events,
		clock: clock.NewSystem(), publishTimeout: 2 * time.Second,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *service) CreateTicket(ctx context.Context, actor domain.Identity, in TicketInput, img *Upload) (*Ticket, error) {
	if actor.IsZero() {
		return nil, domain.ErrUnauthorized
	}
	in = in.normalize()
	if err := collect(ValidateTicket(in), ValidateUpload(img)); err != nil {
		return nil, err
	}
	key, err := s.putImage(ctx, img)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	t := &Ticket{
		UserID: actor.UserID, Title: in.Title, Description: in.Description,
		Image: key, CreatedAt: now, UpdatedAt: now,
	}
	if err := s.repo.CreateTicket(ctx, t); err != nil {
		s.dropImage(ctx, key)
		return nil, fmt.Errorf("create ticket: %w", err)
	}
	s.publish(ctx, Event{Type: EventTicketCreated, TicketID: t.ID, UserID: actor.UserID, At: now})
	return t, nil
}

func (s *service) GetTicket(ctx context.Context, id uint) (*Ticket, error) {
	return s.repo.TicketByID(ctx, id)
}

func (s *service) ListTickets(ctx context.Context) ([]Ticket, error) { return s.repo.AllTickets(ctx) }

func (s *service) TicketsByOwner(ctx context.Context, ownerIDs ...uint) ([]Ticket, error) {
	return s.repo.TicketsByOwner(ctx, ownerIDs...)
}

func (s *service) UpdateTicket(ctx context.Context, actor domain.Identity, id uint, in TicketInput, img *Upload) (*Ticket, error) {
	t, err := s.repo.TicketByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.Require(actor, t.UserID); err != nil {
		return nil, fmt.Errorf("update ticket %d: %w", id, err)
	}
	in = in.normalize()
	if err := collect(ValidateTicket(in), ValidateUpload(img)); err != nil {
		return nil, err
	}
	key, err := s.putImage(ctx, img)
	if err != nil {
		return nil, err
	}
	old := s.applyTicket(t, in, key)
	if err := s.repo.UpdateTicket(ctx, t); err != nil {
		s.dropImage(ctx, key)
		return nil, fmt.Errorf("update ticket %d: %w", id, err)
	}
	s.dropImage(ctx, old)
	s.publish(ctx, Event{Type: EventTicketUpdated, TicketID: t.ID, UserID: actor.UserID, At: t.UpdatedAt})
	return t, nil
}

// applyTicket copies input onto t and returns the image key it replaced, if any.
func (s *service) applyTicket(t *Ticket, in TicketInput, newKey string) string {
	t.Title = in.Title
	t.Description = in.Description
	t.UpdatedAt = s.clock.Now()
	if newKey == "" {
		return ""
	}
	old := t.Image
	t.Image = newKey
	return old
}

func (s *service) DeleteTicket(ctx context.Context, actor domain.Identity, id uint) error {
	t, err := s.repo.TicketByID(ctx, id)
	if err != nil {
		return err
	}
	if err := access.Require(actor, t.UserID); err != nil {
		return fmt.Errorf("delete ticket %d: %w", id, err)
	}
	n, err := s.repo.DeleteTicketCascade(ctx, id)
	if err != nil {
		return fmt.Errorf("delete ticket %d: %w", id, err)
	}
	s.dropImage(ctx, t.Image)
	log.WithFields(log.Fields{"ticket_id": id, "reviews": n}).Debug("ticket deleted")
	s.publish(ctx, Event{Type: EventTicketDeleted, TicketID: id, UserID: actor.UserID, At: s.clock.Now()})
	return nil
}

func (s *service) ImageURL(ctx context.Context, id uint) (string, error) {
	t, err := s.repo.TicketByID(ctx, id)
	if err != nil {
		return "", err
	}
	if t.Image == "" {
		return "", fmt.Errorf("ticket %d image: %w", id, domain.ErrNotFound)
	}
	return s.images.URL(ctx, t.Image)
}

func (s *service) CreateReview(ctx context.Context, actor domain.Identity, ticketID uint, in ReviewInput) (*Review, error) {
	if actor.IsZero() {
		return nil, domain.ErrUnauthorized
	}
	in = in.normalize()
	if err := ValidateReview(in); err != nil {
		return nil, err
	}
	now := s.clock.Now()
	rv := &Review{
		TicketID: ticketID, UserID: actor.UserID, Headline: in.Headline,
		Rating: in.rating(), Body: in.Body, CreatedAt: now, UpdatedAt: now,
	}
	err := s.repo.WithTx(ctx, func(tx Repository) error {
		if _, err := tx.TicketByID(ctx, ticketID); err != nil {
			return fmt.Errorf("ticket %d: %w", ticketID, err)
		}
		return insertReview(ctx, tx, rv)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, reviewEvent(EventReviewCreated, rv))
	return rv, nil
}

// insertReview is the duplicate check plus insert. Callers hold a transaction;
// the unique index on (ticket_id, user_id) catches a concurrent winner.
func insertReview(ctx context.Context, tx Repository, rv *Review) error {
	done, err := tx.HasReviewed(ctx, rv.TicketID, rv.UserID)
	if err != nil {
		return err
	}
	if done {
		return domain.ErrDuplicateReview
	}
	return tx.CreateReview(ctx, rv)
}

func (s *service) CreateTicketAndReview(ctx context.Context, actor domain.Identity, tin TicketInput, rin ReviewInput, img *Upload) (*Ticket, *Review, error) {
	if actor.IsZero() {
		return nil, nil, domain.ErrUnauthorized
	}
	tin, rin = tin.normalize(), rin.normalize()
	if err := collect(ValidateTicket(tin), ValidateReview(rin), ValidateUpload(img)); err != nil {
		return nil, nil, err
	}
	key, err := s.putImage(ctx, img)
	if err != nil {
		return nil, nil, err
	}
	now := s.clock.Now()
	t := &Ticket{
		UserID: actor.UserID, Title: tin.Title, Description: tin.Description,
		Image: key, CreatedAt: now, UpdatedAt: now,
	}
	rv := &Review{
		UserID: actor.UserID, Headline: rin.Headline, Rating: rin.rating(),
		Body: rin.Body, CreatedAt: now, UpdatedAt: now,
	}
	err = s.repo.WithTx(ctx, func(tx Repository) error {
		if err := tx.CreateTicket(ctx, t); err != nil {
			return err
		}
		rv.TicketID = t.ID
		return insertReview(ctx, tx, rv)
	})
	if err != nil {
		s.dropImage(ctx, key)
		return nil, nil, fmt.Errorf("create ticket and review: %w", err)
	}
	s.publish(ctx, Event{Type: EventTicketCreated, TicketID: t.ID, UserID: actor.UserID, At: now})
	s.publish(ctx, reviewEvent(EventReviewCreated, rv))
	return t, rv, nil
}

func (s *service) GetReview(ctx context.Context, id uint) (*Review, error) {
	return s.repo.ReviewByID(ctx, id)
}

func (s *service) ListReviews(ctx context.Context) ([]Review, error) { return s.repo.AllReviews(ctx) }

func (s *service) ReviewsByOwner(ctx context.Context, ownerIDs ...uint) ([]Review, error) {
	return s.repo.ReviewsByOwner(ctx, ownerIDs...)
}

func (s *service) ReviewsByTicket(ctx context.Context, ticketID uint) ([]Review, error) {
	if _, err := s.repo.TicketByID(ctx, ticketID); err != nil {
		return nil, err
	}
	return s.repo.ReviewsByTicket(ctx, ticketID)
}

func (s *service) ReviewsOnTicketsOf(ctx context.Context, ownerID uint) ([]Review, error) {
	return s.repo.ReviewsOnTicketsOf(ctx, ownerID)
}

func (s *service) CanEditTicketOf(ctx context.Context, actor domain.Identity, reviewID uint) (bool, error) {
	rv, err := s.repo.ReviewByID(ctx, reviewID)
	if err != nil {
		return false, err
	}
	t, err := s.repo.TicketByID(ctx, rv.TicketID)
	if err != nil {
		return false, err
	}
	return access.CanMutate(actor, rv.UserID) && access.CanMutate(actor, t.UserID), nil
}

func (s *service) UpdateReviewOnly(ctx context.Context, actor domain.Identity, reviewID uint, in ReviewInput) (*Review, error) {
	rv, err := s.repo.ReviewByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if err := access.Require(actor, rv.UserID); err != nil {
		return nil, fmt.Errorf("update review %d: %w", reviewID, err)
	}
	in = in.normalize()
	if err := ValidateReview(in); err != nil {
		return nil, err
	}
	s.applyReview(rv, in)
	if err := s.repo.UpdateReview(ctx, rv); err != nil {
		return nil, fmt.Errorf("update review %d: %w", reviewID, err)
	}
	s.publish(ctx, reviewEvent(EventReviewUpdated, rv))
	return rv, nil
}

func (s *service) UpdateTicketAndReview(ctx context.Context, actor domain.Identity, reviewID uint, tin TicketInput, rin ReviewInput, img *Upload) (*Ticket, *Review, error) {
	rv, err := s.repo.ReviewByID(ctx, reviewID)
	if err != nil {
		return nil, nil, err
	}
	t, err := s.repo.TicketByID(ctx, rv.TicketID)
	if err != nil {
		return nil, nil, err
	}
	if err := access.Require(actor, rv.UserID); err != nil {
		return nil, nil, fmt.Errorf("update review %d: %w", reviewID, err)
	}
	if err := access.Require(actor, t.UserID); err != nil {
		return nil, nil, fmt.Errorf("update ticket %d: %w", t.ID, err)
	}
	tin, rin = tin.normalize(), rin.normalize()
	if err := collect(ValidateTicket(tin), ValidateReview(rin), ValidateUpload(img)); err != nil {
		return nil, nil, err
	}
	key, err := s.putImage(ctx, img)
	if err != nil {
		return nil, nil, err
	}
	old := s.applyTicket(t, tin, key)
	s.applyReview(rv, rin)
	err = s.repo.WithTx(ctx, func(tx Repository) error {
		if err := tx.UpdateTicket(ctx, t); err != nil {
			return err
		}
		return tx.UpdateReview(ctx, rv)
	})
	if err != nil {
		s.dropImage(ctx, key)
		return nil, nil, fmt.Errorf("update ticket and review: %w", err)
	}
	s.dropImage(ctx, old)
	s.publish(ctx, Event{Type: EventTicketUpdated, TicketID: t.ID, UserID: actor.UserID, At: t.UpdatedAt})
	s.publish(ctx, reviewEvent(EventReviewUpdated, rv))
	return t, rv, nil
}

func (s *service) applyReview(rv *Review, in ReviewInput) {
	rv.Headline = in.Headline
	rv.Rating = in.rating()
	rv.Body = in.Body
	rv.UpdatedAt = s.clock.Now()
}

func (s *service) DeleteReview(ctx context.Context, actor domain.Identity, id uint) error {
	rv, err := s.repo.ReviewByID(ctx, id)
	if err != nil {
		return err
	}
	if err := access.Require(actor, rv.UserID); err != nil {
		return fmt.Errorf("delete review %d: %w", id, err)
	}
	if err := s.repo.DeleteReview(ctx, id); err != nil {
		return fmt.Errorf("delete review %d: %w", id, err)
	}
	ev := reviewEvent(EventReviewDeleted, rv)
	ev.Rating = nil
	ev.At = s.clock.Now()
	s.publish(ctx, ev)
	return nil
}

func (s *service) putImage(ctx context.Context, img *Upload) (string, error) {
	if img == nil {
		return "", nil
	}
	key := imageKey(img)
	if err := s.images.Put(ctx, key, img.contentType(), img.Data); err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}
	return key, nil
}

// dropImage removes an orphaned image; failures only leave garbage behind.
func (s *service) dropImage(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.images.Remove(ctx, key); err != nil {
		log.WithField("key", key).WithError(err).Warn("image cleanup failed")
	}
}

func (s *service) publish(ctx context.Context, ev Event) {
	if s.events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, s.publishTimeout)
	defer cancel()
	if err := s.events.WriteJSON(ctx, ev); err != nil {
		log.WithFields(log.Fields{
			"type":      ev.Type,
			"ticket_id": ev.TicketID,
			"review_id": ev.ReviewID,
		}).WithError(err).Warn("publish event failed")
	}
}

func reviewEvent(typ string, rv *Review) Event {
	rating := rv.Rating
	return Event{
		Type: typ, TicketID: rv.TicketID, ReviewID: rv.ID,
		UserID: rv.UserID, Rating: &rating, At: rv.UpdatedAt,
	}
}
