package content

import (
	"strings"
	"time"
)

const (
	MinRating = 0
	MaxRating = 5
)

type Review struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TicketID  uint      `gorm:"uniqueIndex:idx_reviews_ticket_user;not null" json:"ticket_id"`
	UserID    uint      `gorm:"uniqueIndex:idx_reviews_ticket_user;index;not null" json:"user_id"`
	Headline  string    `gorm:"size:128;not null" json:"headline"`
	Rating    int       `gorm:"not null;check:chk_reviews_rating,rating >= 0 AND rating <= 5" json:"rating"`
	Body      string    `gorm:"size:8192" json:"body"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false" json:"updated_at"`
}

type ReviewInput struct {
	Headline string `json:"headline" validate:"required,max=128"`
	Rating   *int   `json:"rating" validate:"required,min=0,max=5"`
	Body     string `json:"body" validate:"max=8192"`
}

func (in ReviewInput) normalize() ReviewInput {
	in.Headline = strings.TrimSpace(in.Headline)
	in.Body = strings.TrimSpace(in.Body)
	return in
}

func (in ReviewInput) rating() int {
	if in.Rating == nil {
		return 0
	}
	return *in.Rating
}
