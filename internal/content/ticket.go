package content

import (
	"strings"
	"time"
)

type Ticket struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	Title       string    `gorm:"size:128;not null" json:"title"`
	Description string    `gorm:"size:2048" json:"description"`
	Image       string    `gorm:"size:512" json:"image,omitempty"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime:false" json:"updated_at"`
}

type TicketInput struct {
	Title       string `json:"title" validate:"required,max=128"`
	Description string `json:"description" validate:"max=2048"`
}

func (in TicketInput) normalize() TicketInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	return in
}
