package user

import "time"

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;size:150;not null" json:"username"`
	PassHash  string    `gorm:"size:255;not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
