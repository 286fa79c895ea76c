package social

import "time"

// UserFollow is a directed follower -> followed edge.
type UserFollow struct {
	FollowerID uint `gorm:"primaryKey;autoIncrement:false"`
	FollowedID uint `gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt  time.Time
}

type FollowResult struct {
	Username         string `json:"username"`
	AlreadyFollowing bool   `json:"already_following"`
}
