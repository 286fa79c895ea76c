package migrate

import (
	"review-service/internal/content"
	"review-service/internal/shared/db"
	"review-service/internal/social"
	"review-service/internal/user"
)

func AutoMigrateAll(store *db.Store) error {
	return store.Base.AutoMigrate(
		&user.User{},
		&social.UserFollow{},
		&content.Ticket{},
		&content.Review{},
	)
}
