package database

import (
	"vereinsportal/internal/events"
	"vereinsportal/internal/registrations"
	"vereinsportal/internal/users"
	"vereinsportal/internal/waitlist"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&users.User{},
		&events.Event{},
		&registrations.Registration{},
		&registrations.Child{},
		&waitlist.WaitlistEntry{},
		&waitlist.WaitlistNotification{},
	)
}
