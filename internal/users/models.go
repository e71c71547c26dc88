package users

import (
	"time"

	"github.com/google/uuid"
)

// Role is the access level of a staff account. Parents never hold accounts;
// they interact with the portal through registration and confirmation links.
type Role string

const (
	RoleStaff Role = "STAFF"
	RoleAdmin Role = "ADMIN"
)

type User struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey;type:uuid;default:uuid_generate_v4()"`
	FirstName string    `json:"first_name" gorm:"not null"`
	LastName  string    `json:"last_name" gorm:"not null"`
	Password  string    `json:"-" gorm:"not null"` // hide in json
	Role      Role      `json:"role" gorm:"not null;default:'STAFF'"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func IsValidRole(role string) bool {
	switch role {
	case string(RoleStaff), string(RoleAdmin):
		return true
	default:
		return false
	}
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}
