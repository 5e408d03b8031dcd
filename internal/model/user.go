package model

import (
	"time"
)

// Role names. Every account holds exactly one primary role.
const (
	RoleAdministrator = "administrator"
	RoleEditor        = "editor"
	RoleExecutive     = "executive"
)

// ValidRoles lists the assignable roles.
var ValidRoles = []string{RoleAdministrator, RoleEditor, RoleExecutive}

// User is an actor account. Role associations are owned by the auth
// package; the core only reads them.
type User struct {
	ID           string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	Email        string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	Role         string    `gorm:"type:varchar(32);not null;index" json:"role"`
	CreatedAt    time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// IsValidRole reports whether r is an assignable role name.
func IsValidRole(r string) bool {
	for _, v := range ValidRoles {
		if v == r {
			return true
		}
	}
	return false
}
