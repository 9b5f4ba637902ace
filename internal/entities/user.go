package entities

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	UserRoleLibrarian UserRole = "librarian" // Staff, holds every permission
	UserRolePatron    UserRole = "patron"    // Borrower, permissions granted individually
)

// Permission is a named capability checked before privileged operations.
type Permission string

const (
	// PermissionCanMarkReturned allows renewing loans and marking copies returned.
	PermissionCanMarkReturned Permission = "can_mark_returned"
)

// KnownPermissions lists every capability that can be granted.
func KnownPermissions() []Permission {
	return []Permission{PermissionCanMarkReturned}
}

type User struct {
	ID               uint             `gorm:"primaryKey" json:"id"`
	Username         string           `gorm:"uniqueIndex;size:100" json:"username"`
	Email            string           `gorm:"uniqueIndex;size:255" json:"email"`
	PasswordHash     string           `gorm:"size:255" json:"-"`
	Role             UserRole         `gorm:"size:20;default:'patron'" json:"role"`
	Permissions      []UserPermission `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"permissions,omitempty"`
	LastLoginAt      *time.Time       `json:"last_login_at,omitempty"`
	FailedLoginCount int              `gorm:"default:0" json:"-"`
	LockedUntil      *time.Time       `json:"-"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
	DeletedAt        gorm.DeletedAt   `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// HasPermission reports whether the user holds the capability, either
// through the librarian role or an explicit grant.
func (u *User) HasPermission(p Permission) bool {
	if u == nil {
		return false
	}
	if u.Role == UserRoleLibrarian {
		return true
	}
	for _, granted := range u.Permissions {
		if granted.Codename == p {
			return true
		}
	}
	return false
}

// UserPermission is an explicit capability grant.
type UserPermission struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"uniqueIndex:idx_user_permission" json:"user_id"`
	Codename  Permission `gorm:"size:100;uniqueIndex:idx_user_permission" json:"codename"`
	CreatedAt time.Time  `json:"created_at"`
}

func (UserPermission) TableName() string {
	return "user_permissions"
}
