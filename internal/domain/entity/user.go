package entity

import (
	"time"

	"github.com/hoshigumi/clubpos-api/internal/domain/enum"
	"gorm.io/gorm"
)

// User represents a back-office or cast account. Roles map
// deterministically onto capability sets; the core never looks at the
// role itself, only at the caps resolved by the auth layer.
type User struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	Name     string    `gorm:"size:100;not null" json:"name"`
	Email    string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password string    `gorm:"size:255" json:"-"`
	Role     enum.Role `gorm:"size:20;not null;default:staff" json:"role"`

	// PrimaryStoreID is the fallback when no store header is sent
	PrimaryStoreID *uint `gorm:"index" json:"primary_store_id,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Stores the user is a member of
	Stores []Store `gorm:"many2many:user_stores" json:"stores,omitempty"`
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// Caps returns the capability set for the user's role
func (u *User) Caps() []enum.Capability {
	return u.Role.Caps()
}

// MemberOf reports whether the user belongs to the given store
func (u *User) MemberOf(storeID uint) bool {
	if u.PrimaryStoreID != nil && *u.PrimaryStoreID == storeID {
		return true
	}
	for _, s := range u.Stores {
		if s.ID == storeID {
			return true
		}
	}
	return false
}
