package models

import "time"

// Role is the site-wide role of a user.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// User represents a registered account.
type User struct {
	ID          uint      `json:"-" gorm:"primaryKey"`
	Username    string    `json:"username" gorm:"uniqueIndex;type:varchar(150);not null"`
	Email       string    `json:"email" gorm:"index;type:varchar(254);not null"`
	Role        Role      `json:"role" gorm:"type:varchar(20);not null;default:'user'"`
	IsSuperuser bool      `json:"-" gorm:"not null;default:false"`
	Bio         string    `json:"bio" gorm:"type:text"`
	FirstName   string    `json:"first_name" gorm:"type:varchar(150)"`
	LastName    string    `json:"last_name" gorm:"type:varchar(150)"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

// IsAdmin is true for superusers and users holding the admin role.
func (u *User) IsAdmin() bool {
	return u.IsSuperuser || u.Role == RoleAdmin
}

// IsModerator is true for users holding the moderator role.
func (u *User) IsModerator() bool {
	return u.Role == RoleModerator
}

// EmailVerification holds the pending confirmation code for a username.
// CodeHash is a bcrypt hash of the 4-digit code sent by email.
type EmailVerification struct {
	ID        uint   `gorm:"primaryKey"`
	Username  string `gorm:"uniqueIndex;type:varchar(150);not null"`
	CodeHash  string `gorm:"type:varchar(100);not null"`
	UpdatedAt time.Time
}
