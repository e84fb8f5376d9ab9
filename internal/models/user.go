package models

import "strings"

// Role distinguishes the two kinds of platform accounts.
type Role string

const (
	RoleDonor Role = "donor"
	RoleNGO   Role = "ngo"
)

// ParseRole normalises a role string, reporting whether it names a known role.
func ParseRole(value string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(value)))
	switch role {
	case RoleDonor, RoleNGO:
		return role, true
	default:
		return "", false
	}
}

// User is a donor or NGO account. Role is fixed at signup.
type User struct {
	BaseModel

	Name     string `gorm:"type:varchar(120);not null" json:"name"`
	Email    string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`
	MobileNo string `gorm:"type:varchar(32)" json:"mobile_no"`
	Location string `gorm:"type:text" json:"location"`
	Role     Role   `gorm:"type:varchar(16);not null;index" json:"role"`
}

// TableName keeps the collection name used by the rest of the platform.
func (User) TableName() string { return "users" }

// IsDonor reports whether the account posts donations.
func (u *User) IsDonor() bool { return u != nil && u.Role == RoleDonor }

// IsNGO reports whether the account claims donations.
func (u *User) IsNGO() bool { return u != nil && u.Role == RoleNGO }
