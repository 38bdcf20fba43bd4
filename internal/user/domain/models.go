package domain

import "time"

// Role is the production (or administrative) role a user works under.
type Role string

const (
	RoleAdmin       Role = "Admin"
	RoleMeasurement Role = "Measurement"
	RoleCutting     Role = "Cutting"
	RoleShirtMaker  Role = "Shirt Maker"
	RolePantMaker   Role = "Pant Maker"
	RoleCoatMaker   Role = "Coat Maker"
	RoleFinishing   Role = "Finishing"
	RolePress       Role = "Press"
)

var allRoles = map[Role]struct{}{
	RoleAdmin:       {},
	RoleMeasurement: {},
	RoleCutting:     {},
	RoleShirtMaker:  {},
	RolePantMaker:   {},
	RoleCoatMaker:   {},
	RoleFinishing:   {},
	RolePress:       {},
}

func (r Role) Valid() bool {
	_, ok := allRoles[r]
	return ok
}

// Administrative roles never receive work payouts.
func (r Role) Administrative() bool {
	return r == RoleAdmin
}

// RateKeyword maps a role to the keyword used against the rate table.
func (r Role) RateKeyword() string {
	switch r {
	case RoleMeasurement:
		return "Measurement"
	case RoleCutting:
		return "Cutting"
	case RoleShirtMaker, RolePantMaker, RoleCoatMaker:
		return "Maker"
	case RoleFinishing:
		return "Button"
	case RolePress:
		return "Press"
	default:
		return ""
	}
}

type Status string

const (
	StatusActive  Status = "Active"
	StatusBlocked Status = "Blocked"
)

// User carries the two independent parent pointers. Neither is guaranteed
// acyclic; chain walks guard against cycles.
type User struct {
	ID            string  `gorm:"primaryKey" json:"id"`
	Name          string  `gorm:"type:text;not null" json:"name"`
	Mobile        string  `gorm:"type:text;not null;index" json:"mobile"`
	Role          Role    `gorm:"type:text;not null" json:"role"`
	Status        Status  `gorm:"type:text;not null" json:"status"`
	UplineID      *string `gorm:"index" json:"uplineId,omitempty"`
	MagicUplineID *string `gorm:"index" json:"magicUplineId,omitempty"`
	Password      string  `gorm:"type:text;not null" json:"-"`
	CanWithdraw   bool    `gorm:"not null;default:true" json:"canWithdraw"`

	JoinedAt  time.Time `gorm:"not null" json:"joinedAt"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
}

func (User) TableName() string { return "users" }
