package domain

import "time"

type Role string

const (
	RolePending   Role = "pending"
	RoleUser      Role = "user"
	RoleOrganizer Role = "organizer"
)

func (r Role) Valid() bool {
	switch r {
	case RolePending, RoleUser, RoleOrganizer:
		return true
	}
	return false
}

// Principal 已认证的调用方（由身份层提供，核心只读 id + role）
type Principal struct {
	UserID string
	Role   Role
}

func (p Principal) IsOrganizer() bool { return p.UserID != "" && p.Role == RoleOrganizer }

type User struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	Email         string    `gorm:"uniqueIndex;size:191;not null" json:"email"`
	FullName      string    `gorm:"size:128" json:"fullName"`
	PasswordHash  string    `gorm:"size:191;not null" json:"-"`
	Role          Role      `gorm:"size:16;not null;default:pending" json:"role"`
	PaymentMethod string    `gorm:"size:32" json:"paymentMethod,omitempty"`
	CardLastFour  string    `gorm:"size:4" json:"cardLastFour,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

func (u User) Principal() Principal { return Principal{UserID: u.ID, Role: u.Role} }
