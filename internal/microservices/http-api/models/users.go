package models

import (
	"errors"
	"time"

	"yamdb/internal/microservices/http-api/policy"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrSuperuserRole is returned when something tries to move a superuser off the admin role.
var ErrSuperuserRole = errors.New("a superuser always has the admin role")

type User struct {
	ID          string      `gorm:"primaryKey;type:uuid" json:"id"`
	Username    string      `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email       string      `gorm:"uniqueIndex;size:254;not null" json:"email"`
	FirstName   string      `gorm:"size:150" json:"first_name"`
	LastName    string      `gorm:"size:150" json:"last_name"`
	Bio         string      `gorm:"type:text" json:"bio"`
	Role        policy.Role `gorm:"type:varchar(16);default:'user';not null" json:"role"`
	IsSuperuser bool        `gorm:"default:false;not null" json:"-"`

	// bcrypt hash of the last confirmation code sent; nil once exchanged
	ConfirmationCode   *string    `gorm:"column:confirmation_code_hash" json:"-"`
	ConfirmationSentAt *time.Time `json:"-"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

// NewUser builds an ordinary user with the default role.
func NewUser(username, email string) *User {
	return &User{
		ID:       uuid.New().String(),
		Username: username,
		Email:    email,
		Role:     policy.RoleUser,
	}
}

// PromoteSuperuser marks the user as superuser, which implies the admin role.
func (u *User) PromoteSuperuser() {
	u.IsSuperuser = true
	u.Role = policy.RoleAdmin
}

// SetRole changes the role while keeping superusers on admin.
func (u *User) SetRole(r policy.Role) error {
	if !r.Valid() {
		return errors.New("unknown role " + string(r))
	}
	if u.IsSuperuser && r != policy.RoleAdmin {
		return ErrSuperuserRole
	}
	u.Role = r
	return nil
}

// Actor returns the policy view of this user.
func (u *User) Actor() policy.Actor {
	return policy.AuthenticatedAs(u.ID, u.Username, u.Role)
}

func (u *User) OwnerID() string {
	return u.ID
}

// BeforeCreate hook to set UUID before creating a User
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.Role == "" {
		u.Role = policy.RoleUser
	}
	return
}

func (User) TableName() string {
	return "users"
}
