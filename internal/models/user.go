package models

import (
	"time"
)

// User roles.
const (
	RoleAdmin    = "ADMIN"
	RoleManager  = "MANAGER"
	RoleOperator = "OPERATOR"
	RoleViewer   = "VIEWER"
)

// User account statuses.
const (
	UserActive    = "ACTIVE"
	UserInactive  = "INACTIVE"
	UserSuspended = "SUSPENDED"
)

type User struct {
	ID        uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Username  string     `gorm:"column:username;size:50;uniqueIndex;not null" json:"username"`
	Email     string     `gorm:"column:email;size:255;uniqueIndex;not null" json:"email"`
	Password  string     `gorm:"column:password;size:255;not null" json:"-"`
	FullName  string     `gorm:"column:full_name;size:255;not null" json:"full_name"`
	Role      string     `gorm:"column:role;size:20;default:VIEWER;index" json:"role"`
	Status    string     `gorm:"column:status;size:20;default:ACTIVE;index" json:"status"`
	LastLogin *time.Time `gorm:"column:last_login" json:"last_login"`
	CreatedBy *uint      `gorm:"column:created_by" json:"created_by"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
