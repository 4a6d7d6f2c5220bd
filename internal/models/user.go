package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type UserStatus string

const (
	UserActive   UserStatus = "active"
	UserInactive UserStatus = "inactive"
)

// User files complaints. Credentials are owned by the auth service; only the
// fields the complaint core reads are mapped here.
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	OrgID    uint   `gorm:"not null;index" json:"org_id"`
	FullName string `gorm:"size:120;not null" json:"full_name"`
	Email    string `gorm:"size:120;uniqueIndex;not null" json:"email"`
	// Status is toggled by admins; an inactive user cannot file complaints.
	Status    UserStatus `gorm:"size:20;not null;default:active" json:"status"`
	CreatedAt time.Time  `json:"created_at"`
}

// Admin manages an organization. The earliest created admin is its primary
// admin.
type Admin struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrgID     uint      `gorm:"not null;index" json:"org_id"`
	FullName  string    `gorm:"size:120;not null" json:"full_name"`
	Email     string    `gorm:"size:120;uniqueIndex;not null" json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate normalises the email so lookups are case-insensitive.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return
}

func (a *Admin) BeforeCreate(tx *gorm.DB) (err error) {
	a.Email = strings.ToLower(strings.TrimSpace(a.Email))
	return
}
