package models

import (
	"strings"
	"time"

	"actionflow/backend/internal/ids"

	"gorm.io/gorm"
)

// Organization is the tenant boundary. Every admin, user, resolver and
// complaint belongs to exactly one.
type Organization struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	OrgUniqueID  string    `gorm:"size:20;uniqueIndex;not null" json:"org_unique_id"`
	OrgName      string    `gorm:"size:150;not null" json:"org_name"`
	Category     string    `gorm:"size:50;not null" json:"category"`
	Website      string    `gorm:"size:150" json:"website,omitempty"`
	ContactEmail string    `gorm:"size:120;not null" json:"contact_email"`
	Phone        string    `gorm:"size:20" json:"phone,omitempty"`
	Address      string    `gorm:"type:text" json:"address,omitempty"`
	Status       string    `gorm:"size:20;default:active" json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// BeforeCreate fills in a generated OrgUniqueID when the caller left it empty.
func (o *Organization) BeforeCreate(tx *gorm.DB) (err error) {
	if o.OrgUniqueID == "" {
		o.OrgUniqueID = ids.NewOrganizationID()
	}
	o.ContactEmail = strings.ToLower(strings.TrimSpace(o.ContactEmail))
	return
}

// WebsiteURL returns the website with a scheme, or "" when unset.
func (o *Organization) WebsiteURL() string {
	if o.Website == "" {
		return ""
	}
	if strings.HasPrefix(o.Website, "http") {
		return o.Website
	}
	return "https://" + o.Website
}
