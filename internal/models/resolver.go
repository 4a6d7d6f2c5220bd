package models

import "time"

type ResolverStatus string

const (
	ResolverActive   ResolverStatus = "active"
	ResolverInactive ResolverStatus = "inactive"
)

// Resolver works complaints of one category for one organization. Resolvers
// never log in.
type Resolver struct {
	ID       uint           `gorm:"primaryKey" json:"id"`
	OrgID    uint           `gorm:"not null;index" json:"org_id"`
	Name     string         `gorm:"size:120;not null" json:"name"`
	Email    string         `gorm:"size:120" json:"email"`
	Category string         `gorm:"size:50;index" json:"category"`
	Status   ResolverStatus `gorm:"size:20;not null;default:active" json:"status"`
	// Rating is the mean of every rating left on the resolver's closed
	// complaints, nil until the first one.
	Rating    *float64  `json:"rating,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
