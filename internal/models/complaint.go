package models

import "time"

// ComplaintStatus is a step of the complaint lifecycle:
// pending -> in_progress -> resolved -> closed.
type ComplaintStatus string

const (
	StatusPending    ComplaintStatus = "pending"
	StatusInProgress ComplaintStatus = "in_progress"
	StatusResolved   ComplaintStatus = "resolved"
	StatusClosed     ComplaintStatus = "closed"
)

// OpenStatuses count towards a resolver's workload.
var OpenStatuses = []ComplaintStatus{StatusPending, StatusInProgress}

func (s ComplaintStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Complaint is an issue filed by a user of an organization.
//
// ResolverID is set exactly when Status is in_progress, resolved or closed.
// Rating and Feedback are written once, when the filer closes a resolved
// complaint.
type Complaint struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	ComplaintID string `gorm:"column:complaint_id;size:30;uniqueIndex;not null" json:"complaint_id"`

	OrgID      uint  `gorm:"not null;index" json:"org_id"`
	UserID     uint  `gorm:"not null;index" json:"user_id"`
	ResolverID *uint `gorm:"index" json:"resolver_id,omitempty"`

	Category    string          `gorm:"size:50;not null" json:"category"`
	Description string          `gorm:"type:text;not null" json:"description"`
	Priority    Priority        `gorm:"size:20;not null;default:medium" json:"priority"`
	Status      ComplaintStatus `gorm:"size:30;not null;default:pending;index" json:"status"`

	ComplaintImage string `gorm:"size:255" json:"complaint_image,omitempty"`
	ProofImage     string `gorm:"size:255" json:"proof_image,omitempty"`
	ResolutionNote string `gorm:"type:text" json:"resolution_note,omitempty"`

	Rating   *int    `json:"rating,omitempty"`
	Feedback *string `gorm:"type:text" json:"feedback,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `gorm:"autoUpdateTime:false;index" json:"updated_at,omitempty"`
}

// ComplaintStats are the per-organization dashboard counters.
type ComplaintStats struct {
	Total            int64 `json:"total"`
	Pending          int64 `json:"pending"`
	InProgress       int64 `json:"in_progress"`
	Resolved         int64 `json:"resolved"`
	Closed           int64 `json:"closed"`
	OpenHighPriority int64 `json:"open_high_priority"`
}
