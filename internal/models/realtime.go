package models

import "time"

type EventType string

const (
	EventFiled      EventType = "complaint_filed"
	EventAssigned   EventType = "complaint_assigned"
	EventResolved   EventType = "complaint_resolved"
	EventClosed     EventType = "complaint_closed"
	EventAutoClosed EventType = "complaint_auto_closed"
)

// ComplaintEvent is broadcast to admin dashboards after a transition commits.
type ComplaintEvent struct {
	Type        EventType       `json:"type"`
	OrgID       uint            `json:"org_id"`
	ID          uint            `json:"id"`
	ComplaintID string          `json:"complaint_id"`
	Status      ComplaintStatus `json:"status"`
	Priority    Priority        `json:"priority"`
	ResolverID  *uint           `json:"resolver_id,omitempty"`
	At          time.Time       `json:"at"`
}

func NewComplaintEvent(t EventType, c *Complaint, at time.Time) ComplaintEvent {
	return ComplaintEvent{
		Type:        t,
		OrgID:       c.OrgID,
		ID:          c.ID,
		ComplaintID: c.ComplaintID,
		Status:      c.Status,
		Priority:    c.Priority,
		ResolverID:  c.ResolverID,
		At:          at,
	}
}

type NotificationKind string

const (
	NotifyOrganizationRegistered NotificationKind = "organization_registered"
	NotifyAutoAssigned           NotificationKind = "auto_assigned"
	NotifyPasswordReset          NotificationKind = "password_reset"
	NotifyComplaintResolved      NotificationKind = "complaint_resolved"
)

// Notification is one outbound message waiting for delivery.
type Notification struct {
	Recipient string            `json:"recipient"`
	Kind      NotificationKind  `json:"kind"`
	Lang      string            `json:"lang,omitempty"`
	Payload   map[string]string `json:"payload"`
}
