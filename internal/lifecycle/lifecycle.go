// Package lifecycle is the complaint state machine.
//
// A complaint only moves forward:
//
//	pending -> in_progress -> resolved -> closed
//
// Each legal step is described by a Transition. A Transition knows its
// precondition (the status it leaves, plus the write-once feedback guard) and
// the columns it writes, so the store can apply it as one conditional update
// and the service can re-check it when that update loses a race.
package lifecycle

import (
	"strings"
	"time"

	"actionflow/backend/internal/apperr"
	"actionflow/backend/internal/config"
	"actionflow/backend/internal/models"
)

var next = map[models.ComplaintStatus]models.ComplaintStatus{
	models.StatusPending:    models.StatusInProgress,
	models.StatusInProgress: models.StatusResolved,
	models.StatusResolved:   models.StatusClosed,
}

// CanMove reports whether from -> to is a legal step.
func CanMove(from, to models.ComplaintStatus) bool {
	n, ok := next[from]
	return ok && n == to
}

// Transition is one step of the state machine with its side effects.
type Transition struct {
	Name string
	From models.ComplaintStatus
	To   models.ComplaintStatus
	// RequireUnrated also requires rating to be unset at commit time.
	RequireUnrated bool

	resolverID     *uint
	resolutionNote string
	proofImage     string
	rating         *int
	feedback       *string
}

// Assign moves a pending complaint to in_progress under resolverID.
func Assign(resolverID uint) (Transition, error) {
	if resolverID == 0 {
		return Transition{}, apperr.Validation("resolver id is required")
	}
	id := resolverID
	return Transition{
		Name:       "assign",
		From:       models.StatusPending,
		To:         models.StatusInProgress,
		resolverID: &id,
	}, nil
}

// Resolve moves an in_progress complaint to resolved. Both the note and the
// stored proof image are required.
func Resolve(note, proofImage string) (Transition, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return Transition{}, apperr.Validation("resolution note is required")
	}
	if proofImage == "" {
		return Transition{}, apperr.Validation("proof image is required")
	}
	return Transition{
		Name:           "resolve",
		From:           models.StatusInProgress,
		To:             models.StatusResolved,
		resolutionNote: note,
		proofImage:     proofImage,
	}, nil
}

// Feedback closes a resolved complaint with the filer's rating and optional
// comment.
func Feedback(rating int, comment string) (Transition, error) {
	if rating < config.MinRating || rating > config.MaxRating {
		return Transition{}, apperr.Validation("rating must be between %d and %d", config.MinRating, config.MaxRating)
	}
	r := rating
	var fb *string
	if comment = strings.TrimSpace(comment); comment != "" {
		fb = &comment
	}
	return Transition{
		Name:           "submit feedback",
		From:           models.StatusResolved,
		To:             models.StatusClosed,
		RequireUnrated: true,
		rating:         &r,
		feedback:       fb,
	}, nil
}

// AutoClose closes a resolved complaint without feedback.
func AutoClose() Transition {
	return Transition{
		Name: "auto-close",
		From: models.StatusResolved,
		To:   models.StatusClosed,
	}
}

// ResolverID is the resolver an assign transition sets, or nil.
func (t Transition) ResolverID() *uint { return t.resolverID }

// Rating is the rating a feedback transition records, or nil.
func (t Transition) Rating() *int { return t.rating }

// Check evaluates the precondition against c as last read.
func (t Transition) Check(c *models.Complaint) error {
	if t.RequireUnrated && c.Rating != nil {
		return apperr.AlreadyProvided("feedback already provided for complaint %s", c.ComplaintID)
	}
	if c.Status != t.From {
		return apperr.InvalidState("cannot %s complaint %s: expected status %s, got %s", t.Name, c.ComplaintID, t.From, c.Status)
	}
	return nil
}

// Stale is reported when the conditional update matched no row although the
// complaint as re-read still passes Check.
func (t Transition) Stale(c *models.Complaint) error {
	return apperr.InvalidState("complaint %s is no longer in expected state %s", c.ComplaintID, t.From)
}

// Columns are the values written by the conditional update, keyed by column.
func (t Transition) Columns(at time.Time) map[string]interface{} {
	cols := map[string]interface{}{
		"status":     string(t.To),
		"updated_at": at,
	}
	if t.resolverID != nil {
		cols["resolver_id"] = *t.resolverID
	}
	if t.resolutionNote != "" {
		cols["resolution_note"] = t.resolutionNote
	}
	if t.proofImage != "" {
		cols["proof_image"] = t.proofImage
	}
	if t.rating != nil {
		cols["rating"] = *t.rating
	}
	if t.feedback != nil {
		cols["feedback"] = *t.feedback
	}
	return cols
}

// Apply mirrors a committed transition onto the in-memory complaint.
func (t Transition) Apply(c *models.Complaint, at time.Time) {
	c.Status = t.To
	c.UpdatedAt = &at
	if t.resolverID != nil {
		id := *t.resolverID
		c.ResolverID = &id
	}
	if t.resolutionNote != "" {
		c.ResolutionNote = t.resolutionNote
	}
	if t.proofImage != "" {
		c.ProofImage = t.proofImage
	}
	if t.rating != nil {
		r := *t.rating
		c.Rating = &r
	}
	if t.feedback != nil {
		fb := *t.feedback
		c.Feedback = &fb
	}
}

// EventType is the event published once t commits.
func (t Transition) EventType() models.EventType {
	switch {
	case t.From == models.StatusPending:
		return models.EventAssigned
	case t.To == models.StatusResolved:
		return models.EventResolved
	case t.RequireUnrated:
		return models.EventClosed
	default:
		return models.EventAutoClosed
	}
}
