package config

import "time"

const (
	// Rating
	MinRating = 1
	MaxRating = 5

	// Auto-close
	DefaultAutoCloseAfter    = 72 * time.Hour
	DefaultAutoCloseInterval = 24 * time.Hour

	// Identifiers
	IDGenerationAttempts = 5

	// Filing
	OtherCategory     = "other"
	DefaultPriority   = "medium"
	MaxCategoryLength = 50

	// Uploads
	DefaultMaxUploadBytes   = 5 * 1024 * 1024
	ComplaintUploadSubdir   = "complaint"
	ProofUploadSubdir       = "proof"
	NotificationQueueKey    = "actionflow:notifications"
	ComplaintEventsChannel  = "actionflow:complaint-events"
	NotificationSendTimeout = 10 * time.Second
)

// DefaultImageExtensions are accepted for complaint and proof images.
var DefaultImageExtensions = []string{"jpg", "jpeg", "png", "webp"}
