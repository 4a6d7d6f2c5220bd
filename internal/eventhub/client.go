package eventhub

import "actionflow/backend/internal/models"

// Client is one live dashboard connection.
type Client interface {
	// GetOrgID is the organization whose events the client receives.
	GetOrgID() uint
	GetAdminID() uint

	// GetSendChannel is where the hub pushes events for this client. The hub
	// never blocks on it.
	GetSendChannel() chan<- models.ComplaintEvent

	// Run starts the client's pumps.
	Run()
	// Close shuts the send channel; the write pump then closes the connection.
	Close()
}
