package services

import (
	"strings"
)

// RequestStatus is the closed lifecycle state set of a lab request.
type RequestStatus string

const (
	StatusDraft             RequestStatus = "draft"
	StatusPendingApproval   RequestStatus = "pending_approval"
	StatusAwaitingShipment  RequestStatus = "awaiting_shipment"
	StatusInTransit         RequestStatus = "in_transit"
	StatusArrivedAtProvider RequestStatus = "arrived_at_provider"
	StatusInProgress        RequestStatus = "in_progress"
	StatusValidationPending RequestStatus = "validation_pending"
	StatusCompleted         RequestStatus = "completed"
)

// legacyStatusSubmitted predates the logistics states; historical rows and
// inbound payloads still carry it.
const legacyStatusSubmitted = "submitted"

var allStatuses = map[RequestStatus]bool{
	StatusDraft:             true,
	StatusPendingApproval:   true,
	StatusAwaitingShipment:  true,
	StatusInTransit:         true,
	StatusArrivedAtProvider: true,
	StatusInProgress:        true,
	StatusValidationPending: true,
	StatusCompleted:         true,
}

// NormalizeStatus maps a raw status string to its canonical RequestStatus.
// The legacy "submitted" value is a synonym for arrived_at_provider.
func NormalizeStatus(raw string) (RequestStatus, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == legacyStatusSubmitted {
		return StatusArrivedAtProvider, true
	}
	status := RequestStatus(s)
	return status, allStatuses[status]
}

// IsTerminal reports whether the status has no outgoing edges.
func (s RequestStatus) IsTerminal() bool {
	return s == StatusCompleted
}

func (s RequestStatus) String() string {
	return string(s)
}
