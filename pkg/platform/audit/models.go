package audit

import (
	"time"

	id "presale/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose so sinks can
// apply different retention and routing.
type EventCategory string

const (
	// CategoryCompliance covers account lifecycle and privilege changes.
	CategoryCompliance EventCategory = "compliance"
	// CategorySecurity covers failed logins, rate limiting and rejected verifications.
	CategorySecurity EventCategory = "security"
	// CategoryOperations covers routine activity such as listing changes.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory `json:"category"`
	Timestamp time.Time     `json:"timestamp"`
	UserID    id.UserID     `json:"user_id"`
	Subject   string        `json:"subject,omitempty"`
	Action    string        `json:"action"`
	Decision  string        `json:"decision,omitempty"`
	Reason    string        `json:"reason,omitempty"`
	RequestID string        `json:"request_id,omitempty"`
	// ActorID is set when someone other than UserID performed the action,
	// e.g. a superadmin promoting a user.
	ActorID string `json:"actor_id,omitempty"`
}

type AuditEvent string

const (
	// Account events
	EventUserCreated      AuditEvent = "user_created"
	EventUserUpdated      AuditEvent = "user_updated"
	EventUserDeleted      AuditEvent = "user_deleted"
	EventUserPromoted     AuditEvent = "user_promoted"
	EventUserDemoted      AuditEvent = "user_demoted"
	EventUserDeactivated  AuditEvent = "user_deactivated"
	EventSuperAdminSeeded AuditEvent = "superadmin_seeded"

	// Session events
	EventSessionCreated AuditEvent = "session_created"
	EventSessionRevoked AuditEvent = "session_revoked"
	EventAuthFailed     AuditEvent = "auth_failed"

	// Licence verification events
	EventRealtorVerified       AuditEvent = "realtor_verified"
	EventRealtorVerifyRejected AuditEvent = "realtor_verification_rejected"
	EventRealtorVerifyErrored  AuditEvent = "realtor_verification_unavailable"
	EventRateLimitHit          AuditEvent = "rate_limited"

	// Listing events
	EventListingCreated AuditEvent = "listing_created"
	EventListingUpdated AuditEvent = "listing_updated"
	EventListingDeleted AuditEvent = "listing_deleted"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventUserCreated:      CategoryCompliance,
	EventUserUpdated:      CategoryCompliance,
	EventUserDeleted:      CategoryCompliance,
	EventUserPromoted:     CategoryCompliance,
	EventUserDemoted:      CategoryCompliance,
	EventUserDeactivated:  CategoryCompliance,
	EventSuperAdminSeeded: CategoryCompliance,
	EventRealtorVerified:  CategoryCompliance,

	EventAuthFailed:            CategorySecurity,
	EventSessionRevoked:        CategorySecurity,
	EventRealtorVerifyRejected: CategorySecurity,
	EventRateLimitHit:          CategorySecurity,

	EventSessionCreated:       CategoryOperations,
	EventRealtorVerifyErrored: CategoryOperations,
	EventListingCreated:       CategoryOperations,
	EventListingUpdated:       CategoryOperations,
	EventListingDeleted:       CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}
