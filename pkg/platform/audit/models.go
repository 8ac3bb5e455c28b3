package audit

import (
	"time"
)

// EventCategory classifies events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers state transitions with settlement or governance
	// significance: registration, votes, funding, insurance lifecycle.
	// These require durable storage and long retention.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers access-gate activity: operational toggles,
	// allow-list changes and trusted-caller checks.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers read-side activity useful for debugging.
	// These can be sampled.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from ledger logic for every state transition. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        string
	Category  EventCategory
	Timestamp time.Time
	// Action is one of the AuditEvent names below.
	Action string
	// Subject is the record the transition applies to: a principal address,
	// a flight key or an insurance key.
	Subject string
	// ActorID is the caller that invoked the operation.
	ActorID string
	// Before and After carry the values relevant to the transition
	// (flags, vote counts, states, amounts) rendered as strings.
	Before    string
	After     string
	Decision  string
	Reason    string
	RequestID string
}

type AuditEvent string

const (
	// Access gate events
	EventOperationalChanged AuditEvent = "operational_changed"
	EventCallerAuthorized   AuditEvent = "caller_authorized"
	EventCallerChecked      AuditEvent = "caller_checked"

	// Registry events
	EventRegistryBootstrapped AuditEvent = "registry_bootstrapped"
	EventAirlineCreated       AuditEvent = "airline_created"
	EventAirlineRegistered    AuditEvent = "airline_registered"
	EventVoteCast             AuditEvent = "vote_cast"
	EventVotesRead            AuditEvent = "votes_read"
	EventAirlineFunded        AuditEvent = "airline_funded"
	EventFundsReceived        AuditEvent = "funds_received"
	EventFlightKeyAdded       AuditEvent = "flight_key_added"

	// Insurance events
	EventInsuranceBuilt     AuditEvent = "insurance_built"
	EventInsurancePurchased AuditEvent = "insurance_purchased"
	EventInsuranceCredited  AuditEvent = "insurance_credited"
	EventFlightCredited     AuditEvent = "flight_credited"
	EventPayoutRequested    AuditEvent = "payout_requested"
)

// eventCategories maps each event to its category.
var eventCategories = map[AuditEvent]EventCategory{
	EventRegistryBootstrapped: CategoryCompliance,
	EventAirlineCreated:       CategoryCompliance,
	EventAirlineRegistered:    CategoryCompliance,
	EventVoteCast:             CategoryCompliance,
	EventAirlineFunded:        CategoryCompliance,
	EventFundsReceived:        CategoryCompliance,
	EventFlightKeyAdded:       CategoryCompliance,
	EventInsuranceBuilt:       CategoryCompliance,
	EventInsurancePurchased:   CategoryCompliance,
	EventInsuranceCredited:    CategoryCompliance,
	EventFlightCredited:       CategoryCompliance,
	EventPayoutRequested:      CategoryCompliance,

	EventOperationalChanged: CategorySecurity,
	EventCallerAuthorized:   CategorySecurity,
	EventCallerChecked:      CategorySecurity,

	EventVotesRead: CategoryOperations,
}

// Category returns the EventCategory for this event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}
