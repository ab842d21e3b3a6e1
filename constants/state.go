package constants

// State is the conversation state stored on a user record.
type State string

// Stable values (store these exact strings in DB).
const (
	StateNew          State = "NEW"           // first contact, nothing collected yet
	StateOnboarding   State = "ONBOARDING"    // collecting the company profile
	StateReady        State = "READY"         // waiting for an order
	StateAwaitingInfo State = "AWAITING_INFO" // a partial order is pending

	// StateCollectingOrder is never written. Records carrying it are treated as AWAITING_INFO.
	StateCollectingOrder State = "COLLECTING_ORDER"
)

// IsAwaiting reports whether s holds a pending order.
func (s State) IsAwaiting() bool {
	return s == StateAwaitingInfo || s == StateCollectingOrder
}

// TakesOrders reports whether messages in s go through the order pipeline.
func (s State) TakesOrders() bool {
	return s == StateReady || s.IsAwaiting()
}

// Onboarding steps.
const (
	OnboardingNotStarted = 0
	OnboardingName       = 1
	OnboardingAddress    = 2
	OnboardingTaxID      = 3
)

// MaxConversationLog bounds the per-user conversation log.
const MaxConversationLog = 10
