package entity

import (
	"time"

	"github.com/joseph-ayodele/billbot/constants"
)

// CompanyProfile is the seller printed on invoices. Every field is optional.
type CompanyProfile struct {
	Name    *string `json:"name,omitempty"`
	Address *string `json:"address,omitempty"`
	TaxID   *string `json:"tax_id,omitempty"`
	LogoRef *string `json:"logo_ref,omitempty"`
}

// Merge copies the non-nil fields of patch onto p.
func (p CompanyProfile) Merge(patch CompanyProfile) CompanyProfile {
	if patch.Name != nil {
		p.Name = patch.Name
	}
	if patch.Address != nil {
		p.Address = patch.Address
	}
	if patch.TaxID != nil {
		p.TaxID = patch.TaxID
	}
	if patch.LogoRef != nil {
		p.LogoRef = patch.LogoRef
	}
	return p
}

// IsEmpty reports whether no field is set.
func (p CompanyProfile) IsEmpty() bool {
	return p.Name == nil && p.Address == nil && p.TaxID == nil && p.LogoRef == nil
}

// LogEntry is one turn of the conversation.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Inbound   string    `json:"inbound"`
	Outbound  string    `json:"outbound"`
}

// User is the per-sender record.
type User struct {
	Identity        string          `json:"identity"`
	State           constants.State `json:"state"`
	OnboardingStep  int             `json:"onboarding_step"`
	Company         CompanyProfile  `json:"company_profile"`
	PendingOrder    *PartialOrder   `json:"pending_order,omitempty"`
	ConversationLog []LogEntry      `json:"conversation_log"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// NewUser returns a fresh record in state NEW.
func NewUser(identity string, now time.Time) *User {
	return &User{
		Identity:        identity,
		State:           constants.StateNew,
		OnboardingStep:  constants.OnboardingNotStarted,
		ConversationLog: []LogEntry{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Clone returns a deep copy so stores never hand out shared state.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Company = CompanyProfile{
		Name:    cloneString(u.Company.Name),
		Address: cloneString(u.Company.Address),
		TaxID:   cloneString(u.Company.TaxID),
		LogoRef: cloneString(u.Company.LogoRef),
	}
	c.PendingOrder = u.PendingOrder.Clone()
	c.ConversationLog = append([]LogEntry(nil), u.ConversationLog...)
	return &c
}

// UserUpdate is a partial update. Scalars replace, Company merges,
// PendingOrder is written only when SetPending is true (nil clears it).
type UserUpdate struct {
	State          *constants.State
	OnboardingStep *int
	Company        *CompanyProfile
	ResetCompany   bool
	SetPending     bool
	PendingOrder   *PartialOrder
}

// Apply mutates u according to upd and refreshes UpdatedAt.
func (u *User) Apply(upd UserUpdate, now time.Time) {
	if upd.State != nil {
		u.State = *upd.State
	}
	if upd.OnboardingStep != nil {
		u.OnboardingStep = *upd.OnboardingStep
	}
	if upd.ResetCompany {
		u.Company = CompanyProfile{}
	}
	if upd.Company != nil {
		u.Company = u.Company.Merge(*upd.Company)
	}
	if upd.SetPending {
		u.PendingOrder = upd.PendingOrder.Clone()
	}
	u.UpdatedAt = now
}

// AppendLog adds e and keeps only the newest max entries.
func (u *User) AppendLog(e LogEntry, max int, now time.Time) {
	u.ConversationLog = append(u.ConversationLog, e)
	if max > 0 && len(u.ConversationLog) > max {
		u.ConversationLog = append([]LogEntry(nil), u.ConversationLog[len(u.ConversationLog)-max:]...)
	}
	u.UpdatedAt = now
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
