package conversation

import (
	"context"
	"strings"

	"github.com/joseph-ayodele/billbot/constants"
	"github.com/joseph-ayodele/billbot/internal/entity"
)

func (m *Machine) welcome(ctx context.Context, u *entity.User) (Reply, error) {
	err := m.update(ctx, u.Identity, entity.UserUpdate{
		State:          statePtr(constants.StateOnboarding),
		OnboardingStep: intPtr(constants.OnboardingName),
	})
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: replyWelcome}, nil
}

// onboard collects name, address and GSTIN in that order. "skip" leaves the
// optional fields unset; company updates are merges.
func (m *Machine) onboard(ctx context.Context, u *entity.User, text string) (Reply, error) {
	value := strings.TrimSpace(text)

	switch u.OnboardingStep {
	case constants.OnboardingNotStarted, constants.OnboardingName:
		if value == "" {
			return Reply{Text: replyAskName}, nil
		}
		err := m.update(ctx, u.Identity, entity.UserUpdate{
			OnboardingStep: intPtr(constants.OnboardingAddress),
			Company:        &entity.CompanyProfile{Name: strPtr(value)},
		})
		if err != nil {
			return Reply{}, err
		}
		return Reply{Text: replyNameStored(value)}, nil

	case constants.OnboardingAddress:
		upd := entity.UserUpdate{OnboardingStep: intPtr(constants.OnboardingTaxID)}
		if value != "" && !constants.IsSkip(value) {
			upd.Company = &entity.CompanyProfile{Address: strPtr(value)}
		}
		if err := m.update(ctx, u.Identity, upd); err != nil {
			return Reply{}, err
		}
		return Reply{Text: replyAskTaxID}, nil

	case constants.OnboardingTaxID:
		upd := entity.UserUpdate{State: statePtr(constants.StateReady)}
		if value != "" && !constants.IsSkip(value) {
			upd.Company = &entity.CompanyProfile{TaxID: strPtr(value)}
		}
		if err := m.update(ctx, u.Identity, upd); err != nil {
			return Reply{}, err
		}
		return Reply{Text: replySetupComplete}, nil
	}

	m.logger.Warn("conversation.onboarding.bad_step", "identity", u.Identity, "step", u.OnboardingStep)
	return Reply{Text: replyUnknownState}, nil
}
