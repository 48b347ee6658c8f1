package session

import (
	"fmt"

	"github.com/danielpatrickdp/adaptive-state/wellness-core/internal/appstate"
)

// LaunchData reads the persisted session and onboarding progress into the launch event.
func LaunchData(accounts *AccountStore, onboarding *OnboardingStore) (appstate.LaunchDataLoaded, error) {
	s, err := accounts.RestoreSession()
	if err != nil {
		return appstate.LaunchDataLoaded{}, fmt.Errorf("launch data: %w", err)
	}
	ev := appstate.LaunchDataLoaded{Session: s}
	if onboarding != nil {
		ev.Onboarding = onboarding
	}
	return ev, nil
}
