package session

import (
	"errors"

	"github.com/danielpatrickdp/adaptive-state/wellness-core/internal/appstate"
)

const onboardingKey = "onboarding/step/"

// OnboardingStore records completed onboarding steps. It satisfies appstate.OnboardingProgress.
type OnboardingStore struct {
	kv KV
}

var _ appstate.OnboardingProgress = (*OnboardingStore)(nil)

// NewOnboardingStore wraps kv.
func NewOnboardingStore(kv KV) *OnboardingStore {
	return &OnboardingStore{kv: kv}
}

// MarkComplete records step as done. Marking twice is a no-op.
func (o *OnboardingStore) MarkComplete(step appstate.Step) error {
	return o.kv.Save(onboardingKey+string(step), []byte("1"))
}

// IsComplete reports whether step was marked. Read errors count as incomplete.
func (o *OnboardingStore) IsComplete(step appstate.Step) bool {
	_, err := o.kv.Load(onboardingKey + string(step))
	return err == nil
}

// Reset clears every required step.
func (o *OnboardingStore) Reset() error {
	var errs []error
	for _, step := range appstate.RequiredSteps() {
		errs = append(errs, o.kv.Delete(onboardingKey+string(step)))
	}
	return errors.Join(errs...)
}
