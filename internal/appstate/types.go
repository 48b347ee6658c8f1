package appstate

import "time"

// #region states

// State is the app-level navigation state.
type State string

const (
	Launching       State = "launching"
	SignedOut       State = "signedOut"
	NeedsOnboarding State = "needsOnboarding"
	Ready           State = "ready"
)

// Route is the root screen shown for a State.
type Route string

const (
	RouteLaunch     Route = "launch"
	RouteIntro      Route = "intro"
	RouteAuth       Route = "auth"
	RouteOnboarding Route = "onboarding"
	RouteHome       Route = "home"
)

// #endregion states

// #region onboarding

// Step is one onboarding milestone.
type Step string

const (
	StepBaseline     Step = "baseline"
	StepFirstCheckIn Step = "first_check_in"
)

// RequiredSteps lists the steps that must be complete before the app is ready.
func RequiredSteps() []Step {
	return []Step{StepBaseline, StepFirstCheckIn}
}

// OnboardingProgress is the read-only view of completed onboarding steps.
type OnboardingProgress interface {
	IsComplete(step Step) bool
}

// Steps is an in-memory OnboardingProgress.
type Steps map[Step]bool

// IsComplete reports whether step is marked.
func (s Steps) IsComplete(step Step) bool {
	return s[step]
}

// #endregion onboarding

// #region session

// Session is the signed-in account restored at launch.
type Session struct {
	UserID         string    `json:"user_id"`
	Email          string    `json:"email"`
	ExternalUserID string    `json:"external_user_id,omitempty"`
	DisplayName    string    `json:"display_name,omitempty"`
	SignedInAt     time.Time `json:"signed_in_at"`
}

// #endregion session

// #region events

// Event is an input to Reduce.
type Event interface {
	eventName() string
}

// LaunchDataLoaded carries the persisted session and onboarding progress read at startup.
// A nil Session means signed out; nil Onboarding counts as incomplete.
type LaunchDataLoaded struct {
	Session    *Session
	Onboarding OnboardingProgress
}

// OnboardingCompleted fires when the user finishes the last onboarding step.
type OnboardingCompleted struct{}

func (LaunchDataLoaded) eventName() string    { return "launchDataLoaded" }
func (OnboardingCompleted) eventName() string { return "onboardingCompleted" }

// #endregion events
