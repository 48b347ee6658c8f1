package appstate

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is wrapped by every TransitionError.
var ErrInvalidTransition = errors.New("invalid app state transition")

// TransitionError reports an event applied in a state that does not accept it.
type TransitionError struct {
	From  State
	Event string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s from %s", ErrInvalidTransition, e.Event, e.From)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// Reduce applies event to s. Undefined (state, event) pairs return s unchanged with a
// *TransitionError; the result is always one of the four states. Pointer events are
// accepted like their values, and a nil pointer counts as a nil event.
func Reduce(s State, event Event) (State, error) {
	event = deref(event)
	switch ev := event.(type) {
	case LaunchDataLoaded:
		if s != Launching {
			return s, invalid(s, event)
		}
		switch {
		case ev.Session == nil:
			return SignedOut, nil
		case !OnboardingDone(ev.Onboarding):
			return NeedsOnboarding, nil
		default:
			return Ready, nil
		}
	case OnboardingCompleted:
		if s != NeedsOnboarding {
			return s, invalid(s, event)
		}
		return Ready, nil
	default:
		return s, invalid(s, event)
	}
}

// OnboardingDone reports whether every required step is complete. Nil progress is incomplete.
func OnboardingDone(p OnboardingProgress) bool {
	if p == nil {
		return false
	}
	for _, step := range RequiredSteps() {
		if !p.IsComplete(step) {
			return false
		}
	}
	return true
}

// RootRoute projects s to its root screen. Only SignedOut depends on hasSeenIntro.
func RootRoute(s State, hasSeenIntro bool) Route {
	switch s {
	case SignedOut:
		if hasSeenIntro {
			return RouteAuth
		}
		return RouteIntro
	case NeedsOnboarding:
		return RouteOnboarding
	case Ready:
		return RouteHome
	default:
		return RouteLaunch
	}
}

// deref turns pointer events into values. Typed nil pointers become a nil Event.
func deref(event Event) Event {
	switch ev := event.(type) {
	case *LaunchDataLoaded:
		if ev == nil {
			return nil
		}
		return *ev
	case *OnboardingCompleted:
		if ev == nil {
			return nil
		}
		return *ev
	}
	return event
}

func invalid(s State, event Event) error {
	name := "<nil>"
	if event != nil {
		name = event.eventName()
	}
	return &TransitionError{From: s, Event: name}
}
