package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/danielpatrickdp/adaptive-state/wellness-core/internal/appstate"
	"github.com/danielpatrickdp/adaptive-state/wellness-core/internal/present"
	"github.com/danielpatrickdp/adaptive-state/wellness-core/internal/session"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// userNamespace scopes user ids derived from an email.
var userNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("wellness-core/session/user"))

var (
	seenIntro  bool
	emailFlag  string
	externalID string
	nameFlag   string
	stepsFlag  []string
)

// #region commands

var launchCmd = &cobra.Command{
	Use:   "launch",
	Short: "Resolve the app state and root route from persisted session data",
	Args:  cobra.NoArgs,
	RunE:  runLaunch,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Persist a signed-in session",
	Args:  cobra.NoArgs,
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the persisted session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStores(func(accounts *session.AccountStore, _ *session.OnboardingStore) error {
			if err := accounts.SignOut(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "signed out")
			return nil
		})
	},
}

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Mark onboarding steps complete and advance the app state",
	Args:  cobra.NoArgs,
	RunE:  runOnboard,
}

func init() {
	launchCmd.Flags().BoolVar(&seenIntro, "seen-intro", false, "The intro screen was already shown")
	loginCmd.Flags().StringVar(&emailFlag, "email", "", "Account email (required)")
	loginCmd.Flags().StringVar(&externalID, "external-id", "", "User id issued by the identity provider")
	loginCmd.Flags().StringVar(&nameFlag, "name", "", "Display name")
	loginCmd.MarkFlagRequired("email")
	onboardCmd.Flags().StringSliceVar(&stepsFlag, "step", nil, "Step to mark complete (default: all required steps)")
}

// #endregion commands

// #region run

func runLaunch(cmd *cobra.Command, args []string) error {
	return withStores(func(accounts *session.AccountStore, onboarding *session.OnboardingStore) error {
		s, err := launchState(accounts, onboarding)
		if err != nil {
			return err
		}
		if jsonOut {
			return printProto(cmd.OutOrStdout(), present.Route(s, seenIntro))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "state: %s\nroute: %s\n", s, appstate.RootRoute(s, seenIntro))
		current, err := accounts.RestoreSession()
		if err != nil {
			return err
		}
		if current != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "user: %s\n", displayUser(current))
		}
		return nil
	})
}

func runLogin(cmd *cobra.Command, args []string) error {
	return withStores(func(accounts *session.AccountStore, _ *session.OnboardingStore) error {
		ext := externalID
		if ext == "" {
			known, err := accounts.KnownAccount(emailFlag)
			if err == nil {
				ext = known
			}
		}
		s := appstate.Session{
			UserID:         uuid.NewSHA1(userNamespace, []byte(emailFlag)).String(),
			Email:          emailFlag,
			ExternalUserID: ext,
			DisplayName:    strings.TrimSpace(nameFlag),
			SignedInAt:     time.Now().UTC(),
		}
		if err := accounts.SaveSession(s); err != nil {
			return err
		}
		if ext != "" {
			if err := accounts.RememberAccount(emailFlag, ext); err != nil {
				return err
			}
		}
		logger.Info("signed in", zap.String("user_id", s.UserID), zap.Bool("known_account", ext != ""))
		fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s (%s)\n", s.Email, s.UserID)
		if s.DisplayName != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "name: %s\n", s.DisplayName)
		}
		return nil
	})
}

func runOnboard(cmd *cobra.Command, args []string) error {
	return withStores(func(accounts *session.AccountStore, onboarding *session.OnboardingStore) error {
		before, err := launchState(accounts, onboarding)
		if err != nil {
			return err
		}

		steps := appstate.RequiredSteps()
		if len(stepsFlag) > 0 {
			steps = steps[:0]
			for _, raw := range stepsFlag {
				steps = append(steps, appstate.Step(raw))
			}
		}
		for _, step := range steps {
			if err := onboarding.MarkComplete(step); err != nil {
				return err
			}
		}

		after := before
		if before == appstate.NeedsOnboarding && appstate.OnboardingDone(onboarding) {
			after, err = appstate.Reduce(before, appstate.OnboardingCompleted{})
			if err != nil {
				return err
			}
		}
		logger.Debug("onboarding", zap.String("from", string(before)), zap.String("to", string(after)))
		fmt.Fprintf(cmd.OutOrStdout(), "state: %s -> %s\n", before, after)
		return nil
	})
}

// #endregion run

// #region stores

func withStores(fn func(*session.AccountStore, *session.OnboardingStore) error) error {
	kv, err := session.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer kv.Close()
	return fn(session.NewAccountStore(kv), session.NewOnboardingStore(kv))
}

func launchState(accounts *session.AccountStore, onboarding *session.OnboardingStore) (appstate.State, error) {
	ev, err := session.LaunchData(accounts, onboarding)
	if err != nil {
		return appstate.Launching, err
	}
	return appstate.Reduce(appstate.Launching, ev)
}

func displayUser(s *appstate.Session) string {
	if s.DisplayName == "" {
		return s.Email
	}
	return fmt.Sprintf("%s <%s>", s.DisplayName, s.Email)
}

// #endregion stores
