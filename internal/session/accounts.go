package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/danielpatrickdp/adaptive-state/wellness-core/internal/appstate"
)

const (
	currentSessionKey = "session/current"
	knownAccountKey   = "accounts/known/"
)

// #region accounts

// AccountStore persists the signed-in session and the email to external-user-id mapping.
type AccountStore struct {
	kv KV
}

// NewAccountStore wraps kv.
func NewAccountStore(kv KV) *AccountStore {
	return &AccountStore{kv: kv}
}

// SaveSession stores s as the current session.
func (a *AccountStore) SaveSession(s appstate.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return a.kv.Save(currentSessionKey, data)
}

// RestoreSession returns the current session, or nil when signed out.
func (a *AccountStore) RestoreSession() (*appstate.Session, error) {
	data, err := a.kv.Load(currentSessionKey)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s appstate.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &s, nil
}

// SignOut clears the current session. Known accounts are kept.
func (a *AccountStore) SignOut() error {
	return a.kv.Delete(currentSessionKey)
}

// RememberAccount maps email to the external user id issued by the identity provider.
func (a *AccountStore) RememberAccount(email, externalUserID string) error {
	email = normalizeEmail(email)
	if email == "" || externalUserID == "" {
		return fmt.Errorf("remember account: email and external user id are required")
	}
	return a.kv.Save(knownAccountKey+email, []byte(externalUserID))
}

// KnownAccount returns the external user id for email, or ErrNotFound.
func (a *AccountStore) KnownAccount(email string) (string, error) {
	data, err := a.kv.Load(knownAccountKey + normalizeEmail(email))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// #endregion accounts
