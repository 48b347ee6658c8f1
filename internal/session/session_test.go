package session

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/danielpatrickdp/adaptive-state/wellness-core/internal/appstate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempKV(t *testing.T) *SQLiteKV {
	t.Helper()
	kv, err := Open(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })
	return kv
}

// #region kv-tests

func TestKV_SaveLoadDelete(t *testing.T) {
	kv := tempKV(t)

	_, err := kv.Load("missing")
	assert.True(t, errors.Is(err, ErrNotFound), "expected ErrNotFound, got %v", err)

	require.NoError(t, kv.Save("k", []byte("v1")))
	require.NoError(t, kv.Save("k", []byte("v2")))
	got, err := kv.Load("k")
	require.NoError(t, err)
	assert.Equal(t, "v2", string(got))

	require.NoError(t, kv.Delete("k"))
	_, err = kv.Load("k")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, kv.Delete("k"), "deleting a missing key is not an error")
}

func TestKV_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")
	kv, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, kv.Save("k", []byte("kept")))
	require.NoError(t, kv.Close())

	kv, err = Open(path)
	require.NoError(t, err)
	defer kv.Close()
	got, err := kv.Load("k")
	require.NoError(t, err)
	assert.Equal(t, "kept", string(got))
}

func TestKV_EmptyValue(t *testing.T) {
	kv := tempKV(t)
	require.NoError(t, kv.Save("empty", nil))
	got, err := kv.Load("empty")
	require.NoError(t, err)
	assert.Empty(t, got)
}

// #endregion kv-tests

// #region account-tests

func TestAccountStore_SessionRoundTrip(t *testing.T) {
	accounts := NewAccountStore(tempKV(t))

	s, err := accounts.RestoreSession()
	require.NoError(t, err)
	assert.Nil(t, s, "no session before sign-in")

	want := appstate.Session{UserID: "u-7", Email: "ana@example.com", ExternalUserID: "ext-42", DisplayName: "Ana"}
	require.NoError(t, accounts.SaveSession(want))

	got, err := accounts.RestoreSession()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.UserID, got.UserID)
	assert.Equal(t, want.ExternalUserID, got.ExternalUserID)
	assert.Equal(t, want.DisplayName, got.DisplayName)

	require.NoError(t, accounts.SignOut())
	got, err = accounts.RestoreSession()
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestAccountStore_KnownAccounts(t *testing.T) {
	accounts := NewAccountStore(tempKV(t))
	require.NoError(t, accounts.RememberAccount("  Ana@Example.com ", "ext-42"))

	id, err := accounts.KnownAccount("ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, "ext-42", id)

	_, err = accounts.KnownAccount("bo@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Error(t, accounts.RememberAccount("", "ext"))
	assert.Error(t, accounts.RememberAccount("x@example.com", ""))
}

func TestAccountStore_SignOutKeepsKnownAccounts(t *testing.T) {
	accounts := NewAccountStore(tempKV(t))
	require.NoError(t, accounts.RememberAccount("ana@example.com", "ext-42"))
	require.NoError(t, accounts.SaveSession(appstate.Session{UserID: "u-7"}))
	require.NoError(t, accounts.SignOut())

	id, err := accounts.KnownAccount("ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, "ext-42", id)
}

// #endregion account-tests

// #region onboarding-tests

func TestOnboardingStore_DrivesReduce(t *testing.T) {
	kv := tempKV(t)
	accounts := NewAccountStore(kv)
	onboarding := NewOnboardingStore(kv)
	require.NoError(t, accounts.SaveSession(appstate.Session{UserID: "u-1"}))

	ev, err := LaunchData(accounts, onboarding)
	require.NoError(t, err)
	s, err := appstate.Reduce(appstate.Launching, ev)
	require.NoError(t, err)
	assert.Equal(t, appstate.NeedsOnboarding, s)

	require.NoError(t, onboarding.MarkComplete(appstate.StepBaseline))
	require.NoError(t, onboarding.MarkComplete(appstate.StepBaseline))
	require.NoError(t, onboarding.MarkComplete(appstate.StepFirstCheckIn))

	ev, err = LaunchData(accounts, onboarding)
	require.NoError(t, err)
	s, err = appstate.Reduce(appstate.Launching, ev)
	require.NoError(t, err)
	assert.Equal(t, appstate.Ready, s)
}

func TestOnboardingStore_Reset(t *testing.T) {
	onboarding := NewOnboardingStore(tempKV(t))
	require.NoError(t, onboarding.MarkComplete(appstate.StepBaseline))
	assert.True(t, onboarding.IsComplete(appstate.StepBaseline))
	require.NoError(t, onboarding.Reset())
	assert.False(t, onboarding.IsComplete(appstate.StepBaseline))
}

func TestLaunchData_SignedOut(t *testing.T) {
	kv := tempKV(t)
	ev, err := LaunchData(NewAccountStore(kv), nil)
	require.NoError(t, err)
	assert.Nil(t, ev.Session)
	assert.Nil(t, ev.Onboarding, "nil store must stay a nil interface")

	s, err := appstate.Reduce(appstate.Launching, ev)
	require.NoError(t, err)
	assert.Equal(t, appstate.SignedOut, s)
}

// #endregion onboarding-tests
