package scanner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/posgate/internal/config"
)

func newTestManager(timeout time.Duration) *Manager {
	return NewManager(config.ScannerConfig{
		Devices: []string{"lane-1", "lane-2"},
		Timeout: timeout,
	}, nil)
}

func receive(t *testing.T, ch <-chan Result) (Result, bool) {
	t.Helper()
	select {
	case result, ok := <-ch:
		return result, ok
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for scan result")
		return Result{}, false
	}
}

func TestStartUnknownDevice(t *testing.T) {
	mgr := newTestManager(time.Second)

	_, err := mgr.Start("lane-9", false)
	require.ErrorIs(t, err, ErrDeviceUnavailable)
}

func TestSingleShotDeliversOneCodeAndStops(t *testing.T) {
	mgr := newTestManager(time.Second)

	sess, err := mgr.Start("lane-1", false)
	require.NoError(t, err)

	require.NoError(t, mgr.Submit("lane-1", "7791234567890"))

	result, ok := receive(t, sess.Results())
	require.True(t, ok)
	assert.Equal(t, "7791234567890", result.Code)
	assert.NoError(t, result.Err)

	_, ok = receive(t, sess.Results())
	assert.False(t, ok, "channel must close after the single shot")

	assert.ErrorIs(t, mgr.Submit("lane-1", "7791234567891"), ErrNoActiveSession)
}

func TestContinuousSessionEmitsUntilStopped(t *testing.T) {
	mgr := newTestManager(time.Second)

	sess, err := mgr.Start("lane-1", true)
	require.NoError(t, err)

	require.NoError(t, mgr.Submit("lane-1", "7791234567890"))
	require.NoError(t, mgr.Submit("lane-1", "7791234567891"))

	first, ok := receive(t, sess.Results())
	require.True(t, ok)
	second, ok := receive(t, sess.Results())
	require.True(t, ok)
	assert.Equal(t, "7791234567890", first.Code)
	assert.Equal(t, "7791234567891", second.Code)

	sess.Stop()
	_, ok = receive(t, sess.Results())
	assert.False(t, ok)
}

func TestSessionExpiresWithScanTimeout(t *testing.T) {
	mgr := newTestManager(30 * time.Millisecond)

	sess, err := mgr.Start("lane-1", false)
	require.NoError(t, err)

	result, ok := receive(t, sess.Results())
	require.True(t, ok)
	assert.ErrorIs(t, result.Err, ErrScanTimeout)

	_, ok = receive(t, sess.Results())
	assert.False(t, ok)
}

func TestStartReplacesPreviousSession(t *testing.T) {
	mgr := newTestManager(time.Second)

	old, err := mgr.Start("lane-1", true)
	require.NoError(t, err)

	replacement, err := mgr.Start("lane-1", false)
	require.NoError(t, err)
	assert.NotEqual(t, old.ID, replacement.ID)

	_, ok := receive(t, old.Results())
	assert.False(t, ok, "previous session must be closed")

	require.NoError(t, mgr.Submit("lane-1", "7791234567890"))
	result, ok := receive(t, replacement.Results())
	require.True(t, ok)
	assert.Equal(t, "7791234567890", result.Code)
}

func TestStopIsIdempotentAndSafeWithoutSession(t *testing.T) {
	mgr := newTestManager(time.Second)

	// Never started.
	mgr.Stop("lane-1")

	sess, err := mgr.Start("lane-1", false)
	require.NoError(t, err)

	sess.Stop()
	sess.Stop()
	mgr.Stop("lane-1")
}

func TestDevicesAreIndependent(t *testing.T) {
	mgr := newTestManager(time.Second)

	one, err := mgr.Start("lane-1", false)
	require.NoError(t, err)
	two, err := mgr.Start("lane-2", false)
	require.NoError(t, err)

	require.NoError(t, mgr.Submit("lane-2", "7791234567891"))

	result, ok := receive(t, two.Results())
	require.True(t, ok)
	assert.Equal(t, "7791234567891", result.Code)

	select {
	case r := <-one.Results():
		t.Fatalf("unexpected result on idle device: %+v", r)
	case <-time.After(50 * time.Millisecond):
	}
}
