package scanner

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/posgate/internal/config"
)

// ErrDeviceUnavailable indicates the scanner device is not registered with
// the gateway. Distinct from a scan that simply found no code.
var ErrDeviceUnavailable = errors.New("scanner device unavailable")

// ErrNoActiveSession indicates a frame arrived for a device with no open session.
var ErrNoActiveSession = errors.New("no active scan session")

// ErrScanTimeout is delivered when a session expires before any code arrives.
var ErrScanTimeout = errors.New("scan timed out")

// Result is one emission from a scan session: either a decoded code or the
// terminal error that closed the session.
type Result struct {
	Code string
	Err  error
}

// Manager owns the scan sessions. One active session per device; starting a
// new one stops the previous session first.
type Manager struct {
	timeout time.Duration
	logger  *zap.Logger

	mu       sync.Mutex
	devices  map[string]bool
	sessions map[string]*Session
}

// NewManager builds a manager for the configured devices.
func NewManager(cfg config.ScannerConfig, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}

	devices := make(map[string]bool, len(cfg.Devices))
	for _, d := range cfg.Devices {
		devices[d] = true
	}

	return &Manager{
		timeout:  cfg.Timeout,
		logger:   logger,
		devices:  devices,
		sessions: make(map[string]*Session),
	}
}

// Session is one scan attempt on a device. Codes arrive on Results; the
// channel closes when the session ends. All session state is guarded by the
// manager's mutex.
type Session struct {
	ID         string
	DeviceID   string
	Continuous bool

	mgr     *Manager
	results chan Result
	timer   *time.Timer
	closed  bool
}

// Start opens a session on the device. Single-shot sessions emit one code and
// stop themselves; continuous sessions keep emitting until stopped. Either
// way the session auto-cancels with ErrScanTimeout when no code arrives
// within the configured window.
func (m *Manager) Start(deviceID string, continuous bool) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.devices[deviceID] {
		return nil, ErrDeviceUnavailable
	}

	if previous := m.sessions[deviceID]; previous != nil {
		previous.stopLocked()
	}

	sess := &Session{
		ID:         uuid.NewString(),
		DeviceID:   deviceID,
		Continuous: continuous,
		mgr:        m,
		results:    make(chan Result, 8),
	}
	m.sessions[deviceID] = sess
	sess.timer = time.AfterFunc(m.timeout, sess.expire)

	m.logger.Info("scan session started",
		zap.String("session", sess.ID),
		zap.String("device", deviceID),
		zap.Bool("continuous", continuous))

	return sess, nil
}

// Submit routes a decoded frame from the device into its active session.
func (m *Manager) Submit(deviceID, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess := m.sessions[deviceID]
	if sess == nil {
		return ErrNoActiveSession
	}

	sess.deliverLocked(code)
	return nil
}

// Stop ends the device's active session, if any. Safe to call when no
// session was ever started.
func (m *Manager) Stop(deviceID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sess := m.sessions[deviceID]; sess != nil {
		sess.stopLocked()
	}
}

// Results is the stream of detected codes for this session.
func (s *Session) Results() <-chan Result {
	return s.results
}

// Stop releases the device unconditionally. Idempotent.
func (s *Session) Stop() {
	s.mgr.mu.Lock()
	defer s.mgr.mu.Unlock()
	s.stopLocked()
}

func (s *Session) stopLocked() {
	if s.closed {
		return
	}
	s.closed = true
	s.timer.Stop()

	if s.mgr.sessions[s.DeviceID] == s {
		delete(s.mgr.sessions, s.DeviceID)
	}

	close(s.results)
	s.mgr.logger.Info("scan session stopped",
		zap.String("session", s.ID),
		zap.String("device", s.DeviceID))
}

func (s *Session) deliverLocked(code string) {
	if s.closed {
		return
	}

	select {
	case s.results <- Result{Code: code}:
	default:
		s.mgr.logger.Warn("scan result dropped, consumer too slow",
			zap.String("session", s.ID))
	}

	if s.Continuous {
		// Each detection restarts the idle window.
		s.timer.Reset(s.mgr.timeout)
		return
	}

	s.stopLocked()
}

func (s *Session) expire() {
	s.mgr.mu.Lock()
	defer s.mgr.mu.Unlock()

	if s.closed {
		return
	}

	select {
	case s.results <- Result{Err: ErrScanTimeout}:
	default:
	}
	s.stopLocked()
}
