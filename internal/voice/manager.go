package voice

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// State is the manager's view of the single allowed session.
type State int

const (
	Disconnected State = iota
	Connecting
	Active
	Disconnecting
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Active:
		return "active"
	case Disconnecting:
		return "disconnecting"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// CredentialSource mints a transport room credential for roomID.
type CredentialSource interface {
	Mint(ctx context.Context, roomID string) (url, token string, err error)
}

// Signaler announces voice presence on the messaging channel.
type Signaler interface {
	AnnounceJoin(roomID, sessionID string)
	AnnounceLeave(roomID string)
	AnnounceMute(roomID string, muted bool)
}

// activeSession is what the manager needs from a connected session.
type activeSession interface {
	Disconnect()
	SetMuted(muted bool)
	IsMuted() bool
}

type connectFunc func(url, token string, opts Options, notify func(Event)) (activeSession, error)

// Manager is the sole authority over the voice session. At most one session
// exists at a time; joining while one is live tears the old one down first.
type Manager struct {
	creds    CredentialSource
	signaler Signaler
	opts     Options
	connect  connectFunc

	mu      sync.Mutex
	state   State
	roomID  string
	session activeSession

	events chan Event
}

func NewManager(creds CredentialSource, signaler Signaler, opts Options) *Manager {
	return &Manager{
		creds:    creds,
		signaler: signaler,
		opts:     opts,
		connect: func(url, token string, o Options, notify func(Event)) (activeSession, error) {
			return Connect(url, token, o, notify)
		},
		events: make(chan Event, 32),
	}
}

// Events is the notification stream for front ends. Slow consumers lose
// events rather than stalling call control.
func (m *Manager) Events() <-chan Event {
	return m.events
}

func (m *Manager) emit(e Event) {
	select {
	case m.events <- e:
	default:
		log.Warn().Type("event", e).Msg("event consumer backlogged, dropping")
	}
}

// State reports the current session state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Join connects to roomID's voice session, replacing any live session. The
// join announcement goes out as soon as the credential is minted, concurrent
// with media setup; if setup then fails, a leave announcement retracts it.
func (m *Manager) Join(ctx context.Context, roomID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session != nil {
		m.teardownLocked()
	}
	m.state = Connecting

	url, token, err := m.creds.Mint(ctx, roomID)
	if err != nil {
		m.state = Disconnected
		return fmt.Errorf("mint voice credential: %w", err)
	}

	sessionID := uuid.NewString()
	m.signaler.AnnounceJoin(roomID, sessionID)

	sess, err := m.connect(url, token, m.opts, m.emit)
	if err != nil {
		m.signaler.AnnounceLeave(roomID)
		m.state = Disconnected
		return fmt.Errorf("join %s: %w", roomID, err)
	}

	m.session = sess
	m.roomID = roomID
	m.state = Active
	log.Info().Str("room", roomID).Str("session", sessionID).Msg("joined voice session")
	m.emit(VoiceJoined{Room: roomID})
	return nil
}

// Leave disconnects the live session, if any. Leaving while disconnected is
// a no-op.
func (m *Manager) Leave() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return
	}
	m.teardownLocked()
}

// SetMuted flips outbound mute on the live session and announces the new
// state. No-op while disconnected.
func (m *Manager) SetMuted(muted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return
	}
	m.session.SetMuted(muted)
	m.signaler.AnnounceMute(m.roomID, muted)
}

// IsMuted reports outbound mute state; false while disconnected.
func (m *Manager) IsMuted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return false
	}
	return m.session.IsMuted()
}

func (m *Manager) teardownLocked() {
	m.state = Disconnecting
	room := m.roomID
	m.session.Disconnect()
	m.session = nil
	m.roomID = ""
	m.state = Disconnected
	m.signaler.AnnounceLeave(room)
	log.Info().Str("room", room).Msg("left voice session")
	m.emit(VoiceLeft{})
}
