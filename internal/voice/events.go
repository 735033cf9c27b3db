package voice

// Event is a state-change notification surfaced to whatever front end drives
// the manager. Events are advisory; dropping one never corrupts call state.
type Event interface{ voiceEvent() }

// VoiceJoined fires once a session is connected and publishing.
type VoiceJoined struct {
	Room string
}

// VoiceLeft fires after a session has fully torn down.
type VoiceLeft struct{}

// ParticipantsUpdated carries the current remote roster, display names
// preferred over raw identities.
type ParticipantsUpdated struct {
	Names []string
}

// Error reports a session-level failure, such as the transport dropping the
// connection from under an active session.
type Error struct {
	Message string
}

func (VoiceJoined) voiceEvent()         {}
func (VoiceLeft) voiceEvent()           {}
func (ParticipantsUpdated) voiceEvent() {}
func (Error) voiceEvent()               {}
