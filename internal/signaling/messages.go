// Package signaling defines the voice presence events huddle posts to the
// messaging room, and an announcer that sends them without blocking the
// media path.
package signaling

// Custom event types carried over the messaging channel. Peers use them to
// render presence; the transport room itself never sees them.
const (
	EventJoin  = "io.huddle.voice.join"
	EventLeave = "io.huddle.voice.leave"
	EventMute  = "io.huddle.voice.mute"
)

// Join announces that the sender entered the voice session identified by
// SessionID.
type Join struct {
	SessionID string `json:"session_id"`
}

// Leave announces that the sender left the voice session. It carries no
// payload; the sender is implied by the event envelope.
type Leave struct{}

// Mute announces the sender's current mute state.
type Mute struct {
	Muted bool `json:"muted"`
}
