package signaling

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// EventSender posts one room-scoped event to the messaging channel.
type EventSender interface {
	SendRoomEvent(ctx context.Context, roomID, eventType string, content any) error
}

const sendTimeout = 10 * time.Second

// Announcer publishes voice presence events fire-and-forget. Presence is
// advisory: a lost announcement degrades the roster other peers see, never
// the call itself, so failures are logged and not retried.
type Announcer struct {
	sender EventSender
}

func NewAnnouncer(sender EventSender) *Announcer {
	return &Announcer{sender: sender}
}

func (a *Announcer) AnnounceJoin(roomID, sessionID string) {
	a.send(roomID, EventJoin, Join{SessionID: sessionID})
}

func (a *Announcer) AnnounceLeave(roomID string) {
	a.send(roomID, EventLeave, Leave{})
}

func (a *Announcer) AnnounceMute(roomID string, muted bool) {
	a.send(roomID, EventMute, Mute{Muted: muted})
}

func (a *Announcer) send(roomID, eventType string, content any) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		if err := a.sender.SendRoomEvent(ctx, roomID, eventType, content); err != nil {
			log.Warn().Err(err).
				Str("room", roomID).
				Str("event", eventType).
				Msg("voice announcement failed")
		}
	}()
}
