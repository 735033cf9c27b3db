package voice

import (
	"context"

	"github.com/pion/webrtc/v4"
)

type roomEventKind int

const (
	evTrackSubscribed roomEventKind = iota
	evParticipantConnected
	evParticipantDisconnected
)

// roomEvent funnels transport callbacks onto one goroutine so roster reads
// and relay spawns never race each other.
type roomEvent struct {
	kind  roomEventKind
	track *webrtc.TrackRemote
}

// dispatchEvents serializes room callbacks: it spawns a relay per subscribed
// audio track and republishes the roster on membership changes. Runs until
// ctx is cancelled or events closes.
func dispatchEvents(ctx context.Context, events <-chan roomEvent,
	names func() []string, spawn func(*webrtc.TrackRemote), notify func(Event)) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev.kind {
			case evTrackSubscribed:
				spawn(ev.track)
			case evParticipantConnected, evParticipantDisconnected:
				notify(ParticipantsUpdated{Names: names()})
			}
		}
	}
}
