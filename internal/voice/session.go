// Package voice ties the pipelines together: one session per transport room,
// publishing the microphone track and relaying every subscribed remote track
// into the speaker ring, with a manager enforcing single-session semantics.
package voice

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	lksdk "github.com/livekit/server-sdk-go/v2"
	lkmedia "github.com/livekit/server-sdk-go/v2/pkg/media"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"huddle/internal/audio"
	"huddle/internal/audio/capture"
	"huddle/internal/audio/playback"
)

// The transport room carries 48 kHz mono PCM regardless of what the local
// hardware runs at; conversion happens at the edges.
const (
	transportRate     = 48000
	transportChannels = 1
)

// Options tune per-session media behavior.
type Options struct {
	// PlaybackRate is the rate to open the output device at. Zero means the
	// transport rate.
	PlaybackRate uint32
}

// Session is one live presence in a transport room. Create with Connect,
// dispose with Disconnect; a session is not reusable.
type Session struct {
	room     *lksdk.Room
	track    *lkmedia.PCMLocalTrack
	capture  *capture.Capture
	playback *playback.Playback // nil when no output device is available

	cancel  context.CancelFunc
	relays  sync.WaitGroup
	closed  sync.Once
	closing atomic.Bool
}

// trackSink adapts the published PCM track to the capture pipeline's sink.
type trackSink struct {
	track *lkmedia.PCMLocalTrack
}

func (s trackSink) WriteFrame(f audio.Frame) error {
	return s.track.WriteSample(f.Data)
}

// Connect joins the transport room at url with token, publishes the
// microphone and starts relaying remote audio. The capture pipeline only
// starts once the room connection is up, so a failed connect never leaves a
// device thread behind.
func Connect(url, token string, opts Options, notify func(Event)) (*Session, error) {
	if opts.PlaybackRate == 0 {
		opts.PlaybackRate = transportRate
	}

	s := &Session{}
	sessCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	roomEvents := make(chan roomEvent, 64)
	push := func(ev roomEvent) {
		select {
		case roomEvents <- ev:
		default:
			log.Warn().Msg("room event dropped, dispatcher backlogged")
		}
	}

	cb := &lksdk.RoomCallback{
		OnDisconnected: func() {
			if !s.closing.Load() {
				notify(Error{Message: "transport connection lost"})
			}
		},
		OnParticipantConnected: func(*lksdk.RemoteParticipant) {
			push(roomEvent{kind: evParticipantConnected})
		},
		OnParticipantDisconnected: func(*lksdk.RemoteParticipant) {
			push(roomEvent{kind: evParticipantDisconnected})
		},
		ParticipantCallback: lksdk.ParticipantCallback{
			OnTrackSubscribed: func(track *webrtc.TrackRemote, _ *lksdk.RemoteTrackPublication, rp *lksdk.RemoteParticipant) {
				if track.Kind() != webrtc.RTPCodecTypeAudio {
					return
				}
				log.Info().Str("participant", string(rp.Identity())).Msg("subscribed to remote audio")
				push(roomEvent{kind: evTrackSubscribed, track: track})
			},
		},
	}

	room, err := lksdk.ConnectToRoomWithToken(url, token, cb)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("connect to transport room: %w", err)
	}
	s.room = room

	track, err := lkmedia.NewPCMLocalTrack(transportRate, transportChannels, nil)
	if err != nil {
		room.Disconnect()
		cancel()
		return nil, fmt.Errorf("create microphone track: %w", err)
	}
	s.track = track

	mic, err := capture.Start(trackSink{track: track})
	if err != nil {
		track.Close()
		room.Disconnect()
		cancel()
		return nil, fmt.Errorf("start capture: %w", err)
	}
	s.capture = mic

	if _, err := room.LocalParticipant.PublishTrack(track, &lksdk.TrackPublicationOptions{
		Name: "microphone",
	}); err != nil {
		mic.Close()
		track.Close()
		room.Disconnect()
		cancel()
		return nil, fmt.Errorf("publish microphone: %w", err)
	}

	// Playback failure degrades to a capture-only session rather than
	// aborting the call.
	pb, err := playback.Start(opts.PlaybackRate)
	if err != nil {
		log.Warn().Err(err).Msg("playback unavailable, joining send-only")
	} else {
		s.playback = pb
	}

	spawn := func(tr *webrtc.TrackRemote) {
		if s.playback == nil {
			log.Debug().Msg("no playback, ignoring remote track")
			return
		}
		s.relays.Add(1)
		go func() {
			defer s.relays.Done()
			relayTrack(sessCtx, tr, s.playback.Ring(), s.playback.SampleRate())
		}()
	}
	names := func() []string { return participantNames(s.room) }
	go dispatchEvents(sessCtx, roomEvents, names, spawn, notify)

	notify(ParticipantsUpdated{Names: names()})
	return s, nil
}

// SetMuted flips outbound mute. The published track keeps flowing, carrying
// silence, so peers see continuous media rather than a dead track.
func (s *Session) SetMuted(muted bool) {
	s.capture.SetMuted(muted)
}

func (s *Session) IsMuted() bool {
	return s.capture.IsMuted()
}

// Disconnect tears the session down in dependency order: stop relays, leave
// the room, then release the hardware. Safe to call more than once.
func (s *Session) Disconnect() {
	s.closed.Do(func() {
		s.closing.Store(true)
		s.cancel()
		s.track.Close()
		s.room.Disconnect()
		s.relays.Wait()
		if s.playback != nil {
			s.playback.Close()
		}
		s.capture.Close()
	})
}

func participantNames(room *lksdk.Room) []string {
	parts := room.GetRemoteParticipants()
	names := make([]string, 0, len(parts))
	for _, rp := range parts {
		name := rp.Name()
		if name == "" {
			name = string(rp.Identity())
		}
		names = append(names, name)
	}
	return names
}
