package voice

import (
	"context"
	"errors"
	"io"

	gosamplerate "github.com/dh1tw/gosamplerate"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
	opus "gopkg.in/hraban/opus.v2"

	"huddle/internal/audio/convert"
	"huddle/internal/audio/ring"
)

// maxFrameSamples is the largest opus frame at 48 kHz mono (120 ms).
const maxFrameSamples = 5760

// relayTrack drains one subscribed remote track into the playback ring:
// RTP in, opus decode, optional resample to the output device rate, push.
// Returns when the track ends or ctx is cancelled.
func relayTrack(ctx context.Context, track *webrtc.TrackRemote, out *ring.Buffer, outRate uint32) {
	dec, err := opus.NewDecoder(transportRate, transportChannels)
	if err != nil {
		log.Error().Err(err).Msg("relay: opus decoder init failed")
		return
	}

	pcm := make([]int16, maxFrameSamples)
	ratio := float64(outRate) / float64(transportRate)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		pkt, _, err := track.ReadRTP()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.Debug().Err(err).Str("track", track.ID()).Msg("relay: track read ended")
			}
			return
		}
		if len(pkt.Payload) == 0 {
			continue
		}

		n, err := dec.Decode(pkt.Payload, pcm)
		if err != nil {
			log.Warn().Err(err).Msg("relay: dropping undecodable packet")
			continue
		}

		samples := convert.Int16ToFloat32(pcm[:n*transportChannels])
		if outRate != transportRate {
			samples, err = gosamplerate.Simple(samples, ratio, transportChannels, gosamplerate.SRC_SINC_FASTEST)
			if err != nil {
				log.Warn().Err(err).Msg("relay: resample failed")
				continue
			}
		}
		out.Push(samples)
	}
}
