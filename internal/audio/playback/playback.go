// Package playback owns the speaker pipeline: a hardware output stream on a
// dedicated thread draining the shared ring buffer.
package playback

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/gen2brain/malgo"
	"github.com/rs/zerolog/log"

	"huddle/internal/audio/convert"
	"huddle/internal/audio/device"
	"huddle/internal/audio/ring"
)

// ringSeconds caps the ring buffer at about two seconds of audio so a stalled
// consumer cannot grow it without bound.
const ringSeconds = 2

const channels = 1

var ErrNoOutputDevice = errors.New("no playback device available")

// Playback is the running speaker pipeline. Relay tasks push decoded samples
// into Ring(); the hardware callback pops them at playback rate.
type Playback struct {
	rate  uint32
	buf   *ring.Buffer
	owner *device.Owner
}

// Start opens the default output device at sampleRate and begins draining
// the ring buffer. Callers treat failure as degradation, not a fatal error:
// a session without playback is still a valid capture-only session.
func Start(sampleRate uint32) (*Playback, error) {
	p := &Playback{
		rate: sampleRate,
		buf:  ring.New(int(sampleRate) * channels * ringSeconds),
	}

	owner, err := device.Run(p.openStream)
	if err != nil {
		return nil, err
	}
	p.owner = owner
	return p, nil
}

func (p *Playback) openStream() (func(), error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(msg string) {
		log.Debug().Str("msg", strings.TrimSpace(msg)).Msg("malgo")
	})
	if err != nil {
		return nil, fmt.Errorf("init audio context: %w", err)
	}
	free := func() {
		_ = ctx.Uninit()
		ctx.Free()
	}

	infos, err := ctx.Devices(malgo.Playback)
	if err != nil {
		free()
		return nil, fmt.Errorf("query playback devices: %w", err)
	}
	if len(infos) == 0 {
		free()
		return nil, ErrNoOutputDevice
	}

	cfg := malgo.DefaultDeviceConfig(malgo.Playback)
	cfg.Playback.Format = malgo.FormatS16
	cfg.Playback.Channels = channels
	cfg.SampleRate = p.rate
	if runtime.GOOS == "linux" {
		cfg.Alsa.NoMMap = 1
	}

	onData := func(output, _ []byte, frameCount uint32) {
		// One sample per output slot; silence on underrun. No locks beyond
		// the ring's push/pop mutex, no allocation, no blocking.
		n := int(frameCount) * channels
		for i := 0; i < n; i++ {
			var s int16
			if v, ok := p.buf.Pop(); ok {
				s = convert.SampleToInt16(v)
			}
			output[i*2] = byte(s)
			output[i*2+1] = byte(s >> 8)
		}
	}

	dev, err := malgo.InitDevice(ctx.Context, cfg, malgo.DeviceCallbacks{Data: onData})
	if err != nil {
		free()
		return nil, fmt.Errorf("open playback device: %w", err)
	}
	if err := dev.Start(); err != nil {
		dev.Uninit()
		free()
		return nil, fmt.Errorf("start playback device: %w", err)
	}

	log.Info().Uint32("rate", p.rate).Msg("playback device started")

	stop := func() {
		dev.Uninit()
		free()
	}
	return stop, nil
}

// Ring is the shared sample buffer remote-track relays write into.
func (p *Playback) Ring() *ring.Buffer {
	return p.buf
}

// SampleRate is the rate the output device was opened at.
func (p *Playback) SampleRate() uint32 {
	return p.rate
}

// Close stops the hardware stream and joins its thread.
func (p *Playback) Close() {
	p.owner.Close()
}
