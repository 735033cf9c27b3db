// Package capture owns the microphone pipeline: a hardware input stream on
// a dedicated thread feeding transport-ready frames through a bounded
// hand-off channel.
package capture

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync/atomic"

	"github.com/gen2brain/malgo"
	"github.com/rs/zerolog/log"

	"huddle/internal/audio"
	"huddle/internal/audio/convert"
	"huddle/internal/audio/device"
)

const (
	// SampleRate and Channels are the format frames are produced in. The
	// device layer converts from whatever the hardware runs natively.
	SampleRate = 48000
	Channels   = 1

	// batchDepth bounds pending hardware batches between the callback and
	// the feeder. On backpressure the callback drops the batch silently:
	// audio correctness favors recency over completeness.
	batchDepth = 8
)

var ErrNoInputDevice = errors.New("no capture device available")

// Capture is the running microphone pipeline. The hardware stream lives on
// its own thread for its entire life; Capture only carries the mute flag and
// the channels used to talk to it.
type Capture struct {
	muted atomic.Bool
	pcm   chan []int16
	owner *device.Owner
}

// Start opens the default input device and begins feeding frames into sink.
// It blocks until the stream confirms it started or failed. A nil error
// means the stream thread and the feeder are both running.
func Start(sink audio.FrameSink) (*Capture, error) {
	c := &Capture{pcm: make(chan []int16, batchDepth)}

	owner, err := device.Run(c.openStream)
	if err != nil {
		return nil, err
	}
	c.owner = owner

	go feedBatches(c.pcm, sink, &c.muted, SampleRate, Channels)
	return c, nil
}

// openStream runs on the owning thread. The malgo context and device never
// leave it.
func (c *Capture) openStream() (func(), error) {
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

	infos, err := ctx.Devices(malgo.Capture)
	if err != nil {
		free()
		return nil, fmt.Errorf("query capture devices: %w", err)
	}
	if len(infos) == 0 {
		free()
		return nil, ErrNoInputDevice
	}

	cfg := malgo.DefaultDeviceConfig(malgo.Capture)
	cfg.Capture.Format = malgo.FormatF32
	cfg.Capture.Channels = Channels
	cfg.SampleRate = SampleRate
	if runtime.GOOS == "linux" {
		cfg.Alsa.NoMMap = 1
	}

	onData := func(_, input []byte, frameCount uint32) {
		// Hard real-time context: convert and hand off, nothing else.
		batch := convert.Float32ToInt16(convert.BytesToFloat32(input))
		select {
		case c.pcm <- batch:
		default:
		}
	}

	dev, err := malgo.InitDevice(ctx.Context, cfg, malgo.DeviceCallbacks{Data: onData})
	if err != nil {
		free()
		return nil, fmt.Errorf("open capture device: %w", err)
	}
	if err := dev.Start(); err != nil {
		dev.Uninit()
		free()
		return nil, fmt.Errorf("start capture device: %w", err)
	}

	log.Info().Uint32("rate", SampleRate).Msg("capture device started")

	stop := func() {
		dev.Uninit()
		free()
		// Uninit has quiesced the callback, so the feeder can be released.
		close(c.pcm)
	}
	return stop, nil
}

// feedBatches drains captured PCM batches into outbound frames. While muted
// it substitutes a zero-filled batch of identical length, so silence is
// attributable and frame sizing stays deterministic. Returns when in closes.
func feedBatches(in <-chan []int16, sink audio.FrameSink, muted *atomic.Bool, rate, channels uint32) {
	for batch := range in {
		if muted.Load() {
			batch = make([]int16, len(batch))
		}
		f := audio.Frame{Data: batch, SampleRate: rate, Channels: channels}
		if err := sink.WriteFrame(f); err != nil {
			log.Warn().Err(err).Msg("dropping captured frame")
		}
	}
}

// SetMuted flips the mute flag. Takes effect on the next captured batch.
func (c *Capture) SetMuted(muted bool) {
	c.muted.Store(muted)
}

func (c *Capture) IsMuted() bool {
	return c.muted.Load()
}

// Close stops the hardware stream and joins its thread. The feeder exits as
// a consequence of the hand-off channel closing.
func (c *Capture) Close() {
	c.owner.Close()
}

// Done is closed once the stream thread has fully torn down.
func (c *Capture) Done() <-chan struct{} {
	return c.owner.Done()
}
