package audio

// Frame is a batch of interleaved PCM samples tagged with its format.
// It is the unit handed to the transport room's outbound audio path.
type Frame struct {
	Data       []int16
	SampleRate uint32
	Channels   uint32
}

// FrameSink consumes outbound audio frames. WriteFrame may block briefly on
// the transport's internal queue but must never be called from a hardware
// callback.
type FrameSink interface {
	WriteFrame(Frame) error
}
