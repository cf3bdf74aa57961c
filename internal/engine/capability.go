package engine

// PixelFormat identifies the pixel layout of frames handed to a VideoSink.
type PixelFormat string

const (
	// PixelFormatXRGB8888 is the only format the controller renders:
	// one uint32 per pixel, 0x00RRGGBB.
	PixelFormatXRGB8888 PixelFormat = "XRGB8888"
)

// ButtonRecord is the input button that starts a recording session while held.
const ButtonRecord = 0

// Microphone abstracts a host-provided mono capture device.
type Microphone interface {
	// Open acquires the capture device. The hint is the desired sample
	// rate; hosts may ignore it. A non-nil error means the capability is
	// unavailable and the controller runs display-only.
	Open(sampleRateHint int) error

	// SetEnabled starts or stops capture and reports whether the request
	// took effect.
	SetEnabled(enabled bool) bool

	// Read fills dst with up to len(dst) mono samples and returns the
	// number of samples written. A negative result signals a capture
	// fault; the controller treats it as fatal for the session.
	Read(dst []int16) int

	// Close releases the capture device.
	Close()
}

// AudioSink accepts interleaved stereo samples for playback. Submit returns
// the number of stereo frames actually accepted, which may be fewer than
// offered when the sink applies backpressure.
type AudioSink interface {
	Submit(samples []int16) int
}

// VideoSink receives rendered frames.
type VideoSink interface {
	// SetFormat negotiates the pixel format at load time. Returning false
	// rejects the format and the controller refuses to start.
	SetFormat(format PixelFormat) bool

	// Present displays one frame. The stride is width * 4 bytes, rows are
	// not padded.
	Present(pix []uint32, width, height, strideBytes int)
}

// InputSource exposes the host's per-tick input state.
type InputSource interface {
	Poll()
	IsHeld(device, button int) bool
}

// Messenger displays one-shot advisory messages for a given number of frames.
type Messenger interface {
	Post(msg string, frames int)
}

// Capabilities bundles the host-provided callback surfaces injected into a
// Controller. Video and Input are required. Mic may be nil (display-only
// mode), Audio may be nil (no audio output), Msg may be nil (advisories are
// only drawn on screen).
type Capabilities struct {
	Mic   Microphone
	Audio AudioSink
	Video VideoSink
	Input InputSource
	Msg   Messenger
}
