// Package engine drives the record/playback demo: it records up to five
// seconds of mono audio from a microphone capability, then plays it back as
// stereo while rendering a waveform-progress display. All work happens in
// Tick, invoked by the host once per frame; the controller never blocks and
// owns no goroutines.
package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/audiolibrelab/micloop/internal/render"
)

// State identifies the controller's position in the record/playback cycle.
type State string

const (
	StateIdle             State = "IDLE"
	StateError            State = "ERROR"
	StateRecording        State = "RECORDING"
	StatePlayback         State = "PLAYBACK"
	StateFinishedPlayback State = "FINISHED_PLAYBACK"
)

// ErrFormatRejected is returned by Load when the video sink refuses the
// XRGB8888 pixel format. The controller cannot start without it.
var ErrFormatRejected = errors.New("video sink rejected XRGB8888 pixel format")

// Advisory messages posted at load time.
const (
	msgReady = "Press and hold the record button to record, release to play back."
	msgNoMic = "Failed to get microphone (is one plugged in?)"
)

// Controller is the record/playback state machine. It owns the recording and
// playback buffers and the framebuffer, and mutates them only from Tick.
type Controller struct {
	params Params
	caps   Capabilities

	state          State
	recording      []int16 // mono, len = RecordingCapacity
	playback       []int16 // interleaved stereo, 2x recording
	framesRecorded int
	samplesPlayed  int

	micReady bool
	fb       *render.Framebuffer
	notice   render.Notice
	silence  [2]int16
}

// New builds a controller with the given parameters and host capabilities.
// Buffers are allocated once here, sized from the sample rate.
func New(params Params, caps Capabilities) (*Controller, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if caps.Video == nil {
		return nil, fmt.Errorf("video sink is required")
	}
	if caps.Input == nil {
		return nil, fmt.Errorf("input source is required")
	}

	capacity := params.RecordingCapacity()
	return &Controller{
		params:    params,
		caps:      caps,
		state:     StateIdle,
		recording: make([]int16, capacity),
		playback:  make([]int16, capacity*2),
		fb:        render.New(params.Width, params.Height),
	}, nil
}

// Load negotiates the pixel format and attempts microphone acquisition. A
// rejected format is a hard failure. A missing microphone is not: the
// controller posts an advisory and runs display-only; calling Load again
// re-attempts acquisition.
func (c *Controller) Load() error {
	if !c.caps.Video.SetFormat(PixelFormatXRGB8888) {
		slog.Error("Video sink rejected pixel format", "format", PixelFormatXRGB8888)
		return ErrFormatRejected
	}

	c.micReady = false
	if c.caps.Mic != nil {
		if err := c.caps.Mic.Open(c.params.SampleRate); err != nil {
			slog.Warn("Microphone unavailable, running display-only", "error", err)
		} else {
			c.micReady = true
		}
	}

	if c.micReady {
		c.post(msgReady)
	} else {
		c.post(msgNoMic)
	}
	return nil
}

// Reset returns the controller to its initial state: IDLE, zeroed counters
// and buffers, microphone released. Load must be called again before the
// microphone can be used.
func (c *Controller) Reset() {
	c.framesRecorded = 0
	c.samplesPlayed = 0
	c.state = StateIdle
	c.notice = render.Notice{}
	clearSamples(c.recording)
	clearSamples(c.playback)
	c.fb.Clear()

	if c.micReady {
		c.caps.Mic.Close()
		c.micReady = false
	}
}

// Close releases the microphone.
func (c *Controller) Close() {
	if c.micReady {
		c.caps.Mic.Close()
		c.micReady = false
	}
}

// Tick runs one frame: poll input, advance the state machine, then render
// and present exactly once regardless of which branch executed.
func (c *Controller) Tick() {
	c.caps.Input.Poll()
	held := c.caps.Input.IsHeld(0, ButtonRecord)

	switch c.state {
	case StateIdle:
		c.submitSilence()
		if c.micReady && held {
			c.beginSession()
		}

	case StateError:
		// Sticky until an external Reset or Load.
		c.framesRecorded = 0
		c.samplesPlayed = 0
		c.submitSilence()

	case StateRecording:
		c.tickRecording(held)

	case StatePlayback:
		c.tickPlayback()

	case StateFinishedPlayback:
		c.framesRecorded = 0
		c.samplesPlayed = 0
		c.submitSilence()
		slog.Debug("Entering IDLE state (ready for more audio input)")
		c.state = StateIdle
	}

	if c.notice.Frames > 0 {
		c.notice.Frames--
	}
	c.render()
}

// beginSession resets the session buffers and arms recording.
func (c *Controller) beginSession() {
	c.framesRecorded = 0
	c.samplesPlayed = 0
	clearSamples(c.recording)
	clearSamples(c.playback)

	if c.caps.Mic.SetEnabled(true) {
		slog.Debug("Entering RECORDING state")
		c.state = StateRecording
	} else {
		slog.Debug("Entering ERROR state (failed to enable mic)")
		c.state = StateError
	}
}

func (c *Controller) tickRecording(held bool) {
	want := min(len(c.recording)-c.framesRecorded, c.params.SamplesPerFrame())
	n := c.caps.Mic.Read(c.recording[c.framesRecorded : c.framesRecorded+want])
	if n < 0 {
		// Capture fault: non-retryable within the session.
		slog.Debug("Entering ERROR state (error reading microphone)")
		c.caps.Mic.SetEnabled(false)
		c.state = StateError
		c.submitSilence()
		return
	}
	c.framesRecorded += n

	if !held || c.framesRecorded >= len(c.recording) {
		c.buildPlayback()
		c.samplesPlayed = 0
		// Shut off the mic, we won't use it during playback.
		c.caps.Mic.SetEnabled(false)
		slog.Debug("Entering PLAYBACK state (mic buffer is full or button was released)",
			"frames_recorded", c.framesRecorded)
		c.state = StatePlayback
	}

	// Flushes the host audio pipeline even though nothing is playing.
	c.submitSilence()
}

func (c *Controller) tickPlayback() {
	limit := min(len(c.playback), 2*c.framesRecorded)
	chunk := min(limit-c.samplesPlayed, 2*c.params.SamplesPerFrame())

	if chunk > 0 && c.caps.Audio != nil {
		// Submitting too much audio at once would make the host block, so
		// offer at most one frame's worth and advance only by what the
		// sink actually accepted.
		accepted := c.caps.Audio.Submit(c.playback[c.samplesPlayed : c.samplesPlayed+chunk])
		c.samplesPlayed += accepted * 2
	}

	if c.samplesPlayed >= limit {
		slog.Debug("Entering FINISHED_PLAYBACK state (finished playing audio data)")
		c.state = StateFinishedPlayback
	}
}

// buildPlayback derives the stereo playback buffer by duplicating each
// recorded mono sample into the left and right channels.
func (c *Controller) buildPlayback() {
	clearSamples(c.playback)
	for i := 0; i < c.framesRecorded; i++ {
		c.playback[i*2] = c.recording[i]
		c.playback[i*2+1] = c.recording[i]
	}
}

func (c *Controller) render() {
	recorded := float64(c.framesRecorded) / float64(len(c.recording))
	played := float64(c.samplesPlayed) / float64(len(c.playback))
	render.Frame(c.fb, recorded, played, c.notice)
	c.caps.Video.Present(c.fb.Pix, c.params.Width, c.params.Height, c.fb.StrideBytes())
}

func (c *Controller) submitSilence() {
	if c.caps.Audio != nil {
		c.caps.Audio.Submit(c.silence[:])
	}
}

// post displays a one-shot advisory on screen and forwards it to the host
// messenger when one is attached.
func (c *Controller) post(msg string) {
	c.notice = render.Notice{Text: msg, Frames: c.params.MessageFrames()}
	if c.caps.Msg != nil {
		c.caps.Msg.Post(msg, c.notice.Frames)
	}
}

// State returns the current state.
func (c *Controller) State() State { return c.state }

// FramesRecorded returns the number of mono samples recorded this session.
func (c *Controller) FramesRecorded() int { return c.framesRecorded }

// SamplesPlayed returns the number of stereo-interleaved samples emitted this
// session.
func (c *Controller) SamplesPlayed() int { return c.samplesPlayed }

// MicReady reports whether the microphone was acquired on the last Load.
func (c *Controller) MicReady() bool { return c.micReady }

func clearSamples(s []int16) {
	for i := range s {
		s[i] = 0
	}
}
