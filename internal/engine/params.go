package engine

import "fmt"

// ValidSampleRates lists the microphone sample rates the controller accepts.
var ValidSampleRates = []int{8000, 16000, 32000, 44100, 48000}

// ValidSampleRate reports whether rate is a supported microphone sample rate.
func ValidSampleRate(rate int) bool {
	for _, r := range ValidSampleRates {
		if r == rate {
			return true
		}
	}
	return false
}

// Params holds the fixed parameters of a controller instance. They are
// applied once at construction; changing the sample rate requires building a
// new controller.
type Params struct {
	SampleRate    int
	FPS           int
	RecordSeconds int
	Width         int
	Height        int
}

// DefaultParams returns the demo geometry and timing with the given
// microphone sample rate: 320x240 at 60 FPS, five seconds of recording.
func DefaultParams(sampleRate int) Params {
	return Params{
		SampleRate:    sampleRate,
		FPS:           60,
		RecordSeconds: 5,
		Width:         320,
		Height:        240,
	}
}

// SamplesPerFrame is the number of mono samples pulled from the microphone
// per tick.
func (p Params) SamplesPerFrame() int {
	return p.SampleRate / p.FPS
}

// RecordingCapacity is the total mono sample capacity of a session.
func (p Params) RecordingCapacity() int {
	return p.SampleRate * p.RecordSeconds
}

// MessageFrames is how long advisory messages stay on screen (about five
// seconds at the configured frame rate).
func (p Params) MessageFrames() int {
	return 5 * p.FPS
}

// Validate checks that the parameters describe a runnable controller.
func (p Params) Validate() error {
	if !ValidSampleRate(p.SampleRate) {
		return fmt.Errorf("unsupported sample rate %d (valid: %v)", p.SampleRate, ValidSampleRates)
	}
	if p.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %d", p.FPS)
	}
	if p.RecordSeconds <= 0 {
		return fmt.Errorf("record length must be positive, got %d seconds", p.RecordSeconds)
	}
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("invalid geometry %dx%d", p.Width, p.Height)
	}
	return nil
}
