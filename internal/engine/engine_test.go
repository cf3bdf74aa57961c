package engine

import (
	"errors"
	"testing"
)

// fakeMic serves scripted samples. Each Read fills dst from a ramp unless a
// custom serve function is installed.
type fakeMic struct {
	openErr  error
	enableOK bool
	enabled  bool
	closed   bool
	reads    int
	next     int16
	serve    func(m *fakeMic, dst []int16) int
}

func newFakeMic() *fakeMic {
	return &fakeMic{enableOK: true}
}

func (m *fakeMic) Open(sampleRateHint int) error { return m.openErr }

func (m *fakeMic) SetEnabled(enabled bool) bool {
	if !m.enableOK {
		return false
	}
	m.enabled = enabled
	return true
}

func (m *fakeMic) Read(dst []int16) int {
	m.reads++
	if m.serve != nil {
		return m.serve(m, dst)
	}
	for i := range dst {
		dst[i] = m.next
		m.next++
	}
	return len(dst)
}

func (m *fakeMic) Close() { m.closed = true }

// fakeSink accumulates accepted samples. acceptFrames caps the frames
// accepted per Submit; negative means accept everything offered.
type fakeSink struct {
	acceptFrames int
	received     []int16
	silent       int // count of 1-frame silence submissions
}

func newFakeSink() *fakeSink { return &fakeSink{acceptFrames: -1} }

func (s *fakeSink) Submit(samples []int16) int {
	frames := len(samples) / 2
	if frames == 1 && samples[0] == 0 && samples[1] == 0 {
		s.silent++
	}
	if s.acceptFrames >= 0 && frames > s.acceptFrames {
		frames = s.acceptFrames
	}
	s.received = append(s.received, samples[:frames*2]...)
	return frames
}

type fakeVideo struct {
	rejectFormat bool
	format       PixelFormat
	presents     int
	lastW        int
	lastH        int
	lastStride   int
	lastPix      []uint32
}

func (v *fakeVideo) SetFormat(format PixelFormat) bool {
	if v.rejectFormat {
		return false
	}
	v.format = format
	return true
}

func (v *fakeVideo) Present(pix []uint32, width, height, strideBytes int) {
	v.presents++
	v.lastW = width
	v.lastH = height
	v.lastStride = strideBytes
	v.lastPix = append(v.lastPix[:0], pix...)
}

type fakeInput struct {
	held  bool
	polls int
}

func (in *fakeInput) Poll() { in.polls++ }

func (in *fakeInput) IsHeld(device, button int) bool { return in.held }

type fakeMessenger struct {
	posts []string
}

func (m *fakeMessenger) Post(msg string, frames int) {
	m.posts = append(m.posts, msg)
}

type harness struct {
	ctrl  *Controller
	mic   *fakeMic
	sink  *fakeSink
	video *fakeVideo
	input *fakeInput
	msg   *fakeMessenger
}

func newHarness(t *testing.T, sampleRate int) *harness {
	t.Helper()
	h := &harness{
		mic:   newFakeMic(),
		sink:  newFakeSink(),
		video: &fakeVideo{},
		input: &fakeInput{},
		msg:   &fakeMessenger{},
	}
	ctrl, err := New(DefaultParams(sampleRate), Capabilities{
		Mic:   h.mic,
		Audio: h.sink,
		Video: h.video,
		Input: h.input,
		Msg:   h.msg,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := ctrl.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	h.ctrl = ctrl
	return h
}

func TestNewRejectsInvalidSampleRate(t *testing.T) {
	for _, rate := range []int{0, -1, 22050, 44099, 96000} {
		_, err := New(DefaultParams(rate), Capabilities{Video: &fakeVideo{}, Input: &fakeInput{}})
		if err == nil {
			t.Errorf("Expected error for sample rate %d", rate)
		}
	}
	for _, rate := range ValidSampleRates {
		_, err := New(DefaultParams(rate), Capabilities{Video: &fakeVideo{}, Input: &fakeInput{}})
		if err != nil {
			t.Errorf("Expected no error for sample rate %d, got: %v", rate, err)
		}
	}
}

func TestLoadFormatRejected(t *testing.T) {
	video := &fakeVideo{rejectFormat: true}
	ctrl, err := New(DefaultParams(44100), Capabilities{Mic: newFakeMic(), Video: video, Input: &fakeInput{}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := ctrl.Load(); !errors.Is(err, ErrFormatRejected) {
		t.Errorf("Expected ErrFormatRejected, got: %v", err)
	}
}

func TestLoadWithoutMicRunsDisplayOnly(t *testing.T) {
	h := &harness{
		mic:   newFakeMic(),
		video: &fakeVideo{},
		input: &fakeInput{},
		msg:   &fakeMessenger{},
	}
	h.mic.openErr = errors.New("no capture device")
	ctrl, err := New(DefaultParams(44100), Capabilities{
		Mic: h.mic, Video: h.video, Input: h.input, Msg: h.msg,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := ctrl.Load(); err != nil {
		t.Fatalf("Expected mic failure to be non-fatal, got: %v", err)
	}
	if ctrl.MicReady() {
		t.Error("Expected MicReady false after failed acquisition")
	}
	if len(h.msg.posts) != 1 {
		t.Fatalf("Expected one advisory, got %d", len(h.msg.posts))
	}

	// Holding the button must not arm recording without a microphone.
	h.input.held = true
	for i := 0; i < 10; i++ {
		ctrl.Tick()
		if got := ctrl.State(); got != StateIdle {
			t.Fatalf("Tick %d: expected IDLE in display-only mode, got %s", i, got)
		}
	}
	if h.video.presents != 10 {
		t.Errorf("Expected 10 presented frames, got %d", h.video.presents)
	}
}

func TestIdleArmsRecordingWhenButtonHeld(t *testing.T) {
	h := newHarness(t, 44100)

	// No button: stays IDLE.
	h.ctrl.Tick()
	if got := h.ctrl.State(); got != StateIdle {
		t.Fatalf("Expected IDLE, got %s", got)
	}

	h.input.held = true
	h.ctrl.Tick()
	if got := h.ctrl.State(); got != StateRecording {
		t.Fatalf("Expected RECORDING after button press, got %s", got)
	}
	if !h.mic.enabled {
		t.Error("Expected microphone enabled while recording")
	}
}

func TestIdleEnableFailureEntersError(t *testing.T) {
	h := newHarness(t, 44100)
	h.mic.enableOK = false
	h.input.held = true

	h.ctrl.Tick()
	if got := h.ctrl.State(); got != StateError {
		t.Fatalf("Expected ERROR after enable failure, got %s", got)
	}

	// ERROR is sticky and keeps counters at zero.
	h.mic.enableOK = true
	for i := 0; i < 5; i++ {
		h.ctrl.Tick()
		if got := h.ctrl.State(); got != StateError {
			t.Fatalf("Tick %d: expected sticky ERROR, got %s", i, got)
		}
		if h.ctrl.FramesRecorded() != 0 || h.ctrl.SamplesPlayed() != 0 {
			t.Fatal("Expected zeroed counters in ERROR state")
		}
	}
}

func TestRecordingCountersMonotonic(t *testing.T) {
	h := newHarness(t, 44100)
	h.input.held = true

	prev := 0
	capacity := DefaultParams(44100).RecordingCapacity()
	for i := 0; i < 30; i++ {
		h.ctrl.Tick()
		got := h.ctrl.FramesRecorded()
		if got < prev {
			t.Fatalf("Tick %d: framesRecorded decreased from %d to %d", i, prev, got)
		}
		if got > capacity {
			t.Fatalf("Tick %d: framesRecorded %d exceeds capacity %d", i, got, capacity)
		}
		prev = got
	}
}

func TestRecordingFillsBufferAndAutoTransitions(t *testing.T) {
	// 44100 Hz at 60 FPS pulls 735 samples per tick: 60 recording ticks
	// cover one second, 300 fill the five-second buffer exactly. The
	// transition to PLAYBACK happens on the tick that fills it, with the
	// button still held.
	h := newHarness(t, 44100)
	h.input.held = true

	params := DefaultParams(44100)
	if got := params.SamplesPerFrame(); got != 735 {
		t.Fatalf("Expected 735 samples per frame, got %d", got)
	}
	if got := params.RecordingCapacity(); got != 220500 {
		t.Fatalf("Expected capacity 220500, got %d", got)
	}

	h.ctrl.Tick() // IDLE -> RECORDING, no samples read yet
	for i := 0; i < 60; i++ {
		h.ctrl.Tick()
	}
	if got := h.ctrl.FramesRecorded(); got != 44100 {
		t.Errorf("Expected 44100 samples after 60 ticks, got %d", got)
	}
	if got := h.ctrl.State(); got != StateRecording {
		t.Fatalf("Expected RECORDING after one second, got %s", got)
	}

	for i := 0; i < 239; i++ {
		h.ctrl.Tick()
		if got := h.ctrl.State(); got != StateRecording {
			t.Fatalf("Recording tick %d: expected RECORDING, got %s", 61+i, got)
		}
	}
	h.ctrl.Tick() // 300th recording tick fills the buffer

	if got := h.ctrl.FramesRecorded(); got != 220500 {
		t.Errorf("Expected full buffer of 220500 samples, got %d", got)
	}
	if got := h.ctrl.State(); got != StatePlayback {
		t.Errorf("Expected PLAYBACK once buffer is full, got %s", got)
	}
	if h.mic.enabled {
		t.Error("Expected microphone disabled during playback")
	}
}

func TestReadFaultEntersStickyError(t *testing.T) {
	h := newHarness(t, 44100)
	h.input.held = true
	h.mic.serve = func(m *fakeMic, dst []int16) int {
		if m.reads >= 10 {
			return -1
		}
		return len(dst)
	}

	h.ctrl.Tick() // arm
	for i := 0; i < 9; i++ {
		h.ctrl.Tick()
	}
	if got := h.ctrl.State(); got != StateRecording {
		t.Fatalf("Expected RECORDING before fault, got %s", got)
	}

	h.ctrl.Tick() // read #10 faults
	if got := h.ctrl.State(); got != StateError {
		t.Fatalf("Expected ERROR after read fault, got %s", got)
	}
	if h.mic.enabled {
		t.Error("Expected microphone disabled after read fault")
	}
	for i := 0; i < 20; i++ {
		h.ctrl.Tick()
		if got := h.ctrl.State(); got != StateError {
			t.Fatalf("Tick %d: expected ERROR to persist, got %s", i, got)
		}
	}
}

func TestRoundTripMonoDuplicatedToStereo(t *testing.T) {
	h := newHarness(t, 8000)
	h.input.held = true

	h.ctrl.Tick() // arm
	ticks := 7    // 7 * 133 = 931 recorded samples
	for i := 0; i < ticks; i++ {
		h.ctrl.Tick()
	}
	recorded := h.ctrl.FramesRecorded()
	if recorded == 0 {
		t.Fatal("Expected samples to be recorded")
	}

	// Release the button; this tick still reads one frame, then builds the
	// playback buffer and transitions.
	h.input.held = false
	h.ctrl.Tick()
	recorded = h.ctrl.FramesRecorded()
	if got := h.ctrl.State(); got != StatePlayback {
		t.Fatalf("Expected PLAYBACK after release, got %s", got)
	}

	// Drop the silence frames submitted so far and capture pure playback.
	h.sink.received = nil
	h.sink.silent = 0
	for h.ctrl.State() == StatePlayback {
		h.ctrl.Tick()
	}

	if got := len(h.sink.received); got != recorded*2 {
		t.Fatalf("Expected %d played stereo samples, got %d", recorded*2, got)
	}
	for i := 0; i < recorded; i++ {
		l, r := h.sink.received[i*2], h.sink.received[i*2+1]
		if l != r {
			t.Fatalf("Sample %d: left %d != right %d", i, l, r)
		}
		if l != int16(i) {
			t.Fatalf("Sample %d: expected recorded value %d, got %d", i, int16(i), l)
		}
	}
}

func TestPlaybackBackpressureHalfRate(t *testing.T) {
	h := newHarness(t, 8000)
	h.input.held = true
	h.ctrl.Tick() // arm
	for i := 0; i < 4; i++ {
		h.ctrl.Tick()
	}
	h.input.held = false
	h.ctrl.Tick()
	recorded := h.ctrl.FramesRecorded()
	if got := h.ctrl.State(); got != StatePlayback {
		t.Fatalf("Expected PLAYBACK, got %s", got)
	}

	// Sink accepts at most half of one frame's worth of stereo frames.
	h.sink.acceptFrames = DefaultParams(8000).SamplesPerFrame() / 2

	prev := 0
	ticks := 0
	for h.ctrl.State() == StatePlayback {
		h.ctrl.Tick()
		ticks++
		played := h.ctrl.SamplesPlayed()
		if played-prev > h.sink.acceptFrames*2 {
			t.Fatalf("Advanced %d samples in one tick, sink accepted at most %d",
				played-prev, h.sink.acceptFrames*2)
		}
		prev = played
		if ticks > 10000 {
			t.Fatal("Playback never finished")
		}
	}

	full := (recorded*2 + h.sink.acceptFrames*2 - 1) / (h.sink.acceptFrames * 2)
	if ticks < full {
		t.Errorf("Playback finished after %d ticks, expected at least %d under backpressure", ticks, full)
	}
}

func TestPlaybackCompletionCountsAcceptedSamples(t *testing.T) {
	h := newHarness(t, 8000)
	h.input.held = true
	h.ctrl.Tick()
	for i := 0; i < 3; i++ {
		h.ctrl.Tick()
	}
	h.input.held = false
	h.ctrl.Tick()
	recorded := h.ctrl.FramesRecorded()

	h.sink.received = nil
	h.sink.acceptFrames = 37 // deliberately misaligned with the frame size
	for h.ctrl.State() == StatePlayback {
		h.ctrl.Tick()
	}
	if got := len(h.sink.received); got != recorded*2 {
		t.Errorf("Expected cumulative accepted samples %d, got %d", recorded*2, got)
	}
}

func TestFinishedPlaybackReturnsToIdle(t *testing.T) {
	h := newHarness(t, 8000)
	h.input.held = true
	h.ctrl.Tick()
	h.ctrl.Tick()
	h.input.held = false
	h.ctrl.Tick()
	for h.ctrl.State() == StatePlayback {
		h.ctrl.Tick()
	}
	if got := h.ctrl.State(); got != StateFinishedPlayback {
		t.Fatalf("Expected FINISHED_PLAYBACK, got %s", got)
	}

	h.ctrl.Tick()
	if got := h.ctrl.State(); got != StateIdle {
		t.Fatalf("Expected IDLE after FINISHED_PLAYBACK, got %s", got)
	}
	if h.ctrl.FramesRecorded() != 0 || h.ctrl.SamplesPlayed() != 0 {
		t.Error("Expected counters reset on IDLE re-entry")
	}
}

func TestTickPresentsExactlyOneFrame(t *testing.T) {
	h := newHarness(t, 44100)
	states := []bool{false, true, true, true, false, false}
	for i, held := range states {
		h.input.held = held
		before := h.video.presents
		h.ctrl.Tick()
		if h.video.presents != before+1 {
			t.Fatalf("Tick %d: expected exactly one Present, got %d", i, h.video.presents-before)
		}
	}
	if h.video.lastW != 320 || h.video.lastH != 240 {
		t.Errorf("Expected 320x240 frame, got %dx%d", h.video.lastW, h.video.lastH)
	}
	if h.video.lastStride != 320*4 {
		t.Errorf("Expected stride %d, got %d", 320*4, h.video.lastStride)
	}
	if got := len(h.video.lastPix); got != 320*240 {
		t.Errorf("Expected %d pixels, got %d", 320*240, got)
	}
}

func TestResetReleasesMicrophone(t *testing.T) {
	h := newHarness(t, 44100)
	h.input.held = true
	h.ctrl.Tick()
	if got := h.ctrl.State(); got != StateRecording {
		t.Fatalf("Expected RECORDING, got %s", got)
	}

	h.ctrl.Reset()
	if got := h.ctrl.State(); got != StateIdle {
		t.Errorf("Expected IDLE after Reset, got %s", got)
	}
	if !h.mic.closed {
		t.Error("Expected microphone closed by Reset")
	}
	if h.ctrl.MicReady() {
		t.Error("Expected mic to require a new Load after Reset")
	}
}
