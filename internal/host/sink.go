package host

import (
	"fmt"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// sinkBufferSeconds sizes the queue between Submit and the oto player. The
// bound is what produces backpressure: once it is full, Submit accepts fewer
// frames and the engine retries the rest on later ticks.
const sinkBufferSeconds = 1

// pcmQueue is a bounded byte queue of 16-bit little-endian stereo PCM. Submit
// writes whole stereo frames while space remains; the oto player drains it
// through io.Reader, receiving silence when the queue is empty.
type pcmQueue struct {
	mu    sync.Mutex
	buf   []byte
	limit int
}

const stereoFrameBytes = 4 // two int16 samples

func newPCMQueue(limitFrames int) *pcmQueue {
	return &pcmQueue{limit: limitFrames * stereoFrameBytes}
}

// WriteFrames enqueues as many whole stereo frames from samples as fit and
// returns the number of frames accepted.
func (q *pcmQueue) WriteFrames(samples []int16) int {
	frames := len(samples) / 2

	q.mu.Lock()
	defer q.mu.Unlock()
	free := (q.limit - len(q.buf)) / stereoFrameBytes
	if frames > free {
		frames = free
	}
	for i := 0; i < frames*2; i++ {
		s := uint16(samples[i])
		q.buf = append(q.buf, byte(s), byte(s>>8))
	}
	return frames
}

// Read implements io.Reader for the audio backend. It always fills p,
// padding with silence when the queue runs dry, so the player never starves.
func (q *pcmQueue) Read(p []byte) (int, error) {
	q.mu.Lock()
	n := copy(p, q.buf)
	q.buf = q.buf[n:]
	q.mu.Unlock()

	for i := n; i < len(p); i++ {
		p[i] = 0
	}
	return len(p), nil
}

// queuedFrames reports how many whole stereo frames are waiting.
func (q *pcmQueue) queuedFrames() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buf) / stereoFrameBytes
}

// OtoSink implements engine.AudioSink on the system's audio output.
type OtoSink struct {
	ctx    *oto.Context
	player *oto.Player
	queue  *pcmQueue
}

// NewOtoSink opens the default audio output at the given sample rate. It
// blocks until the audio backend is ready.
func NewOtoSink(sampleRate int) (*OtoSink, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open audio output: %w", err)
	}
	<-ready

	queue := newPCMQueue(sampleRate * sinkBufferSeconds)
	player := ctx.NewPlayer(queue)
	player.Play()

	return &OtoSink{ctx: ctx, player: player, queue: queue}, nil
}

// Submit enqueues interleaved stereo samples and returns the number of
// stereo frames accepted, which is fewer than offered when the output buffer
// is full.
func (s *OtoSink) Submit(samples []int16) int {
	return s.queue.WriteFrames(samples)
}

// Close stops playback.
func (s *OtoSink) Close() error {
	return s.player.Close()
}
