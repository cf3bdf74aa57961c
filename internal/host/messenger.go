package host

import "log/slog"

// LogMessenger surfaces the engine's one-shot advisories through the
// structured log; the advisory text is also drawn on the framebuffer by the
// engine itself.
type LogMessenger struct{}

func (LogMessenger) Post(msg string, frames int) {
	slog.Info(msg, "display_frames", frames)
}
