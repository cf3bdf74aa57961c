package render

// Rows of the fixed display layout.
const (
	ReferenceRow = 32
	RecordedRow  = 110
	PlayedRow    = 130

	noticeX = 8
	noticeY = 16
)

// Notice is an advisory message with a remaining on-screen lifetime counted
// in frames. The caller decrements Frames once per tick; Frame only reads it.
type Notice struct {
	Text   string
	Frames int
}

// Visible reports whether the notice should still be drawn.
func (n Notice) Visible() bool {
	return n.Frames > 0 && n.Text != ""
}

// Frame regenerates the full display for one tick: black background, a white
// reference line, a yellow recorded-progress bar, a blue played-progress bar
// and the advisory text while it is visible. Calling it twice with the same
// arguments produces an identical framebuffer.
func Frame(fb *Framebuffer, recordedRatio, playedRatio float64, notice Notice) {
	fb.Clear()
	fb.HLine(ReferenceRow, White)
	fb.Bar(RecordedRow, recordedRatio, Yellow)
	fb.Bar(PlayedRow, playedRatio, Blue)
	if notice.Visible() {
		fb.Text(noticeX, noticeY, notice.Text, White)
	}
}
