package host

import (
	"fmt"
	"io"

	"github.com/audiolibrelab/micloop/internal/engine"
	"github.com/audiolibrelab/micloop/internal/render"
)

// termBarWidth is the character width of each terminal progress bar.
const termBarWidth = 20

// presentInterval throttles terminal redraws to roughly 10 Hz at 60 FPS.
const presentInterval = 6

// TermVideo implements engine.VideoSink by summarizing each frame as two
// text progress bars. It recovers the fill fractions by counting the bar
// colors in the pixel data, so it needs no knowledge of the display layout.
type TermVideo struct {
	w      io.Writer
	frames int
}

func NewTermVideo(w io.Writer) *TermVideo {
	return &TermVideo{w: w}
}

// SetFormat accepts only the XRGB8888 frames the engine renders.
func (t *TermVideo) SetFormat(format engine.PixelFormat) bool {
	return format == engine.PixelFormatXRGB8888
}

// Present redraws the progress line in place.
func (t *TermVideo) Present(pix []uint32, width, height, strideBytes int) {
	t.frames++
	if t.frames%presentInterval != 1 {
		return
	}

	var recorded, played int
	for _, p := range pix {
		switch p {
		case render.Yellow:
			recorded++
		case render.Blue:
			played++
		}
	}

	fmt.Fprintf(t.w, "\rrec [%s]  play [%s] ",
		bar(recorded, width), bar(played, width))
}

func bar(lit, width int) string {
	filled := lit * termBarWidth / width
	if filled > termBarWidth {
		filled = termBarWidth
	}
	out := make([]byte, termBarWidth)
	for i := range out {
		if i < filled {
			out[i] = '#'
		} else {
			out[i] = ' '
		}
	}
	return string(out)
}

// NullVideo accepts any pixel format and drops frames.
type NullVideo struct{}

func (NullVideo) SetFormat(format engine.PixelFormat) bool { return true }

func (NullVideo) Present(pix []uint32, width, height, stride int) {}
