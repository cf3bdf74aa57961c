package render

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Pixel colors, packed XRGB8888.
const (
	Red    uint32 = 0xff << 16
	Green  uint32 = 0xff << 8
	Blue   uint32 = 0xff
	Yellow uint32 = Red | Green
	White  uint32 = Red | Green | Blue
)

// Framebuffer is a fixed-size XRGB8888 pixel surface. It implements
// draw.Image so text can be drawn onto it with x/image font faces.
type Framebuffer struct {
	W, H int
	Pix  []uint32
}

// New allocates a zeroed (black) framebuffer.
func New(w, h int) *Framebuffer {
	return &Framebuffer{W: w, H: h, Pix: make([]uint32, w*h)}
}

// StrideBytes is the byte length of one pixel row. Rows are not padded.
func (f *Framebuffer) StrideBytes() int {
	return f.W * 4
}

// Clear fills the framebuffer with black.
func (f *Framebuffer) Clear() {
	for i := range f.Pix {
		f.Pix[i] = 0
	}
}

// HLine draws a full-width horizontal line at the given row.
func (f *Framebuffer) HLine(row int, c uint32) {
	if row < 0 || row >= f.H {
		return
	}
	for x := 0; x < f.W; x++ {
		f.Pix[x+f.W*row] = c
	}
}

// Bar fills the leading fraction of the given row. A pixel at column x is
// lit when x/width does not exceed the fraction, so a zero fraction still
// lights the first column.
func (f *Framebuffer) Bar(row int, fraction float64, c uint32) {
	if row < 0 || row >= f.H {
		return
	}
	for x := 0; x < f.W; x++ {
		if float64(x)/float64(f.W) <= fraction {
			f.Pix[x+f.W*row] = c
		}
	}
}

// Text draws s with the fixed 7x13 face, with the baseline at (x, y).
func (f *Framebuffer) Text(x, y int, s string, c uint32) {
	d := font.Drawer{
		Dst:  f,
		Src:  image.NewUniform(rgba(c)),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func rgba(c uint32) color.RGBA {
	return color.RGBA{
		R: uint8(c >> 16),
		G: uint8(c >> 8),
		B: uint8(c),
		A: 0xff,
	}
}

// ColorModel implements image.Image.
func (f *Framebuffer) ColorModel() color.Model { return color.RGBAModel }

// Bounds implements image.Image.
func (f *Framebuffer) Bounds() image.Rectangle { return image.Rect(0, 0, f.W, f.H) }

// At implements image.Image.
func (f *Framebuffer) At(x, y int) color.Color {
	if x < 0 || x >= f.W || y < 0 || y >= f.H {
		return color.RGBA{}
	}
	return rgba(f.Pix[x+f.W*y])
}

// Set implements draw.Image.
func (f *Framebuffer) Set(x, y int, c color.Color) {
	if x < 0 || x >= f.W || y < 0 || y >= f.H {
		return
	}
	r, g, b, _ := c.RGBA()
	f.Pix[x+f.W*y] = (uint32(r>>8) << 16) | (uint32(g>>8) << 8) | uint32(b>>8)
}
