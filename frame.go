package life

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Frame is one rendered board image: tightly packed RGBA8 pixels with
// the generation it depicts.
type Frame struct {
	pixels     []byte
	width      int
	height     int
	generation uint64
}

// NewFrame wraps tightly packed RGBA pixels. The pixel slice is
// retained, not copied.
func NewFrame(pixels []byte, width, height int, generation uint64) (*Frame, error) {
	if len(pixels) != width*height*4 {
		return nil, fmt.Errorf("life: frame pixels %d bytes, want %d", len(pixels), width*height*4)
	}
	return &Frame{pixels: pixels, width: width, height: height, generation: generation}, nil
}

// Width returns the frame width in pixels.
func (f *Frame) Width() int { return f.width }

// Height returns the frame height in pixels.
func (f *Frame) Height() int { return f.height }

// Generation returns the generation this frame depicts.
func (f *Frame) Generation() uint64 { return f.generation }

// Image wraps the pixels as an *image.RGBA without copying.
func (f *Frame) Image() *image.RGBA {
	return &image.RGBA{
		Pix:    f.pixels,
		Stride: f.width * 4,
		Rect:   image.Rect(0, 0, f.width, f.height),
	}
}

// EncodePNG writes the frame as PNG.
func (f *Frame) EncodePNG(w io.Writer) error {
	if err := png.Encode(w, f.Image()); err != nil {
		return fmt.Errorf("life: encode png: %w", err)
	}
	return nil
}

// Scaled returns the frame resized by an integer factor using
// nearest-neighbor interpolation, keeping cell edges crisp.
func (f *Frame) Scaled(factor int) (*image.RGBA, error) {
	if factor < 1 {
		return nil, fmt.Errorf("life: invalid scale factor %d", factor)
	}
	dst := image.NewRGBA(image.Rect(0, 0, f.width*factor, f.height*factor))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), f.Image(), f.Image().Bounds(), xdraw.Src, nil)
	return dst, nil
}

// Annotated returns a copy of the frame with a label drawn in the
// top-left corner, typically the generation counter.
func (f *Frame) Annotated(label string) *image.RGBA {
	src := f.Image()
	dst := image.NewRGBA(src.Bounds())
	copy(dst.Pix, src.Pix)

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.White),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(4, 14),
	}
	d.DrawString(label)
	return dst
}
