package canvas

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/draw"
)

// Shape kinds accepted by Shape. These match the wire protocol's shape
// names.
const (
	KindLine      = "line"
	KindRectangle = "rectangle"
	KindCircle    = "circle"
	KindArrow     = "arrow"
)

// Surface is a client-local raster drawing surface. It is not safe for
// concurrent use: the owning client's engine and applier both run on a
// single dispatch loop.
type Surface struct {
	img *image.RGBA
	bg  color.RGBA
}

func New(width, height int) *Surface {
	s := &Surface{
		img: image.NewRGBA(image.Rect(0, 0, width, height)),
		bg:  Background,
	}
	s.Clear()
	return s
}

func (s *Surface) Width() int  { return s.img.Bounds().Dx() }
func (s *Surface) Height() int { return s.img.Bounds().Dy() }

// Image exposes the backing raster for inspection and encoding.
func (s *Surface) Image() *image.RGBA { return s.img }

// Clear fills the surface with the background color. Idempotent.
func (s *Surface) Clear() {
	draw.Draw(s.img, s.img.Bounds(), image.NewUniform(s.bg), image.Point{}, draw.Src)
}

// StrokeSegment paints a thick segment from (x0,y0) to (x1,y1) by
// stamping discs along it. A zero-length segment paints a single dot.
func (s *Surface) StrokeSegment(x0, y0, x1, y1 float64, col color.RGBA, width float64) {
	r := width / 2
	if r < 0.5 {
		r = 0.5
	}

	dx, dy := x1-x0, y1-y0
	dist := math.Hypot(dx, dy)
	steps := int(math.Ceil(dist/(r*0.5))) + 1

	for i := 0; i < steps; i++ {
		t := 0.0
		if steps > 1 {
			t = float64(i) / float64(steps-1)
		}
		s.fillDisc(x0+dx*t, y0+dy*t, r, col)
	}
}

// Shape draws one committed or previewed shape from (x1,y1) to (x2,y2).
// Unknown kinds are ignored.
func (s *Surface) Shape(kind string, x1, y1, x2, y2 float64, col color.RGBA, width float64) {
	switch kind {
	case KindLine:
		s.StrokeSegment(x1, y1, x2, y2, col, width)
	case KindRectangle:
		s.StrokeSegment(x1, y1, x2, y1, col, width)
		s.StrokeSegment(x2, y1, x2, y2, col, width)
		s.StrokeSegment(x2, y2, x1, y2, col, width)
		s.StrokeSegment(x1, y2, x1, y1, col, width)
	case KindCircle:
		s.circle(x1, y1, math.Hypot(x2-x1, y2-y1), col, width)
	case KindArrow:
		s.arrow(x1, y1, x2, y2, col, width)
	}
}

// Snapshot deep-copies the current raster.
func (s *Surface) Snapshot() *image.RGBA {
	snap := image.NewRGBA(s.img.Bounds())
	copy(snap.Pix, s.img.Pix)
	return snap
}

// Restore blits a snapshot back onto the surface. A snapshot with
// different bounds is a render failure: the surface keeps its last valid
// state.
func (s *Surface) Restore(snap *image.RGBA) error {
	if snap == nil || snap.Bounds() != s.img.Bounds() {
		return fmt.Errorf("snapshot bounds mismatch")
	}
	copy(s.img.Pix, snap.Pix)
	return nil
}

// WritePNG encodes the surface as PNG. Purely local, no network.
func (s *Surface) WritePNG(w io.Writer) error {
	return png.Encode(w, s.img)
}

func (s *Surface) fillDisc(cx, cy, r float64, col color.RGBA) {
	minX := int(math.Floor(cx - r))
	maxX := int(math.Ceil(cx + r))
	minY := int(math.Floor(cy - r))
	maxY := int(math.Ceil(cy + r))
	rr := r * r

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			dx := float64(x) + 0.5 - cx
			dy := float64(y) + 0.5 - cy
			if dx*dx+dy*dy <= rr {
				if image.Pt(x, y).In(s.img.Bounds()) {
					s.img.SetRGBA(x, y, col)
				}
			}
		}
	}
}

func (s *Surface) circle(cx, cy, r float64, col color.RGBA, width float64) {
	if r <= 0 {
		s.fillDisc(cx, cy, math.Max(width/2, 0.5), col)
		return
	}

	segments := int(math.Max(24, math.Ceil(r)))
	px := cx + r
	py := cy
	for i := 1; i <= segments; i++ {
		a := 2 * math.Pi * float64(i) / float64(segments)
		nx := cx + r*math.Cos(a)
		ny := cy + r*math.Sin(a)
		s.StrokeSegment(px, py, nx, ny, col, width)
		px, py = nx, ny
	}
}

func (s *Surface) arrow(x1, y1, x2, y2 float64, col color.RGBA, width float64) {
	s.StrokeSegment(x1, y1, x2, y2, col, width)

	angle := math.Atan2(y2-y1, x2-x1)
	head := math.Max(12, width*3)
	for _, offset := range []float64{math.Pi - math.Pi/6, math.Pi + math.Pi/6} {
		hx := x2 + head*math.Cos(angle+offset)
		hy := y2 + head*math.Sin(angle+offset)
		s.StrokeSegment(x2, y2, hx, hy, col, width)
	}
}
