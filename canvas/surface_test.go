package canvas

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var red = color.RGBA{R: 0xef, G: 0x44, B: 0x44, A: 0xff}

func TestParseHex(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{in: "#ef4444", want: red},
		{in: "#000000", want: color.RGBA{A: 0xff}},
		{in: "#fff", want: color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}},
		{in: "#f00", want: color.RGBA{R: 0xff, A: 0xff}},
		{in: "ef4444", wantErr: true},
		{in: "#gggggg", wantErr: true},
		{in: "#ef44", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseHex(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestColorOr_Fallback(t *testing.T) {
	assert.Equal(t, red, ColorOr("#ef4444", Ink))
	assert.Equal(t, Ink, ColorOr("nope", Ink))
}

func TestSurface_StartsBlank(t *testing.T) {
	s := New(20, 20)
	assertAllBackground(t, s)
}

func TestSurface_ClearIdempotent(t *testing.T) {
	s := New(40, 40)
	s.StrokeSegment(5, 5, 30, 30, red, 4)
	require.NotEqual(t, Background, s.Image().RGBAAt(10, 10))

	s.Clear()
	first := s.Snapshot()

	s.Clear()
	assert.Equal(t, first.Pix, s.Image().Pix, "clearing an already blank surface changes nothing")
	assertAllBackground(t, s)
}

func TestSurface_StrokeSegmentCoversPath(t *testing.T) {
	s := New(64, 64)
	s.StrokeSegment(10, 10, 50, 50, red, 4)

	// The whole diagonal must be painted, not just the endpoints.
	for _, p := range []struct{ x, y int }{{10, 10}, {30, 30}, {50, 50}} {
		assert.Equal(t, red, s.Image().RGBAAt(p.x, p.y), "pixel (%d,%d)", p.x, p.y)
	}
	// Pixels far off the segment stay untouched.
	assert.Equal(t, Background, s.Image().RGBAAt(50, 10))
}

func TestSurface_StrokeSegmentDot(t *testing.T) {
	s := New(20, 20)
	s.StrokeSegment(10, 10, 10, 10, red, 4)
	assert.Equal(t, red, s.Image().RGBAAt(10, 10))
}

func TestSurface_StrokeClipping(t *testing.T) {
	s := New(20, 20)
	// Drawing past the edge must not panic.
	s.StrokeSegment(-10, -10, 30, 30, red, 6)
	assert.Equal(t, red, s.Image().RGBAAt(10, 10))
}

func TestSurface_ShapeRectangle(t *testing.T) {
	s := New(64, 64)
	s.Shape(KindRectangle, 10, 10, 40, 30, red, 2)

	for _, p := range []struct{ x, y int }{{10, 10}, {40, 10}, {40, 30}, {10, 30}, {25, 10}} {
		assert.Equal(t, red, s.Image().RGBAAt(p.x, p.y), "edge pixel (%d,%d)", p.x, p.y)
	}
	assert.Equal(t, Background, s.Image().RGBAAt(25, 20), "interior stays unfilled")
}

func TestSurface_ShapeCircle(t *testing.T) {
	s := New(64, 64)
	s.Shape(KindCircle, 32, 32, 42, 32, red, 2) // radius 10 around (32,32)

	assert.Equal(t, red, s.Image().RGBAAt(42, 32))
	assert.Equal(t, red, s.Image().RGBAAt(22, 32))
	assert.Equal(t, red, s.Image().RGBAAt(32, 42))
	assert.Equal(t, Background, s.Image().RGBAAt(32, 32), "center stays unfilled")
}

func TestSurface_ShapeArrow(t *testing.T) {
	s := New(64, 64)
	s.Shape(KindArrow, 10, 32, 50, 32, red, 2)

	assert.Equal(t, red, s.Image().RGBAAt(30, 32), "shaft")
	// Arrowhead flares behind the tip.
	head := false
	for y := 20; y < 32; y++ {
		if s.Image().RGBAAt(44, y) == red {
			head = true
		}
	}
	assert.True(t, head, "expected an arrowhead above the shaft")
}

func TestSurface_ShapeUnknownKindIgnored(t *testing.T) {
	s := New(20, 20)
	s.Shape("hexagon", 0, 0, 19, 19, red, 2)
	assertAllBackground(t, s)
}

func TestSurface_SnapshotRestore(t *testing.T) {
	s := New(32, 32)
	s.StrokeSegment(5, 5, 25, 25, red, 4)
	snap := s.Snapshot()

	// Snapshot is a deep copy: drawing afterwards must not mutate it.
	s.StrokeSegment(5, 25, 25, 5, red, 4)
	require.NotEqual(t, snap.Pix, s.Image().Pix)

	require.NoError(t, s.Restore(snap))
	assert.Equal(t, snap.Pix, s.Image().Pix)
}

func TestSurface_RestoreBoundsMismatch(t *testing.T) {
	s := New(32, 32)
	other := New(16, 16)
	before := s.Snapshot()

	err := s.Restore(other.Snapshot())
	assert.Error(t, err)
	assert.Equal(t, before.Pix, s.Image().Pix, "surface keeps its last valid state")

	assert.Error(t, s.Restore(nil))
}

func TestSurface_WritePNG(t *testing.T) {
	s := New(16, 16)
	s.StrokeSegment(2, 2, 12, 12, red, 2)

	var buf bytes.Buffer
	require.NoError(t, s.WritePNG(&buf))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 16, img.Bounds().Dx())
	assert.Equal(t, 16, img.Bounds().Dy())
}

func TestSurface_Text(t *testing.T) {
	s := New(200, 60)
	require.NoError(t, s.Text(10, 40, "hello", Ink, 24))

	painted := 0
	for y := 0; y < 60; y++ {
		for x := 0; x < 200; x++ {
			if s.Image().RGBAAt(x, y) != Background {
				painted++
			}
		}
	}
	assert.Greater(t, painted, 50, "text must paint a substantial number of pixels")
}

func TestSurface_TextEmptyString(t *testing.T) {
	s := New(20, 20)
	require.NoError(t, s.Text(5, 10, "", Ink, 12))
	assertAllBackground(t, s)
}

func assertAllBackground(t *testing.T, s *Surface) {
	t.Helper()
	for y := 0; y < s.Height(); y++ {
		for x := 0; x < s.Width(); x++ {
			if s.Image().RGBAAt(x, y) != Background {
				t.Fatalf("pixel (%d,%d) = %v, want background", x, y, s.Image().RGBAAt(x, y))
			}
		}
	}
}
