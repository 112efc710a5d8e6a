package applier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collabcanvas/canvas"
	"collabcanvas/protocol"
)

var red = canvas.ColorOr("#ef4444", canvas.Ink)

func TestApplier_ReplaysRemoteStroke(t *testing.T) {
	// Client A draws (10,10) -> (50,50) in #ef4444 at size 4; this client
	// must render the segment without any local input.
	s := canvas.New(100, 100)
	a := New(s, "demo1")

	a.Apply(protocol.StrokeStart{RoomID: "demo1", X: 10, Y: 10, Color: "#ef4444", Size: 4, Tool: "brush"})
	a.Apply(protocol.StrokePoint{RoomID: "demo1", X: 50, Y: 50, Color: "#ef4444", Size: 4, Tool: "brush"})
	a.Apply(protocol.StrokeEnd{RoomID: "demo1", Tool: "brush"})

	for _, p := range []struct{ x, y int }{{10, 10}, {30, 30}, {50, 50}} {
		assert.Equal(t, red, s.Image().RGBAAt(p.x, p.y), "pixel (%d,%d)", p.x, p.y)
	}
}

func TestApplier_UsesCarriedParametersNotLocalSettings(t *testing.T) {
	s := canvas.New(100, 100)
	a := New(s, "demo1")

	// Two strokes with different carried colors render in those colors.
	a.Apply(protocol.StrokeStart{RoomID: "demo1", X: 20, Y: 20, Color: "#ef4444", Size: 4, Tool: "brush"})
	a.Apply(protocol.StrokeEnd{RoomID: "demo1", Tool: "brush"})
	a.Apply(protocol.StrokeStart{RoomID: "demo1", X: 60, Y: 60, Color: "#3498db", Size: 4, Tool: "brush"})
	a.Apply(protocol.StrokeEnd{RoomID: "demo1", Tool: "brush"})

	assert.Equal(t, red, s.Image().RGBAAt(20, 20))
	assert.Equal(t, canvas.ColorOr("#3498db", canvas.Ink), s.Image().RGBAAt(60, 60))
}

func TestApplier_StrokePointWithoutStart(t *testing.T) {
	s := canvas.New(100, 100)
	a := New(s, "demo1")

	// A point arriving without its start (joined mid-stroke) still paints.
	a.Apply(protocol.StrokePoint{RoomID: "demo1", X: 40, Y: 40, Color: "#ef4444", Size: 4, Tool: "brush"})

	assert.Equal(t, red, s.Image().RGBAAt(40, 40))
}

func TestApplier_IgnoresOtherRooms(t *testing.T) {
	s := canvas.New(100, 100)
	a := New(s, "demo1")

	a.Apply(protocol.StrokeStart{RoomID: "other", X: 10, Y: 10, Color: "#ef4444", Size: 4, Tool: "brush"})
	a.Apply(protocol.StrokePoint{RoomID: "other", X: 50, Y: 50, Color: "#ef4444", Size: 4, Tool: "brush"})
	a.Apply(protocol.ClearBoard{RoomID: "other"})
	a.Apply(protocol.TextPlacement{RoomID: "other", Text: "x", X: 10, Y: 10, Color: "#000000", FontSize: 20})

	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			if s.Image().RGBAAt(x, y) != canvas.Background {
				t.Fatalf("pixel (%d,%d) painted by an operation for another room", x, y)
			}
		}
	}
}

func TestApplier_ClearBlanksRegardlessOfContent(t *testing.T) {
	s := canvas.New(100, 100)
	a := New(s, "demo1")
	a.Apply(protocol.StrokeStart{RoomID: "demo1", X: 10, Y: 10, Color: "#ef4444", Size: 8, Tool: "brush"})
	a.Apply(protocol.StrokePoint{RoomID: "demo1", X: 90, Y: 90, Color: "#ef4444", Size: 8, Tool: "brush"})

	a.Apply(protocol.ClearBoard{RoomID: "demo1"})
	blank := s.Snapshot()

	// Idempotent: a second clear changes nothing.
	a.Apply(protocol.ClearBoard{RoomID: "demo1"})
	assert.Equal(t, blank.Pix, s.Image().Pix)
	assert.Equal(t, canvas.Background, s.Image().RGBAAt(50, 50))
}

func TestApplier_ShapePreviewRestores(t *testing.T) {
	s := canvas.New(100, 100)
	a := New(s, "demo1")

	a.Apply(protocol.ShapeStart{RoomID: "demo1", Shape: canvas.KindLine, X: 10, Y: 10, Color: "#ef4444", Size: 2})
	a.Apply(protocol.ShapePreview{RoomID: "demo1", Shape: canvas.KindLine, X1: 10, Y1: 10, X2: 10, Y2: 90, Color: "#ef4444", Size: 2})
	a.Apply(protocol.ShapePreview{RoomID: "demo1", Shape: canvas.KindLine, X1: 10, Y1: 10, X2: 90, Y2: 10, Color: "#ef4444", Size: 2})
	a.Apply(protocol.ShapeCommit{RoomID: "demo1", Shape: canvas.KindLine, X1: 10, Y1: 10, X2: 90, Y2: 10, Color: "#ef4444", Size: 2})

	assert.Equal(t, canvas.Background, s.Image().RGBAAt(10, 60), "earlier preview must not ghost")
	assert.Equal(t, red, s.Image().RGBAAt(50, 10))
}

func TestApplier_TextPlacement(t *testing.T) {
	s := canvas.New(200, 60)
	a := New(s, "demo1")

	a.Apply(protocol.TextPlacement{RoomID: "demo1", Text: "hello", X: 10, Y: 40, Color: "#000000", FontSize: 24})

	painted := 0
	for y := 0; y < 60; y++ {
		for x := 0; x < 200; x++ {
			if s.Image().RGBAAt(x, y) != canvas.Background {
				painted++
			}
		}
	}
	assert.Greater(t, painted, 50)
}

func TestApplier_UndoNoticeIsAdvisory(t *testing.T) {
	s := canvas.New(100, 100)
	a := New(s, "demo1")
	a.Apply(protocol.StrokeStart{RoomID: "demo1", X: 30, Y: 30, Color: "#ef4444", Size: 4, Tool: "brush"})

	before := s.Snapshot()
	a.Apply(protocol.UndoNotice{RoomID: "demo1", ClientID: "peer"})
	a.Apply(protocol.RedoNotice{RoomID: "demo1", ClientID: "peer"})

	assert.Equal(t, before.Pix, s.Image().Pix, "remote undo/redo must not change the canvas")
}

func TestApplier_PresenceCallbacks(t *testing.T) {
	s := canvas.New(10, 10)
	a := New(s, "demo1")

	var joined, left []string
	var cursors []protocol.CursorMove
	a.OnJoin = func(n protocol.UserJoined) { joined = append(joined, n.ClientID) }
	a.OnLeave = func(n protocol.UserLeft) { left = append(left, n.ClientID) }
	a.OnCursor = func(c protocol.CursorMove) { cursors = append(cursors, c) }

	a.Apply(protocol.UserJoined{ClientID: "p1"})
	a.Apply(protocol.CursorMove{RoomID: "demo1", X: 1, Y: 2, Color: "#fff", ClientID: "p1"})
	a.Apply(protocol.CursorMove{RoomID: "other", X: 9, Y: 9, Color: "#fff", ClientID: "p2"})
	a.Apply(protocol.UserLeft{ClientID: "p1"})

	assert.Equal(t, []string{"p1"}, joined)
	assert.Equal(t, []string{"p1"}, left)
	require.Len(t, cursors, 1, "cursor for another room is filtered")
	assert.Equal(t, "p1", cursors[0].ClientID)
}

func TestApplier_NilCallbacksAreSafe(t *testing.T) {
	s := canvas.New(10, 10)
	a := New(s, "demo1")

	a.Apply(protocol.UserJoined{ClientID: "p1"})
	a.Apply(protocol.CursorMove{RoomID: "demo1", X: 1, Y: 2})
	a.Apply(protocol.UserLeft{ClientID: "p1"})
}
