// Package applier replays operations received from other participants
// onto the local canvas. It never re-emits and never touches the local
// undo history: only the receiver's own edits are undoable.
package applier

import (
	"image"
	"log/slog"

	"collabcanvas/canvas"
	"collabcanvas/protocol"
)

// Applier renders remote operations for one joined room. Rendering always
// uses the parameters carried in the message, never the receiver's own
// tool settings. Runs on the same single dispatch loop as the engine.
type Applier struct {
	surface *canvas.Surface
	roomID  string

	// Remote stroke cursor: start-draw sets it, drawing draws a segment
	// from it. One in-flight remote stroke at a time, matching the relay's
	// per-sender forwarding order.
	stroke   *strokeState
	preShape *image.RGBA

	// OnCursor, OnJoin and OnLeave let the UI layer show presence. All
	// optional.
	OnCursor func(protocol.CursorMove)
	OnJoin   func(protocol.UserJoined)
	OnLeave  func(protocol.UserLeft)
}

type strokeState struct {
	x, y float64
}

func New(surface *canvas.Surface, roomID string) *Applier {
	return &Applier{surface: surface, roomID: roomID}
}

// Apply replays one decoded operation. Operations for a room other than
// the joined one are ignored; a connection is joined to exactly one room.
func (a *Applier) Apply(op any) {
	switch v := op.(type) {
	case protocol.StrokeStart:
		if v.RoomID != a.roomID {
			return
		}
		a.stroke = &strokeState{x: v.X, y: v.Y}
		a.surface.StrokeSegment(v.X, v.Y, v.X, v.Y, canvas.ColorOr(v.Color, canvas.Ink), v.Size)

	case protocol.StrokePoint:
		if v.RoomID != a.roomID {
			return
		}
		if a.stroke == nil {
			// Missed the start; treat the point as a new stroke origin.
			a.stroke = &strokeState{x: v.X, y: v.Y}
		}
		a.surface.StrokeSegment(a.stroke.x, a.stroke.y, v.X, v.Y,
			canvas.ColorOr(v.Color, canvas.Ink), v.Size)
		a.stroke.x, a.stroke.y = v.X, v.Y

	case protocol.StrokeEnd:
		if v.RoomID != a.roomID {
			return
		}
		a.stroke = nil

	case protocol.ShapeStart:
		if v.RoomID != a.roomID {
			return
		}
		a.preShape = a.surface.Snapshot()

	case protocol.ShapePreview:
		if v.RoomID != a.roomID {
			return
		}
		a.restorePreShape()
		a.surface.Shape(v.Shape, v.X1, v.Y1, v.X2, v.Y2,
			canvas.ColorOr(v.Color, canvas.Ink), v.Size)

	case protocol.ShapeCommit:
		if v.RoomID != a.roomID {
			return
		}
		a.restorePreShape()
		a.preShape = nil
		a.surface.Shape(v.Shape, v.X1, v.Y1, v.X2, v.Y2,
			canvas.ColorOr(v.Color, canvas.Ink), v.Size)

	case protocol.TextPlacement:
		if v.RoomID != a.roomID {
			return
		}
		if err := a.surface.Text(v.X, v.Y, v.Text, canvas.ColorOr(v.Color, canvas.Ink), v.FontSize); err != nil {
			slog.Warn("remote text render failed", "error", err)
		}

	case protocol.ClearBoard:
		if v.RoomID != a.roomID {
			return
		}
		a.surface.Clear()

	case protocol.CursorMove:
		if v.RoomID != a.roomID {
			return
		}
		if a.OnCursor != nil {
			a.OnCursor(v)
		}

	case protocol.UndoNotice, protocol.RedoNotice:
		// Advisory only; remote undo does not rewind the local canvas.

	case protocol.UserJoined:
		if a.OnJoin != nil {
			a.OnJoin(v)
		}

	case protocol.UserLeft:
		if a.OnLeave != nil {
			a.OnLeave(v)
		}
	}
}

func (a *Applier) restorePreShape() {
	if a.preShape == nil {
		return
	}
	if err := a.surface.Restore(a.preShape); err != nil {
		slog.Warn("shape preview restore failed", "error", err)
	}
}
