// Package engine turns pointer input into rendered pixels plus outbound
// drawing operations. All rendering happens on the caller's dispatch
// loop; nothing here is safe for concurrent use.
package engine

import (
	"image"
	"io"
	"log/slog"

	"collabcanvas/canvas"
	"collabcanvas/history"
	"collabcanvas/protocol"
)

// Tool selects how pointer input is interpreted.
type Tool string

const (
	ToolBrush     Tool = "brush"
	ToolEraser    Tool = "eraser"
	ToolText      Tool = "text"
	ToolLine      Tool = "line"
	ToolRectangle Tool = "rectangle"
	ToolCircle    Tool = "circle"
	ToolArrow     Tool = "arrow"
)

const (
	// The eraser is a brush in the background color at triple width. It
	// cannot restore content beneath other colors; that limitation is
	// inherited deliberately.
	eraserColor       = "#ffffff"
	eraserWidthFactor = 3

	// Text height scales with the selected brush size.
	textSizeFactor = 5

	defaultColor = "#000000"
	defaultSize  = 4
)

// Emitter sends one operation toward the relay. Fire-and-forget: the
// engine never waits on, and never surfaces, delivery failures.
type Emitter interface {
	Emit(op any) error
}

type mode int

const (
	modeIdle mode = iota
	modeStroking
	modeShaping
)

type point struct {
	x, y float64
}

// Engine is the local drawing engine for one participant.
type Engine struct {
	surface *canvas.Surface
	hist    *history.Stack
	emitter Emitter
	roomID  string

	tool  Tool
	color string
	size  float64

	mode        mode
	last        point
	anchor      point
	preShape    *image.RGBA
	pendingText *point
}

func New(surface *canvas.Surface, emitter Emitter, roomID string) *Engine {
	return &Engine{
		surface: surface,
		hist:    history.New(surface.Snapshot()),
		emitter: emitter,
		roomID:  roomID,
		tool:    ToolBrush,
		color:   defaultColor,
		size:    defaultSize,
	}
}

func (e *Engine) Surface() *canvas.Surface { return e.surface }
func (e *Engine) Tool() Tool               { return e.tool }

// SetTool switches tools, discarding any pending text placement.
func (e *Engine) SetTool(t Tool) {
	e.pendingText = nil
	e.tool = t
}

func (e *Engine) SetColor(hex string) { e.color = hex }
func (e *Engine) SetSize(size float64) {
	if size > 0 {
		e.size = size
	}
}

// PointerDown begins a stroke, anchors a shape, or places pending text,
// depending on the selected tool.
func (e *Engine) PointerDown(x, y float64) {
	switch e.tool {
	case ToolBrush, ToolEraser:
		e.mode = modeStroking
		e.last = point{x, y}
		col, size := e.strokeStyle()
		e.surface.StrokeSegment(x, y, x, y, canvas.ColorOr(col, canvas.Ink), size)
		e.emit(protocol.StrokeStart{
			RoomID: e.roomID, X: x, Y: y, Color: col, Size: size, Tool: string(e.tool),
		})

	case ToolLine, ToolRectangle, ToolCircle, ToolArrow:
		e.mode = modeShaping
		e.anchor = point{x, y}
		e.last = point{x, y}
		e.preShape = e.surface.Snapshot()
		e.emit(protocol.ShapeStart{
			RoomID: e.roomID, Shape: e.shapeKind(), X: x, Y: y, Color: e.color, Size: e.size,
		})

	case ToolText:
		e.pendingText = &point{x, y}
	}
}

// PointerMove extends the current stroke or redraws the shape preview.
func (e *Engine) PointerMove(x, y float64) {
	switch e.mode {
	case modeStroking:
		col, size := e.strokeStyle()
		e.surface.StrokeSegment(e.last.x, e.last.y, x, y, canvas.ColorOr(col, canvas.Ink), size)
		e.last = point{x, y}
		e.emit(protocol.StrokePoint{
			RoomID: e.roomID, X: x, Y: y, Color: col, Size: size, Tool: string(e.tool),
		})

	case modeShaping:
		e.restore(e.preShape)
		e.last = point{x, y}
		e.surface.Shape(e.shapeKind(), e.anchor.x, e.anchor.y, x, y,
			canvas.ColorOr(e.color, canvas.Ink), e.size)
		e.emit(protocol.ShapePreview{
			RoomID: e.roomID, Shape: e.shapeKind(),
			X1: e.anchor.x, Y1: e.anchor.y, X2: x, Y2: y,
			Color: e.color, Size: e.size,
		})
	}
}

// PointerUp finalizes the stroke or shape and records an undo snapshot.
func (e *Engine) PointerUp(x, y float64) {
	switch e.mode {
	case modeStroking:
		e.mode = modeIdle
		e.hist.Push(e.surface.Snapshot())
		e.emit(protocol.StrokeEnd{RoomID: e.roomID, Tool: string(e.tool)})

	case modeShaping:
		e.mode = modeIdle
		e.restore(e.preShape)
		e.preShape = nil
		e.surface.Shape(e.shapeKind(), e.anchor.x, e.anchor.y, x, y,
			canvas.ColorOr(e.color, canvas.Ink), e.size)
		e.hist.Push(e.surface.Snapshot())
		e.emit(protocol.ShapeCommit{
			RoomID: e.roomID, Shape: e.shapeKind(),
			X1: e.anchor.x, Y1: e.anchor.y, X2: x, Y2: y,
			Color: e.color, Size: e.size,
		})
	}
}

// PointerCancel finalizes the work in progress at its last known
// position. There is no discard.
func (e *Engine) PointerCancel() {
	e.PointerUp(e.last.x, e.last.y)
}

// MoveCursor reports the pointer position for presence display.
func (e *Engine) MoveCursor(x, y float64) {
	e.emit(protocol.CursorMove{RoomID: e.roomID, X: x, Y: y, Color: e.color})
}

// CommitText renders the pending text placement with the selected color
// and a size-derived font scale. No-op without a pending placement.
func (e *Engine) CommitText(text string) {
	if e.pendingText == nil || text == "" {
		return
	}
	p := *e.pendingText
	e.pendingText = nil

	fontSize := e.size * textSizeFactor
	if err := e.surface.Text(p.x, p.y, text, canvas.ColorOr(e.color, canvas.Ink), fontSize); err != nil {
		slog.Warn("text render failed", "error", err)
		return
	}
	e.hist.Push(e.surface.Snapshot())
	e.emit(protocol.TextPlacement{
		RoomID: e.roomID, Text: text, X: p.x, Y: p.y, Color: e.color, FontSize: fontSize,
	})
}

// Undo restores the previous snapshot. With only the initial snapshot
// left it is a no-op. The broadcast notice is advisory; peers do not
// replay it.
func (e *Engine) Undo() {
	snap, ok := e.hist.Undo()
	if !ok {
		return
	}
	e.restore(snap)
	e.emit(protocol.UndoRequest{RoomID: e.roomID})
}

// Redo restores the most recently undone snapshot, if any.
func (e *Engine) Redo() {
	snap, ok := e.hist.Redo()
	if !ok {
		return
	}
	e.restore(snap)
	e.emit(protocol.RedoRequest{RoomID: e.roomID})
}

// Clear wipes the surface and broadcasts the clear. Both the pre-clear
// and post-clear states land in history so the clear itself is undoable.
func (e *Engine) Clear() {
	e.hist.Push(e.surface.Snapshot())
	e.surface.Clear()
	e.hist.Push(e.surface.Snapshot())
	e.emit(protocol.ClearBoard{RoomID: e.roomID})
}

// ExportPNG writes the current canvas as PNG.
func (e *Engine) ExportPNG(w io.Writer) error {
	return e.surface.WritePNG(w)
}

func (e *Engine) strokeStyle() (color string, size float64) {
	if e.tool == ToolEraser {
		return eraserColor, e.size * eraserWidthFactor
	}
	return e.color, e.size
}

func (e *Engine) shapeKind() string {
	switch e.tool {
	case ToolLine:
		return canvas.KindLine
	case ToolRectangle:
		return canvas.KindRectangle
	case ToolCircle:
		return canvas.KindCircle
	case ToolArrow:
		return canvas.KindArrow
	}
	return canvas.KindLine
}

func (e *Engine) restore(snap *image.RGBA) {
	if err := e.surface.Restore(snap); err != nil {
		slog.Warn("snapshot restore failed", "error", err)
	}
}

func (e *Engine) emit(op any) {
	// Delivery failures never reach the rendering pipeline.
	if err := e.emitter.Emit(op); err != nil {
		slog.Debug("emit failed", "error", err)
	}
}
