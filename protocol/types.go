package protocol

import (
	"encoding/json"
	"fmt"
)

// Wire event names. Operations are room-scoped and relayed verbatim to
// every other member of the room; cursor-move, undo and redo are rewritten
// by the server to carry the sender's connection ID.
const (
	EventJoinRoom     = "join-room"
	EventStartDraw    = "start-draw"
	EventDrawing      = "drawing"
	EventEndDraw      = "end-draw"
	EventStartShape   = "start-shape"
	EventDrawingShape = "drawing-shape"
	EventEndShape     = "end-shape"
	EventClear        = "clear"
	EventClearCanvas  = "clear-canvas"
	EventDrawText     = "draw-text"
	EventCursorMove   = "cursor-move"
	EventUndo         = "undo"
	EventRedo         = "redo"
	EventUserJoined   = "user-joined"
	EventUserLeft     = "user-left"
)

// Shape kinds carried by the shape events.
const (
	ShapeLine      = "line"
	ShapeRectangle = "rectangle"
	ShapeCircle    = "circle"
	ShapeArrow     = "arrow"
)

// Envelope frames every message: an event name plus an event-specific
// payload. Most payloads are objects; clear, undo and redo carry the room
// ID as a bare JSON string.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type JoinRoom struct {
	RoomID string `json:"roomId"`
}

// StrokeStart opens a freehand stroke at a point.
type StrokeStart struct {
	RoomID string  `json:"roomId"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Color  string  `json:"color"`
	Size   float64 `json:"size"`
	Tool   string  `json:"tool"`
}

// StrokePoint extends the current stroke to a point.
type StrokePoint struct {
	RoomID string  `json:"roomId"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Color  string  `json:"color"`
	Size   float64 `json:"size"`
	Tool   string  `json:"tool"`
}

// StrokeEnd closes the current stroke.
type StrokeEnd struct {
	RoomID string `json:"roomId"`
	Tool   string `json:"tool"`
}

// ShapeStart anchors a shape preview at its starting point.
type ShapeStart struct {
	RoomID string  `json:"roomId"`
	Shape  string  `json:"shape"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Color  string  `json:"color"`
	Size   float64 `json:"size"`
}

// ShapePreview redraws the in-progress shape from anchor to the current
// pointer position, replacing the previous preview.
type ShapePreview struct {
	RoomID string  `json:"roomId"`
	Shape  string  `json:"shape"`
	X1     float64 `json:"x1"`
	Y1     float64 `json:"y1"`
	X2     float64 `json:"x2"`
	Y2     float64 `json:"y2"`
	Color  string  `json:"color"`
	Size   float64 `json:"size"`
}

// ShapeCommit finalizes a shape.
type ShapeCommit struct {
	RoomID string  `json:"roomId"`
	Shape  string  `json:"shape"`
	X1     float64 `json:"x1"`
	Y1     float64 `json:"y1"`
	X2     float64 `json:"x2"`
	Y2     float64 `json:"y2"`
	Color  string  `json:"color"`
	Size   float64 `json:"size"`
}

// TextPlacement renders a string at a point.
type TextPlacement struct {
	RoomID   string  `json:"roomId"`
	Text     string  `json:"text"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Color    string  `json:"color"`
	FontSize float64 `json:"fontSize"`
}

// ClearBoard wipes the whole canvas. Sent as clear-canvas; the legacy
// clear event with a bare string room ID decodes to the same variant.
type ClearBoard struct {
	RoomID string `json:"roomId"`
}

// CursorMove reports a pointer position for presence display. ClientID is
// filled in by the server.
type CursorMove struct {
	RoomID   string  `json:"roomId"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Color    string  `json:"color"`
	ClientID string  `json:"clientId,omitempty"`
}

// UndoRequest and RedoRequest are the client-emitted advisory notices;
// their wire payload is the bare room ID string.
type UndoRequest struct {
	RoomID string
}

type RedoRequest struct {
	RoomID string
}

// UndoNotice and RedoNotice are the server-rewritten forms delivered to
// peers. Receivers treat them as advisory.
type UndoNotice struct {
	RoomID   string `json:"roomId"`
	ClientID string `json:"clientId"`
}

type RedoNotice struct {
	RoomID   string `json:"roomId"`
	ClientID string `json:"clientId"`
}

// UserJoined and UserLeft are server-originated presence notices.
type UserJoined struct {
	ClientID string `json:"clientId"`
}

type UserLeft struct {
	ClientID string `json:"clientId"`
}

// Marshal encodes an operation variant into a framed wire message.
func Marshal(op any) ([]byte, error) {
	var (
		event   string
		payload any = op
	)

	switch v := op.(type) {
	case JoinRoom:
		event = EventJoinRoom
	case StrokeStart:
		event = EventStartDraw
	case StrokePoint:
		event = EventDrawing
	case StrokeEnd:
		event = EventEndDraw
	case ShapeStart:
		event = EventStartShape
	case ShapePreview:
		event = EventDrawingShape
	case ShapeCommit:
		event = EventEndShape
	case TextPlacement:
		event = EventDrawText
	case ClearBoard:
		event = EventClearCanvas
	case CursorMove:
		event = EventCursorMove
	case UndoRequest:
		event = EventUndo
		payload = v.RoomID
	case RedoRequest:
		event = EventRedo
		payload = v.RoomID
	case UndoNotice:
		event = EventUndo
	case RedoNotice:
		event = EventRedo
	case UserJoined:
		event = EventUserJoined
	case UserLeft:
		event = EventUserLeft
	default:
		return nil, fmt.Errorf("unknown operation type %T", op)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: data})
}

// Decode parses a framed wire message into its tagged operation variant.
// Unknown events and malformed payloads are errors; callers log and skip.
func Decode(frame []byte) (any, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	return decodeData(env)
}

func decodeData(env Envelope) (any, error) {
	unmarshal := func(v any) error {
		if err := json.Unmarshal(env.Data, v); err != nil {
			return fmt.Errorf("decode %s: %w", env.Event, err)
		}
		return nil
	}

	switch env.Event {
	case EventJoinRoom:
		v := JoinRoom{}
		err := unmarshal(&v)
		return v, err
	case EventStartDraw:
		v := StrokeStart{}
		err := unmarshal(&v)
		return v, err
	case EventDrawing:
		v := StrokePoint{}
		err := unmarshal(&v)
		return v, err
	case EventEndDraw:
		v := StrokeEnd{}
		err := unmarshal(&v)
		return v, err
	case EventStartShape:
		v := ShapeStart{}
		err := unmarshal(&v)
		return v, err
	case EventDrawingShape:
		v := ShapePreview{}
		err := unmarshal(&v)
		return v, err
	case EventEndShape:
		v := ShapeCommit{}
		err := unmarshal(&v)
		return v, err
	case EventDrawText:
		v := TextPlacement{}
		err := unmarshal(&v)
		return v, err
	case EventClearCanvas:
		v := ClearBoard{}
		err := unmarshal(&v)
		return v, err
	case EventClear:
		var roomID string
		if err := json.Unmarshal(env.Data, &roomID); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Event, err)
		}
		return ClearBoard{RoomID: roomID}, nil
	case EventCursorMove:
		v := CursorMove{}
		err := unmarshal(&v)
		return v, err
	case EventUndo:
		v := UndoNotice{}
		if err := json.Unmarshal(env.Data, &v); err != nil {
			// Client-emitted form: bare room ID string.
			if err := json.Unmarshal(env.Data, &v.RoomID); err != nil {
				return nil, fmt.Errorf("decode %s: %w", env.Event, err)
			}
		}
		return v, nil
	case EventRedo:
		v := RedoNotice{}
		if err := json.Unmarshal(env.Data, &v); err != nil {
			if err := json.Unmarshal(env.Data, &v.RoomID); err != nil {
				return nil, fmt.Errorf("decode %s: %w", env.Event, err)
			}
		}
		return v, nil
	case EventUserJoined:
		v := UserJoined{}
		err := unmarshal(&v)
		return v, err
	case EventUserLeft:
		v := UserLeft{}
		err := unmarshal(&v)
		return v, err
	default:
		return nil, fmt.Errorf("unknown event %q", env.Event)
	}
}
