// Package history keeps the client-local undo buffer: full-canvas raster
// snapshots, bounded FIFO. Snapshots never leave the client.
package history

import "image"

// MaxSnapshots bounds memory for the undo buffer.
const MaxSnapshots = 30

// Stack holds at most MaxSnapshots snapshots, evicting the oldest on
// overflow. It always holds at least the initial snapshot: undo cannot go
// below the blank state. Undone snapshots move to a redo buffer that is
// discarded by the next push.
type Stack struct {
	snaps []*image.RGBA
	redo  []*image.RGBA
}

// New seeds the stack with the initial (blank) snapshot.
func New(initial *image.RGBA) *Stack {
	return &Stack{snaps: []*image.RGBA{initial}}
}

// Push records a new snapshot and invalidates the redo buffer.
func (s *Stack) Push(snap *image.RGBA) {
	s.snaps = append(s.snaps, snap)
	if len(s.snaps) > MaxSnapshots {
		s.snaps = s.snaps[len(s.snaps)-MaxSnapshots:]
	}
	s.redo = nil
}

// Undo pops the most recent snapshot and returns the new top. Returns
// false when only the initial snapshot remains.
func (s *Stack) Undo() (*image.RGBA, bool) {
	if len(s.snaps) <= 1 {
		return nil, false
	}
	top := s.snaps[len(s.snaps)-1]
	s.snaps = s.snaps[:len(s.snaps)-1]
	s.redo = append(s.redo, top)
	return s.snaps[len(s.snaps)-1], true
}

// Redo restores the most recently undone snapshot, if any.
func (s *Stack) Redo() (*image.RGBA, bool) {
	if len(s.redo) == 0 {
		return nil, false
	}
	top := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	s.snaps = append(s.snaps, top)
	if len(s.snaps) > MaxSnapshots {
		s.snaps = s.snaps[len(s.snaps)-MaxSnapshots:]
	}
	return top, true
}

// Len reports the number of retained snapshots.
func (s *Stack) Len() int { return len(s.snaps) }
