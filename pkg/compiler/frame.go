package compiler

// Point is a 2D origin.
type Point struct {
	X, Y float64
}

// FrameStack tracks the origin child offsets are measured from. Groups
// push their own position on entry and pop it on exit; everything else
// leaves the origin alone.
type FrameStack struct {
	origin Point
	saved  []Point

	enters, exits int
}

// Origin returns the active origin.
func (s *FrameStack) Origin() Point {
	return s.origin
}

// Enter makes (x, y) the active origin and returns a func that undoes it.
// The returned func is meant to be deferred.
func (s *FrameStack) Enter(x, y float64) func() {
	s.saved = append(s.saved, s.origin)
	s.origin = Point{X: x, Y: y}
	s.enters++
	return s.Exit
}

// Exit restores the origin that was active before the matching Enter.
func (s *FrameStack) Exit() {
	if len(s.saved) == 0 {
		panic("compiler: FrameStack.Exit without matching Enter")
	}
	last := len(s.saved) - 1
	s.origin = s.saved[last]
	s.saved = s.saved[:last]
	s.exits++
}

// Depth returns the number of frames currently entered.
func (s *FrameStack) Depth() int {
	return len(s.saved)
}
