package media

// Track is one tracker-reported subject in the current frame: a bounding
// box with a per-session stable id. It is transient and never persisted.
type Track struct {
	X1, Y1, X2, Y2 int
	TrackID        int
	Confidence     float32
	ClassID        int
}

// Area returns the pixel area of the bounding box. Registration ranks
// candidates by area, largest (presumably closest) first.
func (t Track) Area() int {
	w := t.X2 - t.X1
	h := t.Y2 - t.Y1
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}
