package media

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

var (
	colorKnown    = color.RGBA{R: 0, G: 255, B: 0, A: 0}   // green
	colorStranger = color.RGBA{R: 255, G: 0, B: 0, A: 0}   // red
	colorHint     = color.RGBA{R: 255, G: 255, B: 0, A: 0} // yellow
)

// DrawTrack renders the bounding box and classification label for one
// track: green with "Name (0.87)" when known, red with "Stranger (0.00)"
// otherwise. Classification failures never crash the live view; they
// arrive here as stranger labels with score 0.00.
func DrawTrack(frame *gocv.Mat, track Track, label string, known bool) {
	c := colorStranger
	if known {
		c = colorKnown
	}
	gocv.Rectangle(frame, image.Rect(track.X1, track.Y1, track.X2, track.Y2), c, 2)
	gocv.PutText(frame, label, image.Pt(track.X1, track.Y1-10), gocv.FontHersheySimplex, 0.5, c, 2)
}

// DrawRegisterHint renders the registration prompt under a stranger's box
func DrawRegisterHint(frame *gocv.Mat, track Track) {
	gocv.PutText(frame, "Press 'r' to Register", image.Pt(track.X1, track.Y2+20), gocv.FontHersheySimplex, 0.5, colorHint, 1)
}

// DrawBanner renders a prominent centered message (registration pause)
func DrawBanner(frame *gocv.Mat, text string) {
	gocv.PutText(frame, text, image.Pt(50, frame.Rows()/2), gocv.FontHersheySimplex, 1, colorHint, 3)
}

// DrawExitDuration renders the just-logged session duration in the corner
func DrawExitDuration(frame *gocv.Mat, text string) {
	gocv.PutText(frame, text, image.Pt(10, 50), gocv.FontHersheySimplex, 1, colorKnown, 2)
}
