package media

import (
	"fmt"
	"strconv"

	"gocv.io/x/gocv"
)

// OpenSource opens a video capture from a camera index ("0", "1") or a
// file path. A source that fails to open is fatal for the caller: silent
// retries against a missing camera device provide no value, so no retry
// loop is attempted here.
func OpenSource(source string) (*gocv.VideoCapture, error) {
	var cap *gocv.VideoCapture
	var err error

	if idx, convErr := strconv.Atoi(source); convErr == nil {
		cap, err = gocv.OpenVideoCapture(idx)
	} else {
		cap, err = gocv.OpenVideoCapture(source)
	}
	if err != nil {
		return nil, fmt.Errorf("could not open video source %s: %w", source, err)
	}
	if !cap.IsOpened() {
		cap.Close()
		return nil, fmt.Errorf("could not open video source %s", source)
	}
	return cap, nil
}
