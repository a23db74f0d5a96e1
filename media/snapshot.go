package media

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gocv.io/x/gocv"
)

// SaveSnapshot writes the track's crop of the frame as a JPEG under dir
// with a generated filename, returning the saved path. Snapshots give the
// operator a visual record of what was bound to a name at registration.
func SaveSnapshot(frame gocv.Mat, track Track, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create snapshot directory %s: %w", dir, err)
	}

	x1 := clampInt(track.X1, 0, frame.Cols())
	y1 := clampInt(track.Y1, 0, frame.Rows())
	x2 := clampInt(track.X2, 0, frame.Cols())
	y2 := clampInt(track.Y2, 0, frame.Rows())
	if x1 >= x2 || y1 >= y2 {
		return "", fmt.Errorf("degenerate track region for snapshot")
	}

	crop := frame.Region(image.Rect(x1, y1, x2, y2))
	defer crop.Close()

	snapUUID, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate snapshot filename: %w", err)
	}
	path := filepath.Join(dir, snapUUID.String()+".jpg")

	if ok := gocv.IMWrite(path, crop); !ok {
		return "", fmt.Errorf("failed to write snapshot %s", path)
	}
	return path, nil
}
