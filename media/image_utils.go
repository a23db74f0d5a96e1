package media

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	"gocv.io/x/gocv"
)

var supportedImageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".bmp": true, ".tif": true, ".tiff": true,
}

// IsRasterImage checks if the filename has a common raster image extension
func IsRasterImage(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return supportedImageExtensions[ext]
}

// LoadOrientedImage reads a registration photo with its EXIF orientation
// applied and returns it as a Mat ready for detection. Phone photos are
// routinely stored rotated; ignoring the orientation tag would feed the
// detector sideways faces.
func LoadOrientedImage(path string) (gocv.Mat, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("failed to open image %s: %w", path, err)
	}

	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("failed to convert image %s: %w", path, err)
	}

	// detection and extraction expect BGR, as delivered by VideoCapture
	bgr := gocv.NewMat()
	gocv.CvtColor(mat, &bgr, gocv.ColorRGBToBGR)
	mat.Close()
	return bgr, nil
}

// PhotoTakenAt extracts the EXIF capture time of a registration photo.
// Returns false when the file has no usable EXIF data.
func PhotoTakenAt(path string) (time.Time, bool) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, false
	}
	defer f.Close()

	exifData, err := exif.Decode(f)
	if err != nil {
		return time.Time{}, false
	}
	taken, err := exifData.DateTime()
	if err != nil {
		return time.Time{}, false
	}
	return taken, true
}
