package media

import (
	"image"
	"log"

	"gocv.io/x/gocv"
)

// personClassID is the 'person' class in the MobileNet-SSD VOC label set.
const personClassID = 15

// iouMatchThreshold is the minimum overlap for a detection to inherit the
// track id of a box from the previous frame.
const iouMatchThreshold = 0.3

// PersonDetector detects people with a MobileNet-SSD DNN and assigns
// per-session stable track ids by greedy IoU association against the
// previous frame.
type PersonDetector struct {
	Net     gocv.Net
	Enabled bool

	ConfThreshold float32

	// previous frame's tracks, for id association
	prev   []Track
	nextID int
}

// NewPersonDetector loads the person detection model
func NewPersonDetector(configPath, modelPath string, confThreshold float32) *PersonDetector {
	if configPath == "" || modelPath == "" {
		log.Println("detection: model paths are empty, disabling person detector")
		return &PersonDetector{Enabled: false}
	}

	log.Printf("detection: Attempting to load model: %s", modelPath)

	net := gocv.ReadNet(modelPath, configPath)
	if net.Empty() {
		log.Printf("detection: ERROR - ReadNet returned an empty network. Check file path and integrity.")
		return &PersonDetector{Enabled: false}
	}

	log.Println("detection: successfully loaded person detection model")

	// Try to use CUDA if available
	cudaBackendErr := net.SetPreferableBackend(gocv.NetBackendCUDA)
	cudaTargetErr := net.SetPreferableTarget(gocv.NetTargetCUDA)

	if cudaBackendErr == nil && cudaTargetErr == nil {
		log.Println("detection: Set backend/target to CUDA")
	} else {
		if cudaBackendErr != nil {
			log.Printf("detection: CUDA Backend not available: %v. Using default backend.", cudaBackendErr)
		}
		if cudaTargetErr != nil {
			log.Printf("detection: CUDA Target not available: %v. Using default target.", cudaTargetErr)
		}

		net.SetPreferableBackend(gocv.NetBackendDefault)
		net.SetPreferableTarget(gocv.NetTargetCPU)
		log.Println("detection: Set backend/target to CPU (Default)")
	}

	return &PersonDetector{
		Net:           net,
		Enabled:       true,
		ConfThreshold: confThreshold,
		nextID:        1,
	}
}

// Close releases the network
func (d *PersonDetector) Close() {
	if d != nil && d.Enabled {
		d.Net.Close()
		d.Enabled = false
	}
}

// Track detects people in the frame and returns them with stable track
// ids, in detection order. Registry writes downstream must follow this
// order, so the slice order is part of the contract.
func (d *PersonDetector) Track(frame gocv.Mat) []Track {
	if d == nil || !d.Enabled || frame.Empty() {
		return nil
	}

	blob := gocv.BlobFromImage(frame, 0.007843, image.Pt(300, 300), gocv.NewScalar(127.5, 127.5, 127.5, 0), false, false)
	defer blob.Close()

	d.Net.SetInput(blob, "")
	output := d.Net.Forward("")
	defer output.Close()

	detections := d.decodeDetections(output, frame.Cols(), frame.Rows())
	tracks := d.associate(detections)
	d.prev = tracks
	return tracks
}

// decodeDetections parses SSD output [1,1,N,7] rows of
// (batch, class, confidence, x1, y1, x2, y2) into person boxes.
func (d *PersonDetector) decodeDetections(output gocv.Mat, frameW, frameH int) []Track {
	flat := output.Reshape(1, output.Total()/7)
	defer flat.Close()

	var detections []Track
	for r := 0; r < flat.Rows(); r++ {
		classID := int(flat.GetFloatAt(r, 1))
		confidence := flat.GetFloatAt(r, 2)
		if classID != personClassID || confidence < d.ConfThreshold {
			continue
		}

		x1 := int(flat.GetFloatAt(r, 3) * float32(frameW))
		y1 := int(flat.GetFloatAt(r, 4) * float32(frameH))
		x2 := int(flat.GetFloatAt(r, 5) * float32(frameW))
		y2 := int(flat.GetFloatAt(r, 6) * float32(frameH))

		detections = append(detections, Track{
			X1: clampInt(x1, 0, frameW), Y1: clampInt(y1, 0, frameH),
			X2: clampInt(x2, 0, frameW), Y2: clampInt(y2, 0, frameH),
			Confidence: confidence,
			ClassID:    personClassID,
		})
	}
	return detections
}

// associate assigns track ids: each detection greedily inherits the id of
// the best-overlapping unclaimed box from the previous frame, or gets a
// fresh id.
func (d *PersonDetector) associate(detections []Track) []Track {
	claimed := make(map[int]bool, len(d.prev))

	for i := range detections {
		bestIoU := float32(iouMatchThreshold)
		bestJ := -1
		for j, prev := range d.prev {
			if claimed[j] {
				continue
			}
			if overlap := iou(detections[i], prev); overlap > bestIoU {
				bestIoU = overlap
				bestJ = j
			}
		}
		if bestJ >= 0 {
			claimed[bestJ] = true
			detections[i].TrackID = d.prev[bestJ].TrackID
		} else {
			detections[i].TrackID = d.nextID
			d.nextID++
		}
	}
	return detections
}

func iou(a, b Track) float32 {
	ix1 := maxInt(a.X1, b.X1)
	iy1 := maxInt(a.Y1, b.Y1)
	ix2 := minInt(a.X2, b.X2)
	iy2 := minInt(a.Y2, b.Y2)

	iw := ix2 - ix1
	ih := iy2 - iy1
	if iw <= 0 || ih <= 0 {
		return 0
	}
	inter := iw * ih
	union := a.Area() + b.Area() - inter
	if union <= 0 {
		return 0
	}
	return float32(inter) / float32(union)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
