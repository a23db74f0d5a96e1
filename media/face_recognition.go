package media

import (
	"image"
	"log"
	"math"
	"os"

	"gocv.io/x/gocv"
)

// FaceRecognitionModel provides face embedding extraction for recognition
type FaceRecognitionModel struct {
	Net       gocv.Net
	Enabled   bool
	ModelName string

	// Configuration parameters
	InputSizeW  int
	InputSizeH  int
	ScaleFactor float64
	MeanVal     gocv.Scalar
}

// NewFaceRecognitionModel loads a face recognition model (ArcFace, FaceNet, etc.)
func NewFaceRecognitionModel(modelPath string, modelName string) *FaceRecognitionModel {
	if modelPath == "" {
		log.Println("recognition: model path is empty, disabling face recognition")
		return &FaceRecognitionModel{Enabled: false}
	}

	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		log.Printf("recognition: ERROR - Model file does not exist: %s", modelPath)
		return &FaceRecognitionModel{Enabled: false}
	}

	net := gocv.ReadNet(modelPath, "")
	if net.Empty() {
		log.Printf("recognition: ERROR - ReadNet returned an empty network for %s. Check file path and integrity.", modelName)
		return &FaceRecognitionModel{Enabled: false}
	}

	log.Printf("recognition: successfully loaded %s model", modelName)

	// Try to use CUDA if available
	cudaBackendErr := net.SetPreferableBackend(gocv.NetBackendCUDA)
	cudaTargetErr := net.SetPreferableTarget(gocv.NetTargetCUDA)

	if cudaBackendErr == nil && cudaTargetErr == nil {
		log.Printf("recognition: Set backend/target to CUDA for %s", modelName)
	} else {
		net.SetPreferableBackend(gocv.NetBackendDefault)
		net.SetPreferableTarget(gocv.NetTargetCPU)
		log.Printf("recognition: Set backend/target to CPU (Default) for %s", modelName)
	}

	var inputSizeW, inputSizeH int
	switch modelName {
	case "arcface":
		inputSizeW, inputSizeH = 112, 112
	case "facenet":
		inputSizeW, inputSizeH = 160, 160
	default:
		inputSizeW, inputSizeH = 112, 112
	}

	return &FaceRecognitionModel{
		Net:         net,
		Enabled:     true,
		ModelName:   modelName,
		InputSizeW:  inputSizeW,
		InputSizeH:  inputSizeH,
		ScaleFactor: 1.0 / 255.0,
		MeanVal:     gocv.NewScalar(0, 0, 0, 0),
	}
}

// Close releases the network
func (f *FaceRecognitionModel) Close() {
	if f != nil && f.Enabled {
		f.Net.Close()
		log.Printf("recognition: closed %s network", f.ModelName)
		f.Enabled = false
	}
}

// ExtractFeature extracts a normalized face embedding from the track's
// region of the frame. It returns nil when the region is degenerate, no
// usable face crop is produced, or the model is disabled. It never
// reports an error to the caller: a failed extraction degrades to "no
// match" for that track.
func (f *FaceRecognitionModel) ExtractFeature(frame gocv.Mat, track Track) []float32 {
	if f == nil || !f.Enabled || frame.Empty() {
		return nil
	}

	x1 := clampInt(track.X1, 0, frame.Cols())
	y1 := clampInt(track.Y1, 0, frame.Rows())
	x2 := clampInt(track.X2, 0, frame.Cols())
	y2 := clampInt(track.Y2, 0, frame.Rows())
	if x1 >= x2 || y1 >= y2 {
		return nil
	}

	crop := frame.Region(image.Rect(x1, y1, x2, y2))
	defer crop.Close()

	processed := f.preprocessFace(crop)
	if processed.Empty() {
		return nil
	}
	defer processed.Close()

	blob := gocv.BlobFromImage(processed, f.ScaleFactor, image.Pt(f.InputSizeW, f.InputSizeH), f.MeanVal, false, false)
	defer blob.Close()

	f.Net.SetInput(blob, "")
	output := f.Net.Forward("")
	defer output.Close()

	embedding := f.extractEmbeddingVector(output)
	if len(embedding) == 0 {
		return nil
	}

	return f.normalizeEmbedding(embedding)
}

// preprocessFace prepares a region for embedding extraction
func (f *FaceRecognitionModel) preprocessFace(region gocv.Mat) gocv.Mat {
	if region.Empty() {
		return gocv.Mat{}
	}

	// the model expects RGB input
	var processed gocv.Mat
	if region.Channels() == 3 {
		processed = gocv.NewMat()
		gocv.CvtColor(region, &processed, gocv.ColorBGRToRGB)
	} else {
		processed = region.Clone()
	}

	resized := gocv.NewMat()
	gocv.Resize(processed, &resized, image.Pt(f.InputSizeW, f.InputSizeH), 0, 0, gocv.InterpolationLinear)
	processed.Close()

	converted := gocv.NewMat()
	resized.ConvertTo(&converted, gocv.MatTypeCV32F)
	resized.Close()

	return converted
}

// extractEmbeddingVector flattens the model output into a vector
func (f *FaceRecognitionModel) extractEmbeddingVector(output gocv.Mat) []float32 {
	sizes := output.Size()
	if len(sizes) == 0 {
		return nil
	}

	flattened := output.Reshape(1, 1)
	defer flattened.Close()

	embeddingSize := flattened.Cols()
	embedding := make([]float32, embeddingSize)
	for i := 0; i < embeddingSize; i++ {
		embedding[i] = flattened.GetFloatAt(0, i)
	}
	return embedding
}

// normalizeEmbedding normalizes the embedding vector to unit length
func (f *FaceRecognitionModel) normalizeEmbedding(embedding []float32) []float32 {
	var norm float32
	for _, val := range embedding {
		norm += val * val
	}
	norm = float32(math.Sqrt(float64(norm)))
	if norm == 0 {
		return nil
	}

	normalized := make([]float32, len(embedding))
	for i, val := range embedding {
		normalized[i] = val / norm
	}
	return normalized
}
