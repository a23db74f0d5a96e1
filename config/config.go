package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
)

const (
	defaultDatabasePath  = "attendance.db"
	defaultAuditLogPath  = "productivity_log.csv"
	defaultSnapshotsPath = "registration_snapshots"
)

const (
	defaultMatchThreshold  = 0.65
	defaultReentrySeconds  = 60
	defaultExitLogSeconds  = 10
	defaultRegisterWorkers = 4
	defaultFrameWidth      = 640
	defaultFrameHeight     = 480
	defaultDetectorConf    = 0.5
)

type Config struct {
	// database path (shared by the entry and exit processes)
	DatabasePath string

	// session audit log (append-only, written by the exit process)
	AuditLogPath string

	// where registration snapshot crops are written
	SnapshotsPath string

	// recognition settings
	MatchThreshold float32

	// debounce windows, in seconds
	ReentryWindowSeconds int
	ExitLogWindowSeconds int

	// person detection model paths (DNN)
	PersonDNNNetConfigPath string
	PersonDNNNetModelPath  string
	DetectorConfidence     float32

	// face embedding model
	FaceModelPath string
	FaceModelName string

	// frame size fed to the detector
	FrameWidth  int
	FrameHeight int

	// bulk registration worker settings
	RegisterWorkers int
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(envVar string, defaultVal int) int {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val <= 0 {
		log.Printf("Warning: Invalid %s '%s'. Using default %d. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func getEnvFloatOrDefault(envVar string, defaultVal float32) float32 {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.ParseFloat(valStr, 32)
	if err != nil || val <= 0 {
		log.Printf("Warning: Invalid %s '%s'. Using default %.2f. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return float32(val)
}

func LoadConfig() (Config, error) {
	dbPath := getEnvOrDefault("DATABASE_PATH", defaultDatabasePath)

	auditPath := getEnvOrDefault("AUDIT_LOG_PATH", defaultAuditLogPath)
	absAuditPath, err := filepath.Abs(auditPath)
	if err != nil {
		return Config{}, fmt.Errorf("failed to get absolute path for audit log '%s': %w", auditPath, err)
	}

	snapshots := getEnvOrDefault("SNAPSHOTS_PATH", defaultSnapshotsPath)
	absSnapshots, err := filepath.Abs(snapshots)
	if err != nil {
		return Config{}, fmt.Errorf("failed to get absolute path for snapshots '%s': %w", snapshots, err)
	}

	cfg := Config{
		DatabasePath:  dbPath,
		AuditLogPath:  absAuditPath,
		SnapshotsPath: absSnapshots,

		MatchThreshold: getEnvFloatOrDefault("MATCH_THRESHOLD", defaultMatchThreshold),

		ReentryWindowSeconds: getEnvIntOrDefault("REENTRY_WINDOW_SECONDS", defaultReentrySeconds),
		ExitLogWindowSeconds: getEnvIntOrDefault("EXIT_LOG_WINDOW_SECONDS", defaultExitLogSeconds),

		PersonDNNNetConfigPath: getEnvOrDefault("PERSON_DNN_CONFIG_PATH", "./models/mobilenet_ssd.prototxt"),
		PersonDNNNetModelPath:  getEnvOrDefault("PERSON_DNN_MODEL_PATH", "./models/mobilenet_ssd.caffemodel"),
		DetectorConfidence:     getEnvFloatOrDefault("DETECTOR_CONFIDENCE", defaultDetectorConf),

		FaceModelPath: getEnvOrDefault("FACE_MODEL_PATH", "./models/facenet.onnx"),
		FaceModelName: getEnvOrDefault("FACE_MODEL_NAME", "facenet"),

		FrameWidth:  getEnvIntOrDefault("FRAME_WIDTH", defaultFrameWidth),
		FrameHeight: getEnvIntOrDefault("FRAME_HEIGHT", defaultFrameHeight),

		RegisterWorkers: getEnvIntOrDefault("REGISTER_WORKERS", defaultRegisterWorkers),
	}

	return cfg, nil
}
