package cmd

import (
	"fmt"
	"image"
	"log"
	"time"

	"github.com/spf13/cobra"
	"gocv.io/x/gocv"

	"github.com/camden-git/gatewatch/auditlog"
	"github.com/camden-git/gatewatch/media"
	"github.com/camden-git/gatewatch/services"
)

var exitSource string

var exitCmd = &cobra.Command{
	Use:   "exit",
	Short: "Run the exit camera loop",
	Long: `Watch the exit camera, mark recognized people OUT and append one
audit record per completed presence session. Press 'q' to quit. If a
single webcam is shared, close the entry process before starting this
one.`,
	Run: runExit,
}

func init() {
	rootCmd.AddCommand(exitCmd)
	exitCmd.Flags().StringVar(&exitSource, "source", "0", "Camera source (0, 1, or video file)")
}

func runExit(cmd *cobra.Command, args []string) {
	rt, err := openRuntime()
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}
	defer rt.Close()

	detector := media.NewPersonDetector(rt.Cfg.PersonDNNNetConfigPath, rt.Cfg.PersonDNNNetModelPath, rt.Cfg.DetectorConfidence)
	defer detector.Close()
	recognizer := media.NewFaceRecognitionModel(rt.Cfg.FaceModelPath, rt.Cfg.FaceModelName)
	defer recognizer.Close()

	audit := auditlog.NewLogger(rt.Cfg.AuditLogPath)
	flow := services.NewExitFlow(rt.Persons, rt.Matcher, audit,
		time.Duration(rt.Cfg.ExitLogWindowSeconds)*time.Second)

	log.Printf("Attempting to open source: %s", exitSource)
	cap, err := media.OpenSource(exitSource)
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}
	defer cap.Close()

	window := gocv.NewWindow("Exit Camera")
	defer window.Close()

	frame := gocv.NewMat()
	defer frame.Close()
	resized := gocv.NewMat()
	defer resized.Close()

	log.Println("Exit Camera Started. Press 'q' to quit.")

	for {
		if ok := cap.Read(&frame); !ok || frame.Empty() {
			break
		}
		gocv.Resize(frame, &resized, image.Pt(rt.Cfg.FrameWidth, rt.Cfg.FrameHeight), 0, 0, gocv.InterpolationLinear)

		tracks := detector.Track(resized)
		sightings := extractSightings(recognizer, resized, tracks)

		observations, err := flow.ProcessFrame(sightings)
		if err != nil {
			log.Printf("exit: skipping frame: %v", err)
			window.IMShow(resized)
			if window.WaitKey(1) == 'q' {
				break
			}
			continue
		}

		for _, obs := range observations {
			drawObservation(&resized, obs)
			if obs.ShowDuration {
				media.DrawExitDuration(&resized, fmt.Sprintf("EXIT: %.1fs", obs.Duration.Seconds()))
			}
		}

		window.IMShow(resized)
		if window.WaitKey(1) == 'q' {
			break
		}
	}
}
