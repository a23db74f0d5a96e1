package cmd

import (
	"bufio"
	"fmt"
	"image"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gocv.io/x/gocv"

	"github.com/camden-git/gatewatch/media"
	"github.com/camden-git/gatewatch/services"
)

var entrySource string

var entryCmd = &cobra.Command{
	Use:   "entry",
	Short: "Run the entry camera loop",
	Long: `Watch the entry camera, mark recognized people IN and surface
strangers for registration. Press 'r' to register the most prominent
stranger in frame, 'q' to quit.`,
	Run: runEntry,
}

func init() {
	rootCmd.AddCommand(entryCmd)
	entryCmd.Flags().StringVar(&entrySource, "source", "0", "Camera source (0, 1, or video file)")
}

func runEntry(cmd *cobra.Command, args []string) {
	rt, err := openRuntime()
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}
	defer rt.Close()

	detector := media.NewPersonDetector(rt.Cfg.PersonDNNNetConfigPath, rt.Cfg.PersonDNNNetModelPath, rt.Cfg.DetectorConfidence)
	defer detector.Close()
	recognizer := media.NewFaceRecognitionModel(rt.Cfg.FaceModelPath, rt.Cfg.FaceModelName)
	defer recognizer.Close()

	flow := services.NewEntryFlow(rt.Persons, rt.Matcher,
		time.Duration(rt.Cfg.ReentryWindowSeconds)*time.Second)
	registration := services.NewRegistrationService(rt.Persons, rt.Embeddings, rt.Matcher)

	cap, err := media.OpenSource(entrySource)
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}
	defer cap.Close()

	window := gocv.NewWindow("Entry Camera")
	defer window.Close()

	frame := gocv.NewMat()
	defer frame.Close()
	resized := gocv.NewMat()
	defer resized.Close()

	log.Println("Entry Camera Started. Press 'q' to quit. Press 'r' to register strangers.")

	for {
		if ok := cap.Read(&frame); !ok || frame.Empty() {
			break
		}
		gocv.Resize(frame, &resized, image.Pt(rt.Cfg.FrameWidth, rt.Cfg.FrameHeight), 0, 0, gocv.InterpolationLinear)

		tracks := detector.Track(resized)
		sightings := extractSightings(recognizer, resized, tracks)

		observations, err := flow.ProcessFrame(sightings)
		if err != nil {
			// a storage blip must not kill the camera loop
			log.Printf("entry: skipping frame: %v", err)
			window.IMShow(resized)
			if window.WaitKey(1) == 'q' {
				break
			}
			continue
		}

		for _, obs := range observations {
			drawObservation(&resized, obs)
			if !obs.Match.Matched {
				media.DrawRegisterHint(&resized, obs.Track)
			}
		}

		window.IMShow(resized)
		key := window.WaitKey(1)
		if key == 'q' {
			break
		}
		if key == 'r' {
			registerFromFrame(rt, registration, window, &resized, sightings)
		}
	}
}

// extractSightings runs feature extraction per track, preserving tracker
// order so registry writes stay deterministic within a frame.
func extractSightings(recognizer *media.FaceRecognitionModel, frame gocv.Mat, tracks []media.Track) []services.Sighting {
	sightings := make([]services.Sighting, 0, len(tracks))
	for _, track := range tracks {
		sightings = append(sightings, services.Sighting{
			Track:   track,
			Feature: recognizer.ExtractFeature(frame, track),
		})
	}
	return sightings
}

func drawObservation(frame *gocv.Mat, obs services.Observation) {
	label := fmt.Sprintf("Stranger (%.2f)", obs.Match.Similarity)
	if obs.Match.Matched {
		label = fmt.Sprintf("%s (%.2f)", obs.Match.Name, obs.Match.Similarity)
	}
	media.DrawTrack(frame, obs.Track, label, obs.Match.Matched)
}

// registerFromFrame pauses the display and binds the largest stranger in
// frame to an operator-supplied name.
func registerFromFrame(rt *runtime, registration *services.RegistrationService, window *gocv.Window, frame *gocv.Mat, sightings []services.Sighting) {
	persons, err := rt.Persons.ListAllWithEmbeddings()
	if err != nil {
		log.Printf("registration: failed to load registry: %v", err)
		return
	}

	candidate := registration.SelectCandidate(sightings, persons)
	if candidate == nil {
		log.Println("registration: no stranger detected to register (or they are already known)")
		return
	}

	media.DrawBanner(frame, "PAUSED FOR REGISTRATION")
	window.IMShow(*frame)
	window.WaitKey(1)

	fmt.Println("\n--- NEW REGISTRATION ---")
	fmt.Print("Enter Person Name: ")
	reader := bufio.NewReader(os.Stdin)
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)

	if name == "" {
		log.Println("registration: cancelled")
		return
	}

	person, merged, err := registration.Register(name, candidate.Feature)
	if err != nil {
		log.Printf("registration: %v", err)
		return
	}

	if path, err := media.SaveSnapshot(*frame, candidate.Track, rt.Cfg.SnapshotsPath); err != nil {
		log.Printf("registration: failed to save snapshot: %v", err)
	} else {
		log.Printf("registration: saved snapshot %s", path)
	}

	if merged {
		fmt.Printf("Added new embedding for existing person %s (ID: %d).\n", person.Name, person.ID)
	} else {
		fmt.Printf("Registered %s (ID: %d).\n", person.Name, person.ID)
	}
}
