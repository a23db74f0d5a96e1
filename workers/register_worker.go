package workers

import (
	"log"
	"sync"

	"github.com/camden-git/gatewatch/config"
	"github.com/camden-git/gatewatch/media"
	"github.com/camden-git/gatewatch/repository"
)

// RegistrationJob is one registration photo to turn into an embedding for
// an already-created person.
type RegistrationJob struct {
	PersonID   uint
	PersonName string
	ImagePath  string
}

// RegistrationProcessor fans registration photos out to a worker pool.
// Each worker loads its own DNN resources; embeddings append in any order
// across workers, which is safe because appends never conflict (the
// registry only grows during bulk registration).
type RegistrationProcessor struct {
	JobQueue   chan RegistrationJob
	Config     config.Config
	Embeddings repository.EmbeddingRepositoryInterface
	Wg         sync.WaitGroup

	Mutex     sync.Mutex
	Succeeded map[uint]int
	Failed    map[uint]int
}

// NewRegistrationProcessor starts the pool with numWorkers workers
func NewRegistrationProcessor(cfg config.Config, embeddings repository.EmbeddingRepositoryInterface, queueSize, numWorkers int) *RegistrationProcessor {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	if queueSize <= 0 {
		queueSize = 100
	}
	proc := &RegistrationProcessor{
		JobQueue:   make(chan RegistrationJob, queueSize),
		Config:     cfg,
		Embeddings: embeddings,
		Succeeded:  make(map[uint]int),
		Failed:     make(map[uint]int),
	}
	proc.Wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go proc.worker(i, cfg)
	}
	log.Printf("Started %d registration worker(s) with queue size %d", numWorkers, queueSize)
	return proc
}

// worker loads resources and processes jobs from the queue
func (rp *RegistrationProcessor) worker(id int, cfg config.Config) {
	defer rp.Wg.Done()

	log.Printf("Worker %d: Loading DNN models...", id)
	detector := media.NewPersonDetector(cfg.PersonDNNNetConfigPath, cfg.PersonDNNNetModelPath, cfg.DetectorConfidence)
	recognizer := media.NewFaceRecognitionModel(cfg.FaceModelPath, cfg.FaceModelName)
	defer func() {
		detector.Close()
		recognizer.Close()
		log.Printf("Worker %d: DNN models closed", id)
	}()

	for job := range rp.JobQueue {
		rp.processJob(id, detector, recognizer, job)
	}
	log.Printf("Registration worker %d stopping: job queue closed", id)
}

func (rp *RegistrationProcessor) processJob(id int, detector *media.PersonDetector, recognizer *media.FaceRecognitionModel, job RegistrationJob) {
	frame, err := media.LoadOrientedImage(job.ImagePath)
	if err != nil {
		log.Printf("Worker %d: skipping %s (could not read): %v", id, job.ImagePath, err)
		rp.recordFailure(job.PersonID)
		return
	}
	defer frame.Close()

	// use the largest detected person; registration photos with no
	// detection (tight face crops) fall back to the whole frame
	tracks := detector.Track(frame)
	target := media.Track{X1: 0, Y1: 0, X2: frame.Cols(), Y2: frame.Rows()}
	if len(tracks) > 0 {
		target = largestTrack(tracks)
	}

	feature := recognizer.ExtractFeature(frame, target)
	if feature == nil {
		log.Printf("Worker %d: failed to extract embedding from %s", id, job.ImagePath)
		rp.recordFailure(job.PersonID)
		return
	}

	if err := rp.Embeddings.Create(job.PersonID, feature); err != nil {
		log.Printf("Worker %d: failed to store embedding for %s from %s: %v", id, job.PersonName, job.ImagePath, err)
		rp.recordFailure(job.PersonID)
		return
	}

	if taken, ok := media.PhotoTakenAt(job.ImagePath); ok {
		log.Printf("Worker %d: added embedding for %s from %s (taken %s)", id, job.PersonName, job.ImagePath, taken.Format("2006-01-02"))
	} else {
		log.Printf("Worker %d: added embedding for %s from %s", id, job.PersonName, job.ImagePath)
	}
	rp.recordSuccess(job.PersonID)
}

func (rp *RegistrationProcessor) recordSuccess(personID uint) {
	rp.Mutex.Lock()
	rp.Succeeded[personID]++
	rp.Mutex.Unlock()
}

func (rp *RegistrationProcessor) recordFailure(personID uint) {
	rp.Mutex.Lock()
	rp.Failed[personID]++
	rp.Mutex.Unlock()
}

// Enqueue submits a job, blocking when the queue is full
func (rp *RegistrationProcessor) Enqueue(job RegistrationJob) {
	rp.JobQueue <- job
}

// Shutdown closes the queue and waits for in-flight jobs to finish
func (rp *RegistrationProcessor) Shutdown() {
	close(rp.JobQueue)
	rp.Wg.Wait()
}

func largestTrack(tracks []media.Track) media.Track {
	best := tracks[0]
	for _, t := range tracks[1:] {
		if t.Area() > best.Area() {
			best = t
		}
	}
	return best
}
