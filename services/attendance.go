package services

import (
	"log"
	"time"

	"github.com/camden-git/gatewatch/auditlog"
	"github.com/camden-git/gatewatch/media"
	"github.com/camden-git/gatewatch/models"
	"github.com/camden-git/gatewatch/repository"
)

// Sighting is one tracked subject in the current frame together with its
// extracted feature vector. A nil Feature means extraction failed for
// this track; the subject proceeds as unmatched rather than erroring.
type Sighting struct {
	Track   media.Track
	Feature []float32
}

// Observation is the per-track outcome of one frame, consumed by the
// display overlay. All match state is scoped to the track it belongs to.
type Observation struct {
	Track        media.Track
	Match        MatchResult
	MarkedIn     bool
	ExitLogged   bool
	Duration     time.Duration
	ShowDuration bool
}

// AuditAppender records completed presence sessions.
type AuditAppender interface {
	Append(rec auditlog.Record) error
}

// EntryFlow applies entry-side state transitions: a matched subject who
// is OUT, or whose last arrival is older than the re-entry window, is
// marked IN. The window debounces redundant writes from a person
// lingering in frame.
type EntryFlow struct {
	persons       repository.PersonRepositoryInterface
	matcher       *Matcher
	reentryWindow time.Duration

	now func() time.Time
}

// NewEntryFlow creates the entry-side attendance flow
func NewEntryFlow(persons repository.PersonRepositoryInterface, matcher *Matcher, reentryWindow time.Duration) *EntryFlow {
	return &EntryFlow{
		persons:       persons,
		matcher:       matcher,
		reentryWindow: reentryWindow,
		now:           time.Now,
	}
}

// ProcessFrame resolves every sighting against one registry snapshot and
// applies the entry transition rule. A snapshot load failure skips the
// whole frame; a per-track write failure skips that track only. The
// camera loop must survive transient storage errors.
func (f *EntryFlow) ProcessFrame(sightings []Sighting) ([]Observation, error) {
	persons, err := f.persons.ListAllWithEmbeddings()
	if err != nil {
		return nil, err
	}

	observations := make([]Observation, 0, len(sightings))
	for _, sighting := range sightings {
		obs := Observation{Track: sighting.Track}
		obs.Match = f.matcher.Match(sighting.Feature, persons)

		if obs.Match.Matched {
			now := f.now()
			matched := findPerson(persons, obs.Match.PersonID)
			if matched != nil && (matched.Status == models.StatusOut || now.Unix()-matched.EntryTime > int64(f.reentryWindow.Seconds())) {
				if err := f.persons.SetStatus(matched.ID, models.StatusIn); err != nil {
					log.Printf("entry: failed to mark person %d IN: %v", matched.ID, err)
				} else {
					log.Printf("entry: welcome back, %s! Marked IN.", matched.Name)
					obs.MarkedIn = true
					// update the snapshot copy so later tracks in this
					// frame do not trigger an immediate re-write
					matched.Status = models.StatusIn
					matched.EntryTime = now.Unix()
				}
			}
		}

		observations = append(observations, obs)
	}
	return observations, nil
}

// ExitFlow applies exit-side transitions: a matched subject is marked OUT
// and a session audit record is appended, at most once per person within
// the exit log window. The debounce map is process-local and resets on
// restart; its only purpose is write suppression while a person walks
// through the frame.
type ExitFlow struct {
	persons       repository.PersonRepositoryInterface
	matcher       *Matcher
	audit         AuditAppender
	exitLogWindow time.Duration

	// recentExits maps person id to the time their exit was last logged
	recentExits map[uint]time.Time

	now func() time.Time
}

// NewExitFlow creates the exit-side attendance flow
func NewExitFlow(persons repository.PersonRepositoryInterface, matcher *Matcher, audit AuditAppender, exitLogWindow time.Duration) *ExitFlow {
	return &ExitFlow{
		persons:       persons,
		matcher:       matcher,
		audit:         audit,
		exitLogWindow: exitLogWindow,
		recentExits:   make(map[uint]time.Time),
		now:           time.Now,
	}
}

// ProcessFrame resolves every sighting against the full registry snapshot
// (not status-filtered: a person must be identifiable on the way out even
// if a missed entry scan left them marked OUT) and applies the exit rule.
func (f *ExitFlow) ProcessFrame(sightings []Sighting) ([]Observation, error) {
	persons, err := f.persons.ListAllWithEmbeddings()
	if err != nil {
		return nil, err
	}

	observations := make([]Observation, 0, len(sightings))
	for _, sighting := range sightings {
		obs := Observation{Track: sighting.Track}
		obs.Match = f.matcher.Match(sighting.Feature, persons)

		if obs.Match.Matched {
			now := f.now()
			matched := findPerson(persons, obs.Match.PersonID)

			var duration time.Duration
			if matched != nil && matched.EntryTime > 0 {
				duration = now.Sub(time.Unix(matched.EntryTime, 0))
			}
			obs.Duration = duration

			lastLogged, seen := f.recentExits[obs.Match.PersonID]
			if !seen || now.Sub(lastLogged) > f.exitLogWindow {
				if err := f.logExit(obs.Match, duration, now); err != nil {
					log.Printf("exit: failed to log exit for person %d: %v", obs.Match.PersonID, err)
				} else {
					f.recentExits[obs.Match.PersonID] = now
					obs.ExitLogged = true
				}
			}

			// keep the duration on screen briefly after logging
			if last, ok := f.recentExits[obs.Match.PersonID]; ok && now.Sub(last) < 5*time.Second {
				obs.ShowDuration = true
			}
		}

		observations = append(observations, obs)
	}
	return observations, nil
}

func (f *ExitFlow) logExit(match MatchResult, duration time.Duration, now time.Time) error {
	log.Printf("exit: EXIT DETECTED: %s (ID: %d), duration %s", match.Name, match.PersonID, auditlog.FormatDuration(duration))

	if err := f.persons.SetStatus(match.PersonID, models.StatusOut); err != nil {
		return err
	}
	return f.audit.Append(auditlog.Record{
		PersonID: match.PersonID,
		Name:     match.Name,
		ExitTime: now,
		Duration: duration,
	})
}

func findPerson(persons []models.Person, id uint) *models.Person {
	for i := range persons {
		if persons[i].ID == id {
			return &persons[i]
		}
	}
	return nil
}
