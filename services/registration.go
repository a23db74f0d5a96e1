package services

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/camden-git/gatewatch/models"
	"github.com/camden-git/gatewatch/repository"
)

// RegistrationService binds captured embeddings to new or existing
// persons. It is operator-driven and runs outside the per-frame loops.
type RegistrationService struct {
	persons    repository.PersonRepositoryInterface
	embeddings repository.EmbeddingRepositoryInterface
	matcher    *Matcher
}

// NewRegistrationService creates a new registration service
func NewRegistrationService(
	persons repository.PersonRepositoryInterface,
	embeddings repository.EmbeddingRepositoryInterface,
	matcher *Matcher,
) *RegistrationService {
	return &RegistrationService{
		persons:    persons,
		embeddings: embeddings,
		matcher:    matcher,
	}
}

// SelectCandidate picks the registration target from the current frame's
// sightings: subjects without a feature are ineligible outright, subjects
// whose best similarity against any stored embedding reaches the
// threshold are already known, and of the remaining strangers the one
// with the largest bounding box (presumably the closest, intended
// subject) wins. Returns nil when no stranger is present.
func (s *RegistrationService) SelectCandidate(sightings []Sighting, persons []models.Person) *Sighting {
	var candidates []Sighting
	for _, sighting := range sightings {
		if sighting.Feature == nil {
			continue
		}
		if s.matcher.BestSimilarity(sighting.Feature, persons) >= s.matcher.Threshold {
			continue
		}
		candidates = append(candidates, sighting)
	}

	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Track.Area() > candidates[j].Track.Area()
	})

	target := candidates[0]
	return &target
}

// Register binds a feature to the named person. An empty name aborts with
// no mutation. A name that matches an existing person (case-insensitive)
// is a merge: the feature is appended as new evidence and the person's
// status is untouched. Otherwise a new person is created, arriving IN.
// The returned bool reports whether the registration was a merge.
func (s *RegistrationService) Register(name string, feature []float32) (*models.Person, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false, fmt.Errorf("registration cancelled: empty name")
	}
	if len(feature) == 0 {
		return nil, false, fmt.Errorf("registration requires an extracted feature")
	}

	existing, err := s.persons.GetByName(name)
	if err == nil {
		if err := s.embeddings.Create(existing.ID, feature); err != nil {
			return nil, false, fmt.Errorf("failed to add embedding for existing person %s: %w", name, err)
		}
		log.Printf("registration: added new embedding for existing person %s (ID: %d)", existing.Name, existing.ID)
		return existing, true, nil
	}

	person, err := s.persons.Create(name, feature)
	if err != nil {
		return nil, false, fmt.Errorf("failed to register %s: %w", name, err)
	}
	log.Printf("registration: registered %s (ID: %d)", person.Name, person.ID)
	return person, false, nil
}
