package services

import (
	"math"

	"github.com/camden-git/gatewatch/models"
)

// MatchResult is the outcome of scoring one query feature against a
// registry snapshot.
type MatchResult struct {
	PersonID   uint    `json:"person_id"`
	Name       string  `json:"name"`
	Similarity float32 `json:"similarity"`
	Matched    bool    `json:"matched"`
}

// Matcher scores query embeddings against registry snapshots.
type Matcher struct {
	// Threshold is the classification boundary. The comparison is strict:
	// a similarity exactly equal to Threshold classifies as unknown.
	Threshold float32
}

// NewMatcher creates a matcher with the given classification threshold
func NewMatcher(threshold float32) *Matcher {
	return &Matcher{Threshold: threshold}
}

// Match finds the best-matching person for a query feature. It takes the
// maximum cosine similarity over every (person, embedding) pair, so a
// person with many stored embeddings has more chances of a strong match.
// Persons are scanned in snapshot order and only a strictly greater
// similarity replaces the current best, so the first person achieving the
// maximum wins ties; given a fixed snapshot order the result is
// deterministic. A nil feature (extraction failed) yields a zero result
// with no scoring attempted.
func (m *Matcher) Match(feature []float32, persons []models.Person) MatchResult {
	result := MatchResult{}
	if feature == nil {
		return result
	}

	for i := range persons {
		person := &persons[i]
		for j := range person.Embeddings {
			sim := CosineSimilarity(feature, person.Embeddings[j].GetVector())
			if sim > result.Similarity {
				result.Similarity = sim
				result.PersonID = person.ID
				result.Name = person.Name
			}
		}
	}

	result.Matched = result.PersonID != 0 && result.Similarity > m.Threshold
	return result
}

// BestSimilarity returns the maximum similarity of a feature against
// every stored embedding of every person, flattened, with no per-person
// bookkeeping. Registration uses it to discard already-known subjects.
func (m *Matcher) BestSimilarity(feature []float32, persons []models.Person) float32 {
	var best float32
	if feature == nil {
		return best
	}
	for i := range persons {
		for j := range persons[i].Embeddings {
			sim := CosineSimilarity(feature, persons[i].Embeddings[j].GetVector())
			if sim > best {
				best = sim
			}
		}
	}
	return best
}

// CosineSimilarity calculates cosine similarity between two embeddings
func CosineSimilarity(embedding1, embedding2 []float32) float32 {
	if len(embedding1) != len(embedding2) || len(embedding1) == 0 {
		return 0.0
	}

	var dotProduct float32
	var norm1 float32
	var norm2 float32

	for i := 0; i < len(embedding1); i++ {
		dotProduct += embedding1[i] * embedding2[i]
		norm1 += embedding1[i] * embedding1[i]
		norm2 += embedding2[i] * embedding2[i]
	}

	if norm1 == 0 || norm2 == 0 {
		return 0.0
	}

	norm1Sqrt := float32(math.Sqrt(float64(norm1)))
	norm2Sqrt := float32(math.Sqrt(float64(norm2)))

	return dotProduct / (norm1Sqrt * norm2Sqrt)
}
