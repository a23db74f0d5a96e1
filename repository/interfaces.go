package repository

import (
	"github.com/camden-git/gatewatch/models"
)

// PersonRepositoryInterface defines the methods for person data operations
type PersonRepositoryInterface interface {
	// Create registers a new person with status IN, entry time now and the
	// supplied embedding, if any. Names are unique case-insensitively; on a
	// collision the existing person is returned and no embedding is inserted.
	Create(name string, feature []float32) (*models.Person, error)
	GetByID(id uint) (*models.Person, error)
	GetByName(name string) (*models.Person, error)
	// ListAllWithEmbeddings returns a read-mostly snapshot of every person
	// with all embeddings materialized, in registration (id) order. Callers
	// must not assume it reflects writes made after the call returns.
	ListAllWithEmbeddings() ([]models.Person, error)
	// SetStatus performs a single atomic row update. Setting IN refreshes
	// the entry time in the same statement; setting OUT leaves it untouched.
	SetStatus(id uint, status int) error
	Delete(id uint) error
	DeleteAll() error
}

// EmbeddingRepositoryInterface defines the methods for embedding data operations
type EmbeddingRepositoryInterface interface {
	// Create appends an embedding for an existing person. It never
	// deduplicates. Appending to an unknown person id is an error.
	Create(personID uint, feature []float32) error
	ListByPersonID(personID uint) ([]models.Embedding, error)
}
