package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/camden-git/gatewatch/models"
	"gorm.io/gorm"
)

// EmbeddingRepository handles database operations for Embedding entities
type EmbeddingRepository struct {
	DB *gorm.DB
}

// Ensure EmbeddingRepository implements EmbeddingRepositoryInterface
var _ EmbeddingRepositoryInterface = (*EmbeddingRepository)(nil)

// NewEmbeddingRepository creates a new instance of EmbeddingRepository
func NewEmbeddingRepository(db *gorm.DB) *EmbeddingRepository {
	return &EmbeddingRepository{DB: db}
}

// Create appends an embedding for an existing person. Embeddings are
// never deduplicated; each row is one more captured appearance and a
// candidate during matching. Appending to an unknown person id signals
// caller misuse and fails with gorm.ErrRecordNotFound.
func (r *EmbeddingRepository) Create(personID uint, feature []float32) error {
	if len(feature) == 0 {
		return fmt.Errorf("refusing to store empty embedding for person ID %d", personID)
	}

	var count int64
	if err := r.DB.Model(&models.Person{}).Where("id = ?", personID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to verify person ID %d before embedding insert: %w", personID, err)
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}

	embedding := models.Embedding{
		PersonID:  personID,
		CreatedAt: time.Now().Unix(),
	}
	embedding.SetVector(feature)

	if err := r.DB.Create(&embedding).Error; err != nil {
		return fmt.Errorf("failed to create embedding for person ID %d: %w", personID, err)
	}
	return nil
}

// ListByPersonID retrieves all embeddings for a given person in insertion order
func (r *EmbeddingRepository) ListByPersonID(personID uint) ([]models.Embedding, error) {
	var embeddings []models.Embedding
	err := r.DB.Where("person_id = ?", personID).Order("id ASC").Find(&embeddings).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to list embeddings for person ID %d: %w", personID, err)
	}
	return embeddings, nil
}
