package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/camden-git/gatewatch/models"
	"gorm.io/gorm"
)

// PersonRepository handles database operations for Person entities
type PersonRepository struct {
	DB *gorm.DB
}

// Ensure PersonRepository implements PersonRepositoryInterface
var _ PersonRepositoryInterface = (*PersonRepository)(nil)

// NewPersonRepository creates a new instance of PersonRepository
func NewPersonRepository(db *gorm.DB) *PersonRepository {
	return &PersonRepository{DB: db}
}

// Create registers a new person. The first sighting of a genuinely new
// person is itself an arrival, so the row starts with status IN and entry
// time now. If the name already exists (case-insensitive) the existing
// person is returned unchanged and the feature is discarded; callers that
// want to merge evidence into an existing person use the embedding
// repository instead.
func (r *PersonRepository) Create(name string, feature []float32) (*models.Person, error) {
	existing, err := r.GetByName(name)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now().Unix()
	person := models.Person{
		Name:      name,
		Status:    models.StatusIn,
		EntryTime: now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if len(feature) > 0 {
		emb := models.Embedding{CreatedAt: now}
		emb.SetVector(feature)
		person.Embeddings = []models.Embedding{emb}
	}

	// GORM inserts the person and its embedding in one transaction, so a
	// concurrent reader never sees the name without the vector
	if err := r.DB.Create(&person).Error; err != nil {
		// lost a create race against the other camera process; fall back
		// to the row that won
		existing, lookupErr := r.GetByName(name)
		if lookupErr == nil {
			return existing, nil
		}
		return nil, fmt.Errorf("failed to create person %s: %w", name, err)
	}
	return &person, nil
}

// GetByID retrieves a person by their ID, preloading Embeddings
func (r *PersonRepository) GetByID(id uint) (*models.Person, error) {
	var person models.Person
	err := r.DB.Preload("Embeddings").First(&person, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get person by ID %d: %w", id, err)
	}
	return &person, nil
}

// GetByName retrieves a person by name. The name column collates NOCASE,
// so the lookup is case-insensitive.
func (r *PersonRepository) GetByName(name string) (*models.Person, error) {
	var person models.Person
	err := r.DB.Preload("Embeddings").Where("name = ?", name).First(&person).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get person by name %s: %w", name, err)
	}
	return &person, nil
}

// ListAllWithEmbeddings retrieves all persons with their embeddings
// preloaded, in registration order. The fixed ordering makes matcher
// tie-breaking deterministic.
func (r *PersonRepository) ListAllWithEmbeddings() ([]models.Person, error) {
	var persons []models.Person
	err := r.DB.Preload("Embeddings").Order("id ASC").Find(&persons).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list persons: %w", err)
	}
	return persons, nil
}

// SetStatus updates a person's presence status. Marking IN refreshes the
// entry time in the same UPDATE statement so a concurrent reader never
// observes a half-applied status/time pair. Marking OUT preserves the
// entry time; it records the most recent arrival for duration computation.
func (r *PersonRepository) SetStatus(id uint, status int) error {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now().Unix(),
	}
	if status == models.StatusIn {
		updates["entry_time"] = time.Now().Unix()
	}

	result := r.DB.Model(&models.Person{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to set status %d for person ID %d: %w", status, id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a person by their ID, cascading to their embeddings
func (r *PersonRepository) Delete(id uint) error {
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("person_id = ?", id).Delete(&models.Embedding{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Person{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete person ID %d: %w", id, err)
	}
	return nil
}

// DeleteAll removes every person and embedding (administrative cleanup)
func (r *PersonRepository) DeleteAll() error {
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.Embedding{}).Error; err != nil {
			return err
		}
		return tx.Where("1 = 1").Delete(&models.Person{}).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete all persons: %w", err)
	}
	return nil
}
