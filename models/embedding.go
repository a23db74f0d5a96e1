package models

import (
	"math"
)

// Embedding represents one stored face embedding vector for a person.
// It corresponds to the 'embeddings' table. A person accumulates one row
// per registration image or operator-confirmed sighting; all rows are
// candidates during matching.
type Embedding struct {
	ID            uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	PersonID      uint   `gorm:"index;not null" json:"person_id"`
	EmbeddingData []byte `gorm:"not null;column:embedding_data" json:"embedding_data"` // L2-normalized vector as BLOB
	CreatedAt     int64  `gorm:"not null" json:"created_at"`

	Person *Person `gorm:"foreignKey:PersonID" json:"person,omitempty"` // Belongs to Person
}

// TableName explicitly sets the table name for GORM.
func (Embedding) TableName() string {
	return "embeddings"
}

// GetVector converts the BLOB data to []float32
func (e *Embedding) GetVector() []float32 {
	if len(e.EmbeddingData) == 0 {
		return nil
	}

	vector := make([]float32, len(e.EmbeddingData)/4) // 4 bytes per float32
	for i := 0; i < len(vector); i++ {
		offset := i * 4
		bits := uint32(e.EmbeddingData[offset]) |
			uint32(e.EmbeddingData[offset+1])<<8 |
			uint32(e.EmbeddingData[offset+2])<<16 |
			uint32(e.EmbeddingData[offset+3])<<24
		vector[i] = math.Float32frombits(bits)
	}
	return vector
}

// SetVector converts []float32 to BLOB data
func (e *Embedding) SetVector(vector []float32) {
	if len(vector) == 0 {
		e.EmbeddingData = nil
		return
	}

	e.EmbeddingData = make([]byte, len(vector)*4) // 4 bytes per float32
	for i, val := range vector {
		offset := i * 4
		bits := math.Float32bits(val)
		e.EmbeddingData[offset] = byte(bits)
		e.EmbeddingData[offset+1] = byte(bits >> 8)
		e.EmbeddingData[offset+2] = byte(bits >> 16)
		e.EmbeddingData[offset+3] = byte(bits >> 24)
	}
}
