package models

// Presence status values stored in the persons table.
const (
	StatusOut = 0
	StatusIn  = 1
)

// Person represents a registered identity using GORM.
// It corresponds to the 'persons' table.
type Person struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string `gorm:"type:TEXT COLLATE NOCASE;uniqueIndex;not null" json:"name"`
	Status    int    `gorm:"not null;default:0" json:"status"`  // 0: OUT, 1: IN
	EntryTime int64  `gorm:"not null;default:0" json:"entry_time"` // Unix seconds of the most recent arrival, 0 if never entered
	CreatedAt int64  `gorm:"not null" json:"created_at"`
	UpdatedAt int64  `gorm:"not null" json:"updated_at"`

	// Relationships
	Embeddings []Embedding `gorm:"foreignKey:PersonID;constraint:OnDelete:CASCADE" json:"embeddings,omitempty"`
}

// TableName explicitly sets the table name for GORM.
func (Person) TableName() string {
	return "persons"
}

// IsIn reports whether the person is currently marked present.
func (p *Person) IsIn() bool {
	return p.Status == StatusIn
}

// StatusLabel returns a human-readable presence status.
func (p *Person) StatusLabel() string {
	if p.Status == StatusIn {
		return "IN"
	}
	return "OUT"
}
