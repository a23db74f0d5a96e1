package services

import (
	"errors"
	"strings"
	"time"

	"github.com/camden-git/gatewatch/auditlog"
	"github.com/camden-git/gatewatch/models"
	"gorm.io/gorm"
)

// fakePersonStore is an in-memory PersonRepositoryInterface for flow tests.
type fakePersonStore struct {
	persons  []models.Person
	nextID   uint
	failList bool

	statusCalls []statusCall
}

type statusCall struct {
	id     uint
	status int
}

func newFakePersonStore() *fakePersonStore {
	return &fakePersonStore{nextID: 1}
}

func (s *fakePersonStore) addPerson(name string, status int, entryTime int64, vectors ...[]float32) *models.Person {
	person := models.Person{
		ID:        s.nextID,
		Name:      name,
		Status:    status,
		EntryTime: entryTime,
	}
	for _, vec := range vectors {
		emb := models.Embedding{PersonID: person.ID}
		emb.SetVector(vec)
		person.Embeddings = append(person.Embeddings, emb)
	}
	s.nextID++
	s.persons = append(s.persons, person)
	return &s.persons[len(s.persons)-1]
}

func (s *fakePersonStore) Create(name string, feature []float32) (*models.Person, error) {
	if existing, err := s.GetByName(name); err == nil {
		return existing, nil
	}
	var vectors [][]float32
	if feature != nil {
		vectors = append(vectors, feature)
	}
	return s.addPerson(name, models.StatusIn, time.Now().Unix(), vectors...), nil
}

func (s *fakePersonStore) GetByID(id uint) (*models.Person, error) {
	for i := range s.persons {
		if s.persons[i].ID == id {
			return &s.persons[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakePersonStore) GetByName(name string) (*models.Person, error) {
	for i := range s.persons {
		if strings.EqualFold(s.persons[i].Name, name) {
			return &s.persons[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakePersonStore) ListAllWithEmbeddings() ([]models.Person, error) {
	if s.failList {
		return nil, errors.New("storage unavailable")
	}
	// return a copied snapshot: flow-local mutations must not write through
	snapshot := make([]models.Person, len(s.persons))
	copy(snapshot, s.persons)
	return snapshot, nil
}

func (s *fakePersonStore) SetStatus(id uint, status int) error {
	for i := range s.persons {
		if s.persons[i].ID == id {
			s.statusCalls = append(s.statusCalls, statusCall{id: id, status: status})
			s.persons[i].Status = status
			if status == models.StatusIn {
				s.persons[i].EntryTime = time.Now().Unix()
			}
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *fakePersonStore) Delete(id uint) error {
	for i := range s.persons {
		if s.persons[i].ID == id {
			s.persons = append(s.persons[:i], s.persons[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *fakePersonStore) DeleteAll() error {
	s.persons = nil
	return nil
}

// fakeEmbeddingStore is an in-memory EmbeddingRepositoryInterface.
type fakeEmbeddingStore struct {
	persons *fakePersonStore
	appends map[uint][][]float32
}

func newFakeEmbeddingStore(persons *fakePersonStore) *fakeEmbeddingStore {
	return &fakeEmbeddingStore{persons: persons, appends: make(map[uint][][]float32)}
}

func (s *fakeEmbeddingStore) Create(personID uint, feature []float32) error {
	if _, err := s.persons.GetByID(personID); err != nil {
		return err
	}
	s.appends[personID] = append(s.appends[personID], feature)
	return nil
}

func (s *fakeEmbeddingStore) ListByPersonID(personID uint) ([]models.Embedding, error) {
	var embeddings []models.Embedding
	for _, vec := range s.appends[personID] {
		emb := models.Embedding{PersonID: personID}
		emb.SetVector(vec)
		embeddings = append(embeddings, emb)
	}
	return embeddings, nil
}

// fakeAudit records appended session records.
type fakeAudit struct {
	records []auditlog.Record
	failing bool
}

func (a *fakeAudit) Append(rec auditlog.Record) error {
	if a.failing {
		return errors.New("audit unavailable")
	}
	a.records = append(a.records, rec)
	return nil
}
