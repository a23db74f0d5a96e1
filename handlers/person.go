package handlers

import (
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/camden-git/gatewatch/database"
	"github.com/camden-git/gatewatch/models"
	"github.com/camden-git/gatewatch/repository"
	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

// PersonHandler serves the registry status API. It reads summaries
// through the report layer and individual persons through the repository.
type PersonHandler struct {
	PersonRepo repository.PersonRepositoryInterface
	SQLDB      *sql.DB
}

type personResponse struct {
	ID             uint   `json:"id"`
	Name           string `json:"name"`
	Status         string `json:"status"`
	EntryTime      int64  `json:"entry_time"`
	EmbeddingCount int    `json:"embedding_count"`
}

// ListPeople returns every person with status and embedding count
func (ph *PersonHandler) ListPeople(w http.ResponseWriter, r *http.Request) {
	summaries, err := database.ListPersonSummaries(ph.SQLDB)
	if err != nil {
		log.Printf("Error listing people: %v", err)
		WriteAPIError(w, http.StatusInternalServerError, "list_failed", "Failed to retrieve people")
		return
	}

	resp := make([]personResponse, 0, len(summaries))
	for _, s := range summaries {
		p := models.Person{Status: s.Status}
		resp = append(resp, personResponse{
			ID:             uint(s.ID),
			Name:           s.Name,
			Status:         p.StatusLabel(),
			EntryTime:      s.EntryTime,
			EmbeddingCount: int(s.EmbeddingCount),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetPerson returns one person by id
func (ph *PersonHandler) GetPerson(w http.ResponseWriter, r *http.Request) {
	id, ok := personIDParam(w, r)
	if !ok {
		return
	}

	person, err := ph.PersonRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "person_not_found", "No person with that id")
			return
		}
		log.Printf("Error fetching person %d: %v", id, err)
		WriteAPIError(w, http.StatusInternalServerError, "get_failed", "Failed to retrieve person")
		return
	}

	writeJSON(w, http.StatusOK, personResponse{
		ID:             person.ID,
		Name:           person.Name,
		Status:         person.StatusLabel(),
		EntryTime:      person.EntryTime,
		EmbeddingCount: len(person.Embeddings),
	})
}

// DeletePerson removes a person and, by cascade, their embeddings
func (ph *PersonHandler) DeletePerson(w http.ResponseWriter, r *http.Request) {
	id, ok := personIDParam(w, r)
	if !ok {
		return
	}

	if err := ph.PersonRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "person_not_found", "No person with that id")
			return
		}
		log.Printf("Error deleting person %d: %v", id, err)
		WriteAPIError(w, http.StatusInternalServerError, "delete_failed", "Failed to delete person")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func personIDParam(w http.ResponseWriter, r *http.Request) (uint, bool) {
	idStr := chi.URLParam(r, "person_id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_id", "person_id must be a positive integer")
		return 0, false
	}
	return uint(id), true
}
