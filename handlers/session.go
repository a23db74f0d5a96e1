package handlers

import (
	"log"
	"net/http"

	"github.com/camden-git/gatewatch/auditlog"
)

// SessionHandler serves parsed session audit records.
type SessionHandler struct {
	Audit *auditlog.Logger
}

type sessionResponse struct {
	PersonID          uint    `json:"person_id"`
	Name              string  `json:"name"`
	ExitTime          string  `json:"exit_time"`
	DurationSeconds   float64 `json:"duration_seconds"`
	DurationFormatted string  `json:"duration_formatted"`
}

// ListSessions returns every completed presence session in log order
func (sh *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	records, err := sh.Audit.ReadAll()
	if err != nil {
		log.Printf("Error reading audit log: %v", err)
		WriteAPIError(w, http.StatusInternalServerError, "sessions_failed", "Failed to read session log")
		return
	}

	resp := make([]sessionResponse, 0, len(records))
	for _, rec := range records {
		resp = append(resp, sessionResponse{
			PersonID:          rec.PersonID,
			Name:              rec.Name,
			ExitTime:          rec.ExitTime.Format("2006-01-02 15:04:05"),
			DurationSeconds:   rec.Duration.Seconds(),
			DurationFormatted: auditlog.FormatDuration(rec.Duration),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
