// Package auditlog maintains the append-only record of completed
// presence sessions. One line is written per qualifying exit event and
// lines are never mutated or deleted. No header row is written;
// consumers must not assume one.
package auditlog

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// timeLayout is the human-readable local time format used in records.
const timeLayout = "2006-01-02 15:04:05"

// Record is one completed presence session, immutable once written.
type Record struct {
	PersonID uint          `json:"person_id"`
	Name     string        `json:"name"`
	ExitTime time.Time     `json:"exit_time"`
	Duration time.Duration `json:"duration"`
}

// Logger appends session records to a text file. Appends are serialized
// within the process; cross-process safety relies on O_APPEND writes
// being atomic for single lines.
type Logger struct {
	path string
	mu   sync.Mutex
}

// NewLogger creates a session audit logger writing to path
func NewLogger(path string) *Logger {
	return &Logger{path: path}
}

// Append writes one session record:
// id,name,exit time,duration seconds,duration formatted
func (l *Logger) Append(rec Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open audit log %s: %w", l.path, err)
	}
	defer f.Close()

	line := fmt.Sprintf("%d,%s,%s,%.2f,%s\n",
		rec.PersonID,
		rec.Name,
		rec.ExitTime.Local().Format(timeLayout),
		rec.Duration.Seconds(),
		FormatDuration(rec.Duration),
	)
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("failed to append audit record for person %d: %w", rec.PersonID, err)
	}
	return nil
}

// ReadAll parses every record in the log. A missing file is an empty
// log, not an error. Unparseable lines are skipped; each record is
// self-contained so one bad line does not poison the rest.
func (l *Logger) ReadAll() ([]Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Record{}, nil
		}
		return nil, fmt.Errorf("failed to open audit log %s: %w", l.path, err)
	}
	defer f.Close()

	records := []Record{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		rec, ok := parseLine(scanner.Text())
		if ok {
			records = append(records, rec)
		}
	}
	if err := scanner.Err(); err != nil {
		return records, fmt.Errorf("failed to read audit log %s: %w", l.path, err)
	}
	return records, nil
}

func parseLine(line string) (Record, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Record{}, false
	}
	fields := strings.Split(line, ",")
	if len(fields) < 5 {
		return Record{}, false
	}

	id, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return Record{}, false
	}
	exitTime, err := time.ParseInLocation(timeLayout, fields[len(fields)-3], time.Local)
	if err != nil {
		return Record{}, false
	}
	seconds, err := strconv.ParseFloat(fields[len(fields)-2], 64)
	if err != nil {
		return Record{}, false
	}

	// the name field may itself contain commas; everything between the id
	// and the trailing three fields belongs to it
	name := strings.Join(fields[1:len(fields)-3], ",")

	return Record{
		PersonID: uint(id),
		Name:     name,
		ExitTime: exitTime,
		Duration: time.Duration(seconds * float64(time.Second)),
	}, true
}

// FormatDuration renders a duration as H:MM:SS (e.g. 3725s -> "1:02:05").
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d.Seconds())
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}
