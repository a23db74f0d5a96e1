package database

import (
	"database/sql"
	"fmt"
	"log"

	sq "github.com/Masterminds/squirrel"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// PersonSummary is a read-only row for the admin listing; the live flows
// never touch this layer.
type PersonSummary struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Status         int    `json:"status"`
	EntryTime      int64  `json:"entry_time"`
	EmbeddingCount int64  `json:"embedding_count"`
}

// ListPersonSummaries retrieves every person with their stored embedding
// count, ordered by id (registration order)
func ListPersonSummaries(db *sql.DB) ([]PersonSummary, error) {
	queryBuilder := psql.Select(
		"persons.id", "persons.name", "persons.status", "persons.entry_time",
		"COUNT(embeddings.id) AS embedding_count").
		From("persons").
		LeftJoin("embeddings ON embeddings.person_id = persons.id").
		GroupBy("persons.id").
		OrderBy("persons.id ASC")
	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL for ListPersonSummaries: %w", err)
	}
	rows, err := db.Query(sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute ListPersonSummaries query: %w", err)
	}
	defer rows.Close()
	summaries := []PersonSummary{}
	for rows.Next() {
		var s PersonSummary
		err := rows.Scan(&s.ID, &s.Name, &s.Status, &s.EntryTime, &s.EmbeddingCount)
		if err != nil {
			log.Printf("Error scanning person summary row: %v", err)
			continue
		}
		summaries = append(summaries, s)
	}
	if err = rows.Err(); err != nil {
		return summaries, fmt.Errorf("error iterating person summary rows: %w", err)
	}
	return summaries, nil
}

// CountByStatus returns how many persons currently hold the given status
func CountByStatus(db *sql.DB, status int) (int64, error) {
	queryBuilder := psql.Select("COUNT(*)").
		From("persons").
		Where(sq.Eq{"status": status})
	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build SQL for CountByStatus: %w", err)
	}
	var count int64
	err = db.QueryRow(sqlStr, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to execute CountByStatus query: %w", err)
	}
	return count, nil
}
