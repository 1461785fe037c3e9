package fetchlog

import (
	"database/sql"

	"github.com/pkg/errors"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db}
}

func (r *Repository) InsertFetchLog(e Entry) (Entry, error) {
	var errText sql.NullString
	if e.Error != "" {
		errText = sql.NullString{String: e.Error, Valid: true}
	}
	row := r.db.QueryRow(
		`INSERT INTO fetch_logs (source, jobs_found, jobs_added, success, error, fetched_at) VALUES ($1, $2, $3, $4, $5, NOW()) RETURNING id, fetched_at`,
		e.Source,
		e.JobsFound,
		e.JobsAdded,
		e.Success,
		errText,
	)
	if err := row.Scan(&e.ID, &e.FetchedAt); err != nil {
		return e, errors.Wrapf(err, "unable to insert fetch log for %s", e.Source)
	}
	return e, nil
}

// Recent returns the newest n entries, newest first.
func (r *Repository) Recent(n int) ([]Entry, error) {
	rows, err := r.db.Query(`SELECT id, source, jobs_found, jobs_added, success, error, fetched_at FROM fetch_logs ORDER BY fetched_at DESC, id DESC LIMIT $1`, n)
	if err != nil {
		return nil, errors.Wrap(err, "unable to get fetch logs")
	}
	defer rows.Close()
	entries := make([]Entry, 0, n)
	for rows.Next() {
		var e Entry
		var errText sql.NullString
		if err := rows.Scan(&e.ID, &e.Source, &e.JobsFound, &e.JobsAdded, &e.Success, &errText, &e.FetchedAt); err != nil {
			return entries, err
		}
		e.Error = errText.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
