// Package history archives completed itineraries in PostgreSQL.
package history

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("itinerary not found")

// Record is one archived itinerary.
type Record struct {
	ID          int64     `json:"id"`
	SessionID   string    `json:"session_id"`
	Source      string    `json:"source"`
	Destination string    `json:"destination"`
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date"`
	Itinerary   string    `json:"itinerary"`
	CreatedAt   time.Time `json:"created_at"`
}

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Save(ctx context.Context, r *Record) error {
	row := s.db.QueryRow(ctx, `
        INSERT INTO itineraries (
            session_id, source, destination, start_date, end_date, itinerary, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id`,
		r.SessionID,
		r.Source,
		r.Destination,
		r.StartDate,
		r.EndDate,
		r.Itinerary,
		r.CreatedAt,
	)
	return row.Scan(&r.ID)
}

func (s *Store) Get(ctx context.Context, id int64) (*Record, error) {
	row := s.db.QueryRow(ctx, `
        SELECT id, session_id, source, destination, start_date, end_date, itinerary, created_at
        FROM itineraries
        WHERE id = $1`, id,
	)

	var r Record
	err := row.Scan(&r.ID, &r.SessionID, &r.Source, &r.Destination, &r.StartDate, &r.EndDate, &r.Itinerary, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListBySession returns a session's archived itineraries, newest first.
func (s *Store) ListBySession(ctx context.Context, sessionID string) ([]Record, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, session_id, source, destination, start_date, end_date, itinerary, created_at
        FROM itineraries
        WHERE session_id = $1
        ORDER BY created_at DESC`, sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.SessionID, &r.Source, &r.Destination, &r.StartDate, &r.EndDate, &r.Itinerary, &r.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
