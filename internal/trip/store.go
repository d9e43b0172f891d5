package trip

import (
	"context"
	"database/sql"
	"fmt"
	"time"
	"tripscout/pkg/db"
)

// Store persists trips and their excursion memberships.
type Store interface {
	Insert(ctx context.Context, t Trip) error
	ListByUser(ctx context.Context, userID string) ([]Trip, error)
	Get(ctx context.Context, tripID, userID string) (*Trip, error)
	Delete(ctx context.Context, tripID, userID string) error
	InsertExcursion(ctx context.Context, te TripExcursion) error
	DeleteExcursion(ctx context.Context, tripID, excursionID string) error
	ListExcursions(ctx context.Context, tripID string) ([]TripExcursion, error)
}

// ErrNotFound is returned when a trip does not exist or belongs to another
// user.
var ErrNotFound = sql.ErrNoRows

type sqlStore struct {
	db db.SQLExecutor
}

func NewStore(executor db.SQLExecutor) Store {
	return &sqlStore{db: executor}
}

func (s *sqlStore) Insert(ctx context.Context, t Trip) error {
	const query = `
		INSERT INTO trips (id, user_id, name, destination, start_date, end_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.db.ExecContext(ctx, query,
		t.ID, t.UserID, t.Name, t.Destination, t.StartDate, t.EndDate, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert trip: %w", err)
	}
	return nil
}

func (s *sqlStore) ListByUser(ctx context.Context, userID string) ([]Trip, error) {
	const query = `
		SELECT id, user_id, name, destination, start_date, end_date, created_at
		FROM trips
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}
	defer rows.Close()

	trips := make([]Trip, 0)
	for rows.Next() {
		var t Trip
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name, &t.Destination,
			&t.StartDate, &t.EndDate, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan trip: %w", err)
		}
		trips = append(trips, t)
	}
	return trips, rows.Err()
}

func (s *sqlStore) Get(ctx context.Context, tripID, userID string) (*Trip, error) {
	const query = `
		SELECT id, user_id, name, destination, start_date, end_date, created_at
		FROM trips
		WHERE id = $1 AND user_id = $2`

	var t Trip
	err := s.db.QueryRowContext(ctx, query, tripID, userID).
		Scan(&t.ID, &t.UserID, &t.Name, &t.Destination, &t.StartDate, &t.EndDate, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Delete removes the trip and its memberships atomically. Ownership is
// enforced by the user id predicate.
func (s *sqlStore) Delete(ctx context.Context, tripID, userID string) error {
	return s.db.WithTransaction(ctx, sql.LevelReadCommitted, func(ctx context.Context, tx *sql.Tx) error {
		const deleteExcursions = `
			DELETE FROM trip_excursions
			WHERE trip_id IN (SELECT id FROM trips WHERE id = $1 AND user_id = $2)`
		if _, err := tx.ExecContext(ctx, deleteExcursions, tripID, userID); err != nil {
			return fmt.Errorf("failed to delete trip excursions: %w", err)
		}

		const deleteTrip = `DELETE FROM trips WHERE id = $1 AND user_id = $2`
		res, err := tx.ExecContext(ctx, deleteTrip, tripID, userID)
		if err != nil {
			return fmt.Errorf("failed to delete trip: %w", err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *sqlStore) InsertExcursion(ctx context.Context, te TripExcursion) error {
	const query = `
		INSERT INTO trip_excursions (id, trip_id, excursion_id, excursion_data, day, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	var day any
	if te.Day != nil {
		day = *te.Day
	}

	_, err := s.db.ExecContext(ctx, query,
		te.ID, te.TripID, te.ExcursionID, []byte(te.Excursion), day, te.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert trip excursion: %w", err)
	}
	return nil
}

func (s *sqlStore) DeleteExcursion(ctx context.Context, tripID, excursionID string) error {
	const query = `DELETE FROM trip_excursions WHERE trip_id = $1 AND excursion_id = $2`

	res, err := s.db.ExecContext(ctx, query, tripID, excursionID)
	if err != nil {
		return fmt.Errorf("failed to delete trip excursion: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *sqlStore) ListExcursions(ctx context.Context, tripID string) ([]TripExcursion, error) {
	const query = `
		SELECT id, trip_id, excursion_id, excursion_data, day, created_at
		FROM trip_excursions
		WHERE trip_id = $1
		ORDER BY day ASC NULLS LAST, created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trip excursions: %w", err)
	}
	defer rows.Close()

	excursions := make([]TripExcursion, 0)
	for rows.Next() {
		var (
			te   TripExcursion
			data []byte
			day  sql.NullInt64
			ts   time.Time
		)
		if err := rows.Scan(&te.ID, &te.TripID, &te.ExcursionID, &data, &day, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan trip excursion: %w", err)
		}
		te.Excursion = data
		te.CreatedAt = ts
		if day.Valid {
			d := int(day.Int64)
			te.Day = &d
		}
		excursions = append(excursions, te)
	}
	return excursions, rows.Err()
}
