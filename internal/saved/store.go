package saved

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"tripscout/pkg/db"
)

var ErrNotFound = errors.New("saved excursion not found")

// Store persists favorited excursions keyed by (user, excursion).
type Store interface {
	Upsert(ctx context.Context, se SavedExcursion) error
	Delete(ctx context.Context, userID, excursionID string) error
	ListByUser(ctx context.Context, userID string) ([]SavedExcursion, error)
	Exists(ctx context.Context, userID, excursionID string) (bool, error)
}

type sqlStore struct {
	db db.SQLExecutor
}

func NewStore(executor db.SQLExecutor) Store {
	return &sqlStore{db: executor}
}

// Upsert keeps saving idempotent: re-saving refreshes the snapshot.
func (s *sqlStore) Upsert(ctx context.Context, se SavedExcursion) error {
	const query = `
		INSERT INTO saved_excursions (id, user_id, excursion_id, excursion_data, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, excursion_id)
		DO UPDATE SET excursion_data = EXCLUDED.excursion_data`

	_, err := s.db.ExecContext(ctx, query,
		se.ID, se.UserID, se.ExcursionID, []byte(se.Excursion), se.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert saved excursion: %w", err)
	}
	return nil
}

func (s *sqlStore) Delete(ctx context.Context, userID, excursionID string) error {
	const query = `DELETE FROM saved_excursions WHERE user_id = $1 AND excursion_id = $2`

	res, err := s.db.ExecContext(ctx, query, userID, excursionID)
	if err != nil {
		return fmt.Errorf("failed to delete saved excursion: %w", err)
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

func (s *sqlStore) ListByUser(ctx context.Context, userID string) ([]SavedExcursion, error) {
	const query = `
		SELECT id, user_id, excursion_id, excursion_data, created_at
		FROM saved_excursions
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved excursions: %w", err)
	}
	defer rows.Close()

	items := make([]SavedExcursion, 0)
	for rows.Next() {
		var (
			se   SavedExcursion
			data []byte
		)
		if err := rows.Scan(&se.ID, &se.UserID, &se.ExcursionID, &data, &se.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan saved excursion: %w", err)
		}
		se.Excursion = data
		items = append(items, se)
	}
	return items, rows.Err()
}

func (s *sqlStore) Exists(ctx context.Context, userID, excursionID string) (bool, error) {
	const query = `SELECT 1 FROM saved_excursions WHERE user_id = $1 AND excursion_id = $2`

	var one int
	err := s.db.QueryRowContext(ctx, query, userID, excursionID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
