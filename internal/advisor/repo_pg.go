package advisor

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PGRoadmapRepo implements RoadmapRepo using Postgres.
type PGRoadmapRepo struct {
	DB *sql.DB
}

// Create inserts a saved roadmap.
func (r *PGRoadmapRepo) Create(ctx context.Context, saved SavedRoadmap) error {
	const query = `
INSERT INTO saved_roadmaps (
    id,
    session_id,
    profile,
    result,
    storage_key,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6)`

	profile, err := json.Marshal(saved.Profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	// The snapshot holds the result body; the row keeps it only when there is none.
	var (
		result     any
		storageKey sql.NullString
	)
	if saved.StorageKey != "" {
		storageKey = sql.NullString{String: saved.StorageKey, Valid: true}
	} else {
		body, err := json.Marshal(saved.Result)
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
		result = body
	}

	_, err = r.DB.ExecContext(
		ctx,
		query,
		saved.ID,
		saved.SessionID,
		profile,
		result,
		storageKey,
		saved.CreatedAt,
	)
	return err
}

// GetByID returns a saved roadmap by id.
func (r *PGRoadmapRepo) GetByID(ctx context.Context, id string) (SavedRoadmap, error) {
	const query = `
SELECT id, session_id, profile, result, storage_key, created_at
FROM saved_roadmaps
WHERE id = $1`

	saved, err := scanSavedRoadmap(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return SavedRoadmap{}, ErrNotFound
		}
		return SavedRoadmap{}, err
	}
	return saved, nil
}

// ListBySession returns the roadmaps saved from a session, newest first.
func (r *PGRoadmapRepo) ListBySession(ctx context.Context, sessionID string) ([]SavedRoadmap, error) {
	const query = `
SELECT id, session_id, profile, result, storage_key, created_at
FROM saved_roadmaps
WHERE session_id = $1
ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []SavedRoadmap{}
	for rows.Next() {
		saved, err := scanSavedRoadmap(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, saved)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSavedRoadmap(row rowScanner) (SavedRoadmap, error) {
	var (
		saved      SavedRoadmap
		profile    []byte
		result     []byte
		storageKey sql.NullString
	)
	if err := row.Scan(&saved.ID, &saved.SessionID, &profile, &result, &storageKey, &saved.CreatedAt); err != nil {
		return SavedRoadmap{}, err
	}
	if err := json.Unmarshal(profile, &saved.Profile); err != nil {
		return SavedRoadmap{}, fmt.Errorf("decode profile: %w", err)
	}
	if len(result) > 0 {
		if err := json.Unmarshal(result, &saved.Result); err != nil {
			return SavedRoadmap{}, fmt.Errorf("decode result: %w", err)
		}
	}
	if storageKey.Valid {
		saved.StorageKey = storageKey.String
	}
	return saved, nil
}
