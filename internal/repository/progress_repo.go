package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"algobites-backend/internal/models"
)

// ProgressRepo stores one JSON progress document per user, the document-store
// analog of a "users/{uid}" path. Get returns an existence flag like a
// document snapshot; Put writes the whole document back.
type ProgressRepo struct {
	pool *pgxpool.Pool
}

func NewProgressRepo(pool *pgxpool.Pool) *ProgressRepo {
	return &ProgressRepo{pool: pool}
}

// Get fetches the user's document. An absent row is not an error: it returns
// a default-empty document and exists=false.
func (r *ProgressRepo) Get(ctx context.Context, userID uuid.UUID) (models.ProgressDoc, bool, error) {
	var raw []byte
	err := r.pool.QueryRow(ctx, "SELECT doc FROM user_progress WHERE user_id = $1", userID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.EmptyProgressDoc(), false, nil
	}
	if err != nil {
		return models.EmptyProgressDoc(), false, fmt.Errorf("failed to read progress document: %w", err)
	}

	doc := models.EmptyProgressDoc()
	if err := json.Unmarshal(raw, &doc); err != nil {
		return models.EmptyProgressDoc(), false, fmt.Errorf("failed to decode progress document: %w", err)
	}
	return doc, true, nil
}

// Put overwrites the user's document with the given value. Callers perform
// read-merge-write: two concurrent writers race and the last commit wins,
// which matches the store's documented semantics.
func (r *ProgressRepo) Put(ctx context.Context, userID uuid.UUID, doc models.ProgressDoc) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode progress document: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO user_progress (user_id, doc, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE SET doc = $2, updated_at = NOW()
	`, userID, raw)
	if err != nil {
		return fmt.Errorf("failed to write progress document: %w", err)
	}
	return nil
}
