package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Brownie44l1/emotion-detector/internal/domain"
)

type PredictionRepository struct {
	pool PgxPool
}

func NewPredictionRepository(pool PgxPool) *PredictionRepository {
	return &PredictionRepository{pool: pool}
}

// Create appends p and fills in its ID and CreatedAt.
func (r *PredictionRepository) Create(ctx context.Context, p *domain.Prediction) error {
	query := `
		INSERT INTO predictions (name, image_path, emotion, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query,
		p.Name,
		p.ImagePath,
		p.Emotion,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("create prediction: %w", err)
	}

	return nil
}

// Latest returns at most limit predictions, newest first.
func (r *PredictionRepository) Latest(ctx context.Context, limit int) ([]domain.Prediction, error) {
	query := `
		SELECT id, name, image_path, emotion, created_at
		FROM predictions
		ORDER BY id DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list latest predictions: %w", err)
	}

	predictions, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Prediction, error) {
		var p domain.Prediction
		err := row.Scan(&p.ID, &p.Name, &p.ImagePath, &p.Emotion, &p.CreatedAt)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan predictions: %w", err)
	}

	return predictions, nil
}
