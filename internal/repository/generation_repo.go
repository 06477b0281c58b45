package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"studymixer-backend/internal/models"
)

// GenerationRepo persists one history row per completed generation cycle.
type GenerationRepo struct {
	pool *pgxpool.Pool
}

func NewGenerationRepo(pool *pgxpool.Pool) *GenerationRepo {
	return &GenerationRepo{pool: pool}
}

func (r *GenerationRepo) Create(ctx context.Context, g *models.Generation) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now()
	}

	query := `INSERT INTO generations (id, filename, file_kind, difficulty, format, focus, result_text, error_code, error_message, cached, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.pool.Exec(ctx, query,
		g.ID, g.Filename, g.FileKind, g.Difficulty, g.Format, g.Focus,
		g.ResultText, g.ErrorCode, g.ErrorMsg, g.Cached, g.CreatedAt,
	)
	return err
}

func (r *GenerationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Generation, error) {
	g := &models.Generation{}
	query := `SELECT id, filename, file_kind, difficulty, format, focus, result_text, error_code, error_message, cached, created_at
		FROM generations WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&g.ID, &g.Filename, &g.FileKind, &g.Difficulty, &g.Format, &g.Focus,
		&g.ResultText, &g.ErrorCode, &g.ErrorMsg, &g.Cached, &g.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (r *GenerationRepo) List(ctx context.Context, limit int) ([]*models.Generation, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := `SELECT id, filename, file_kind, difficulty, format, focus, result_text, error_code, error_message, cached, created_at
		FROM generations ORDER BY created_at DESC LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var generations []*models.Generation
	for rows.Next() {
		g := &models.Generation{}
		err := rows.Scan(
			&g.ID, &g.Filename, &g.FileKind, &g.Difficulty, &g.Format, &g.Focus,
			&g.ResultText, &g.ErrorCode, &g.ErrorMsg, &g.Cached, &g.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		generations = append(generations, g)
	}
	return generations, rows.Err()
}
