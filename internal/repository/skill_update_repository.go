package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/yourusername/veloform/internal/database"
	"github.com/yourusername/veloform/internal/models"
)

// PostgresSkillUpdateRepository implements SkillUpdateRepository for PostgreSQL
type PostgresSkillUpdateRepository struct {
	db *database.DB
}

// NewPostgresSkillUpdateRepository creates a new skill update repository
func NewPostgresSkillUpdateRepository(db *database.DB) SkillUpdateRepository {
	return &PostgresSkillUpdateRepository{db: db}
}

// InsertBatch stores the audit records for one processed race
func (r *PostgresSkillUpdateRepository) InsertBatch(ctx context.Context, raceID uuid.UUID, updates []models.SkillUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	tx, err := r.db.GetPool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		INSERT INTO skill_updates (id, race_id, rider_id, old_mean, old_variance, new_mean, new_variance, rating_delta, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
	`
	for _, u := range updates {
		if _, err := tx.Exec(ctx, query,
			u.ID, raceID, u.RiderID,
			u.OldMean, u.OldVariance, u.NewMean, u.NewVariance, u.RatingDelta,
		); err != nil {
			return fmt.Errorf("failed to insert skill update: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit skill updates: %w", err)
	}
	return nil
}

// ListByRider returns a rider's most recent rating changes
func (r *PostgresSkillUpdateRepository) ListByRider(ctx context.Context, riderID uuid.UUID, limit int) ([]models.SkillUpdate, error) {
	query := `
		SELECT id, race_id, rider_id, old_mean, old_variance, new_mean, new_variance, rating_delta, created_at
		FROM skill_updates
		WHERE rider_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.GetPool().Query(ctx, query, riderID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query skill updates: %w", err)
	}
	defer rows.Close()

	var updates []models.SkillUpdate
	for rows.Next() {
		var u models.SkillUpdate
		if err := rows.Scan(
			&u.ID, &u.RaceID, &u.RiderID,
			&u.OldMean, &u.OldVariance, &u.NewMean, &u.NewVariance, &u.RatingDelta, &u.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan skill update: %w", err)
		}
		updates = append(updates, u)
	}
	return updates, rows.Err()
}
