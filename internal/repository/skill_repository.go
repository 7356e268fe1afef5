package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/veloform/internal/database"
	"github.com/yourusername/veloform/internal/models"
)

const errScanSkill = "failed to scan rider skill: %w"

// PostgresSkillRepository implements SkillRepository for PostgreSQL
type PostgresSkillRepository struct {
	db *database.DB
}

// NewPostgresSkillRepository creates a new skill repository
func NewPostgresSkillRepository(db *database.DB) SkillRepository {
	return &PostgresSkillRepository{db: db}
}

// Get retrieves one rider's skill in the given rating pool
func (r *PostgresSkillRepository) Get(ctx context.Context, riderID uuid.UUID, discipline, ageCategory string) (*models.RiderSkill, error) {
	query := `
		SELECT rider_id, discipline, age_category, mean, variance, base_variance, races_total, updated_at
		FROM rider_skills
		WHERE rider_id = $1 AND discipline = $2 AND age_category = $3
	`

	skill := &models.RiderSkill{}
	err := r.db.GetPool().QueryRow(ctx, query, riderID, discipline, ageCategory).Scan(
		&skill.RiderID, &skill.Discipline, &skill.AgeCategory,
		&skill.Mean, &skill.Variance, &skill.BaseVariance, &skill.RacesTotal, &skill.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf(errScanSkill, err)
	}
	return skill, nil
}

// GetPool loads the skills of the given riders within one rating pool.
// Riders without a stored skill are simply absent from the returned map;
// the rating engine initializes them at the default prior.
func (r *PostgresSkillRepository) GetPool(ctx context.Context, discipline, ageCategory string, riderIDs []uuid.UUID) (map[uuid.UUID]*models.RiderSkill, error) {
	query := `
		SELECT rider_id, discipline, age_category, mean, variance, base_variance, races_total, updated_at
		FROM rider_skills
		WHERE discipline = $1 AND age_category = $2 AND rider_id = ANY($3)
	`

	rows, err := r.db.GetPool().Query(ctx, query, discipline, ageCategory, riderIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query skill pool: %w", err)
	}
	defer rows.Close()

	skills := make(map[uuid.UUID]*models.RiderSkill, len(riderIDs))
	for rows.Next() {
		skill := &models.RiderSkill{}
		if err := rows.Scan(
			&skill.RiderID, &skill.Discipline, &skill.AgeCategory,
			&skill.Mean, &skill.Variance, &skill.BaseVariance, &skill.RacesTotal, &skill.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf(errScanSkill, err)
		}
		skills[skill.RiderID] = skill
	}
	return skills, rows.Err()
}

// Upsert inserts or updates one rider skill
func (r *PostgresSkillRepository) Upsert(ctx context.Context, skill *models.RiderSkill) error {
	query := `
		INSERT INTO rider_skills (rider_id, discipline, age_category, mean, variance, base_variance, races_total, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (rider_id, discipline, age_category)
		DO UPDATE SET mean = $4, variance = $5, base_variance = $6, races_total = $7, updated_at = NOW()
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		skill.RiderID, skill.Discipline, skill.AgeCategory,
		skill.Mean, skill.Variance, skill.BaseVariance, skill.RacesTotal,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert rider skill: %w", err)
	}
	return nil
}

// UpsertBatch writes a batch of skills inside one transaction so a race
// update is applied atomically.
func (r *PostgresSkillRepository) UpsertBatch(ctx context.Context, skills []*models.RiderSkill) error {
	if len(skills) == 0 {
		return nil
	}

	tx, err := r.db.GetPool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		INSERT INTO rider_skills (rider_id, discipline, age_category, mean, variance, base_variance, races_total, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (rider_id, discipline, age_category)
		DO UPDATE SET mean = $4, variance = $5, base_variance = $6, races_total = $7, updated_at = NOW()
	`
	for _, skill := range skills {
		if _, err := tx.Exec(ctx, query,
			skill.RiderID, skill.Discipline, skill.AgeCategory,
			skill.Mean, skill.Variance, skill.BaseVariance, skill.RacesTotal,
		); err != nil {
			return fmt.Errorf("failed to upsert rider skill in batch: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit skill batch: %w", err)
	}
	return nil
}

// UpdateVarianceBatch writes new variances without touching updated_at,
// so the inactivity sweep does not reset its own clock.
func (r *PostgresSkillRepository) UpdateVarianceBatch(ctx context.Context, skills []*models.RiderSkill) error {
	if len(skills) == 0 {
		return nil
	}

	tx, err := r.db.GetPool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		UPDATE rider_skills SET variance = $4
		WHERE rider_id = $1 AND discipline = $2 AND age_category = $3
	`
	for _, skill := range skills {
		if _, err := tx.Exec(ctx, query,
			skill.RiderID, skill.Discipline, skill.AgeCategory, skill.Variance,
		); err != nil {
			return fmt.Errorf("failed to update rider variance: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit variance batch: %w", err)
	}
	return nil
}

// ListInactiveSince returns skills not updated since cutoff, for the
// inactivity variance sweep.
func (r *PostgresSkillRepository) ListInactiveSince(ctx context.Context, cutoff time.Time, limit int) ([]*models.RiderSkill, error) {
	query := `
		SELECT rider_id, discipline, age_category, mean, variance, base_variance, races_total, updated_at
		FROM rider_skills
		WHERE updated_at < $1
		ORDER BY updated_at ASC
		LIMIT $2
	`

	rows, err := r.db.GetPool().Query(ctx, query, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query inactive skills: %w", err)
	}
	defer rows.Close()

	var skills []*models.RiderSkill
	for rows.Next() {
		skill := &models.RiderSkill{}
		if err := rows.Scan(
			&skill.RiderID, &skill.Discipline, &skill.AgeCategory,
			&skill.Mean, &skill.Variance, &skill.BaseVariance, &skill.RacesTotal, &skill.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf(errScanSkill, err)
		}
		skills = append(skills, skill)
	}
	return skills, rows.Err()
}

// Count returns the total number of stored rider skills
func (r *PostgresSkillRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetPool().QueryRow(ctx, "SELECT COUNT(*) FROM rider_skills").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count rider skills: %w", err)
	}
	return count, nil
}
