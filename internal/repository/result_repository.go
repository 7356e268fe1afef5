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

// PostgresResultRepository implements ResultRepository for PostgreSQL
type PostgresResultRepository struct {
	db *database.DB
}

// NewPostgresResultRepository creates a new result repository
func NewPostgresResultRepository(db *database.DB) ResultRepository {
	return &PostgresResultRepository{db: db}
}

// InsertOutcome stores a finished race and its classification
func (r *PostgresResultRepository) InsertOutcome(ctx context.Context, outcome *models.RaceOutcome) error {
	tx, err := r.db.GetPool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	raceQuery := `
		INSERT INTO race_outcomes (race_id, name, discipline, age_category, date, race_weight, profile_type, prize_money, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (race_id) DO NOTHING
	`
	if _, err := tx.Exec(ctx, raceQuery,
		outcome.RaceID, outcome.Name, outcome.Discipline, outcome.AgeCategory,
		outcome.Date, outcome.RaceWeight, outcome.ProfileType, outcome.PrizeMoney,
	); err != nil {
		return fmt.Errorf("failed to insert race outcome: %w", err)
	}

	resultQuery := `
		INSERT INTO race_results (race_id, rider_id, position, dnf)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (race_id, rider_id) DO UPDATE SET position = $3, dnf = $4
	`
	for i := range outcome.Results {
		res := &outcome.Results[i]
		if _, err := tx.Exec(ctx, resultQuery, outcome.RaceID, res.RiderID, res.Position, res.DNF); err != nil {
			return fmt.Errorf("failed to insert race result: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit race outcome: %w", err)
	}
	return nil
}

// RecentByRider returns a rider's results since the given date, newest
// first, in the shape the form engine consumes.
func (r *PostgresResultRepository) RecentByRider(ctx context.Context, riderID uuid.UUID, since time.Time) ([]models.RecentResult, error) {
	query := `
		SELECT o.date, rr.position, field.size, o.race_weight, o.profile_type, rr.dnf
		FROM race_results rr
		JOIN race_outcomes o ON o.race_id = rr.race_id
		JOIN LATERAL (
			SELECT COUNT(*) AS size FROM race_results f WHERE f.race_id = rr.race_id
		) field ON TRUE
		WHERE rr.rider_id = $1 AND o.date >= $2
		ORDER BY o.date DESC
	`

	rows, err := r.db.GetPool().Query(ctx, query, riderID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent results: %w", err)
	}
	defer rows.Close()

	var results []models.RecentResult
	for rows.Next() {
		var res models.RecentResult
		if err := rows.Scan(&res.Date, &res.Position, &res.FieldSize, &res.RaceWeight, &res.ProfileType, &res.DNF); err != nil {
			return nil, fmt.Errorf("failed to scan recent result: %w", err)
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

// LastRaceDate returns the date of the rider's most recent race, or
// models.ErrNotFound when the rider has never raced.
func (r *PostgresResultRepository) LastRaceDate(ctx context.Context, riderID uuid.UUID) (*time.Time, error) {
	query := `
		SELECT MAX(o.date)
		FROM race_results rr
		JOIN race_outcomes o ON o.race_id = rr.race_id
		WHERE rr.rider_id = $1
	`

	var last *time.Time
	err := r.db.GetPool().QueryRow(ctx, query, riderID).Scan(&last)
	if errors.Is(err, pgx.ErrNoRows) || (err == nil && last == nil) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query last race date: %w", err)
	}
	return last, nil
}
