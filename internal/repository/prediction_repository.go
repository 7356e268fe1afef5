package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/yourusername/veloform/internal/database"
	"github.com/yourusername/veloform/internal/models"
)

// PostgresPredictionRepository implements PredictionRepository for PostgreSQL
type PostgresPredictionRepository struct {
	db *database.DB
}

// NewPostgresPredictionRepository creates a new prediction repository
func NewPostgresPredictionRepository(db *database.DB) PredictionRepository {
	return &PostgresPredictionRepository{db: db}
}

// InsertBatch stores one versioned prediction snapshot for a race
func (r *PostgresPredictionRepository) InsertBatch(ctx context.Context, predictions []models.RacePrediction) error {
	if len(predictions) == 0 {
		return nil
	}

	tx, err := r.db.GetPool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		INSERT INTO race_predictions (
			id, race_id, rider_id, win_probability, podium_probability, top10_probability,
			final_score, components, predicted_position, confidence, reasoning, version, predicted_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	for i := range predictions {
		p := &predictions[i]
		components, err := json.Marshal(p.Components)
		if err != nil {
			return fmt.Errorf("failed to marshal score components: %w", err)
		}
		if _, err := tx.Exec(ctx, query,
			p.ID, p.RaceID, p.RiderID,
			p.WinProbability, p.PodiumProbability, p.Top10Probability,
			p.FinalScore, components, p.PredictedPosition,
			p.Confidence, p.Reasoning, p.Version, p.PredictedAt,
		); err != nil {
			return fmt.Errorf("failed to insert race prediction: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit predictions: %w", err)
	}
	return nil
}

// LatestVersion returns the newest snapshot version for a race, zero
// when the race has never been predicted.
func (r *PostgresPredictionRepository) LatestVersion(ctx context.Context, raceID uuid.UUID) (int, error) {
	var version int
	query := `SELECT COALESCE(MAX(version), 0) FROM race_predictions WHERE race_id = $1`
	if err := r.db.GetPool().QueryRow(ctx, query, raceID).Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to query latest prediction version: %w", err)
	}
	return version, nil
}

// PruneVersions deletes all snapshot versions of a race except the
// newest keep versions.
func (r *PostgresPredictionRepository) PruneVersions(ctx context.Context, raceID uuid.UUID, keep int) error {
	if keep <= 0 {
		return nil
	}

	query := `
		DELETE FROM race_predictions
		WHERE race_id = $1
		  AND version <= (SELECT COALESCE(MAX(version), 0) FROM race_predictions WHERE race_id = $1) - $2
	`
	if _, err := r.db.GetPool().Exec(ctx, query, raceID, keep); err != nil {
		return fmt.Errorf("failed to prune prediction snapshots: %w", err)
	}
	return nil
}

// ListByRace returns a race's predictions at the given version, in
// predicted order.
func (r *PostgresPredictionRepository) ListByRace(ctx context.Context, raceID uuid.UUID, version int) ([]models.RacePrediction, error) {
	query := `
		SELECT id, race_id, rider_id, win_probability, podium_probability, top10_probability,
		       final_score, components, predicted_position, confidence, reasoning, version, predicted_at
		FROM race_predictions
		WHERE race_id = $1 AND version = $2
		ORDER BY predicted_position ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, raceID, version)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer rows.Close()

	var predictions []models.RacePrediction
	for rows.Next() {
		var p models.RacePrediction
		var components []byte
		if err := rows.Scan(
			&p.ID, &p.RaceID, &p.RiderID,
			&p.WinProbability, &p.PodiumProbability, &p.Top10Probability,
			&p.FinalScore, &components, &p.PredictedPosition,
			&p.Confidence, &p.Reasoning, &p.Version, &p.PredictedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		if len(components) > 0 {
			if err := json.Unmarshal(components, &p.Components); err != nil {
				return nil, fmt.Errorf("failed to unmarshal score components: %w", err)
			}
		}
		predictions = append(predictions, p)
	}
	return predictions, rows.Err()
}
