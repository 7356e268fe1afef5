package models

import (
	"time"

	"github.com/google/uuid"
)

// SkillUpdate records one rider's rating change from one race, for audit
// and rating-history persistence.
type SkillUpdate struct {
	ID          uuid.UUID `db:"id" json:"id"`
	RaceID      uuid.UUID `db:"race_id" json:"race_id"`
	RiderID     uuid.UUID `db:"rider_id" json:"rider_id" validate:"required"`
	OldMean     float64   `db:"old_mean" json:"old_mean"`
	OldVariance float64   `db:"old_variance" json:"old_variance"`
	NewMean     float64   `db:"new_mean" json:"new_mean"`
	NewVariance float64   `db:"new_variance" json:"new_variance"`
	RatingDelta float64   `db:"rating_delta" json:"rating_delta"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// NewSkillUpdate builds an update record from before and after states.
func NewSkillUpdate(riderID uuid.UUID, oldMean, oldVariance, newMean, newVariance float64) SkillUpdate {
	return SkillUpdate{
		ID:          uuid.New(),
		RiderID:     riderID,
		OldMean:     oldMean,
		OldVariance: oldVariance,
		NewMean:     newMean,
		NewVariance: newVariance,
		RatingDelta: newMean - oldMean,
	}
}
