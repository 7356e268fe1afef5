package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RaceResult represents a single rider's outcome in a finished race, as
// supplied by the results-ingestion side of the application.
type RaceResult struct {
	RiderID  uuid.UUID `db:"rider_id" json:"rider_id" validate:"required"`
	Position *int      `db:"position" json:"position"`
	DNF      bool      `db:"dnf" json:"dnf"`
}

// Finished reports whether the result counts as a classified finish.
// DNF riders and riders without a recorded position are excluded from
// rating comparisons.
func (r *RaceResult) Finished() bool {
	return !r.DNF && r.Position != nil && *r.Position > 0
}

// RaceOutcome is the envelope a finished race arrives in: the final
// classification plus the rating pool it belongs to.
type RaceOutcome struct {
	RaceID      uuid.UUID       `db:"race_id" json:"race_id" validate:"required"`
	Name        string          `db:"name" json:"name"`
	Discipline  string          `db:"discipline" json:"discipline" validate:"required"`
	AgeCategory string          `db:"age_category" json:"age_category" validate:"required"`
	Date        time.Time       `db:"date" json:"date" validate:"required"`
	RaceWeight  float64         `db:"race_weight" json:"race_weight" validate:"gte=0,lte=1"`
	ProfileType ProfileType     `db:"profile_type" json:"profile_type"`
	PrizeMoney  decimal.Decimal `db:"prize_money" json:"prize_money"`
	Results     []RaceResult    `db:"-" json:"results" validate:"required,dive"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

// FinisherCount returns the number of classified finishers.
func (o *RaceOutcome) FinisherCount() int {
	count := 0
	for i := range o.Results {
		if o.Results[i].Finished() {
			count++
		}
	}
	return count
}

// PoolKey identifies the rating pool this outcome updates. Rating runs
// must be serialized per pool, in chronological race order.
func (o *RaceOutcome) PoolKey() string {
	return o.Discipline + ":" + o.AgeCategory
}
