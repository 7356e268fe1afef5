package models

import "time"

// FormTrend describes the direction of a rider's recent results.
type FormTrend string

// Trend values
const (
	TrendImproving FormTrend = "improving"
	TrendStable    FormTrend = "stable"
	TrendDeclining FormTrend = "declining"
)

// FormScore is an immutable snapshot of a rider's time-decayed recent
// performance. It is recomputed on demand and never persisted by the
// rating core.
type FormScore struct {
	Overall      float64                 `json:"overall"`
	ByProfile    map[ProfileType]float64 `json:"by_profile"`
	RacesCount   int                     `json:"races_count"`
	LastRaceDate *time.Time              `json:"last_race_date"`
	Trend        FormTrend               `json:"trend"`
}

// HasRecentRacing reports whether any races fell inside the form window.
func (f *FormScore) HasRecentRacing() bool {
	return f.RacesCount > 0
}
