package models

import "time"

// ProfileType classifies the terrain profile of a race.
type ProfileType string

// Supported profile types
const (
	ProfileFlat      ProfileType = "flat"
	ProfileHilly     ProfileType = "hilly"
	ProfileMountain  ProfileType = "mountain"
	ProfileTimeTrial ProfileType = "time_trial"
	ProfileCobbles   ProfileType = "cobbles"
	ProfileSprint    ProfileType = "sprint"
)

// Valid reports whether the profile type is one of the known values.
func (p ProfileType) Valid() bool {
	switch p {
	case ProfileFlat, ProfileHilly, ProfileMountain, ProfileTimeTrial, ProfileCobbles, ProfileSprint:
		return true
	default:
		return false
	}
}

// RecentResult is one entry of a rider's recent race history, used as
// input to the form calculation.
type RecentResult struct {
	Date        time.Time   `db:"date" json:"date" validate:"required"`
	Position    *int        `db:"position" json:"position"`
	FieldSize   int         `db:"field_size" json:"field_size" validate:"gte=0"`
	RaceWeight  float64     `db:"race_weight" json:"race_weight" validate:"gte=0,lte=1"`
	ProfileType ProfileType `db:"profile_type" json:"profile_type"`
	DNF         bool        `db:"dnf" json:"dnf"`
}
