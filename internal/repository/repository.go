package repository

import (
	"fmt"

	"github.com/yourusername/veloform/internal/database"
)

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Skill:       NewPostgresSkillRepository(db),
		SkillUpdate: NewPostgresSkillUpdateRepository(db),
		Result:      NewPostgresResultRepository(db),
		Prediction:  NewPostgresPredictionRepository(db),
	}, nil
}
