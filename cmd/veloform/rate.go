package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yourusername/veloform/internal/models"
	"github.com/yourusername/veloform/internal/rating"
	"github.com/yourusername/veloform/internal/service"
)

var rateResultFile string

func init() {
	rateCmd.Flags().StringVarP(&rateResultFile, "result", "r", "", "Path to race outcome JSON")
	_ = rateCmd.MarkFlagRequired("result")
}

var rateCmd = &cobra.Command{
	Use:   "rate",
	Short: "Process a finished race into skill rating updates",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := setupDatabase(cmd); err != nil {
			return err
		}
		defer func() { _ = db.Close(cmd.Context()) }()

		data, err := os.ReadFile(rateResultFile)
		if err != nil {
			return fmt.Errorf("failed to read race outcome: %w", err)
		}
		var outcome models.RaceOutcome
		if err := json.Unmarshal(data, &outcome); err != nil {
			return fmt.Errorf("failed to parse race outcome: %w", err)
		}

		if err := repos.Result.InsertOutcome(cmd.Context(), &outcome); err != nil {
			return fmt.Errorf("failed to store race outcome: %w", err)
		}

		engine := rating.NewEngine(rating.WithSampler(rating.NewSampler(cfg.Rating.SamplerSeed)))
		svc := service.NewRatingService(repos, engine, appLogger)

		updates, err := svc.ProcessRace(cmd.Context(), &outcome)
		if err != nil {
			return err
		}

		fmt.Printf("%-38s %-10s %-10s %-8s\n", "Rider", "Old", "New", "Delta")
		for _, u := range updates {
			fmt.Printf("%-38s %10.1f %10.1f %+8.1f\n", u.RiderID, u.OldMean, u.NewMean, u.RatingDelta)
		}
		fmt.Printf("\n%d riders updated\n", len(updates))
		return nil
	},
}
