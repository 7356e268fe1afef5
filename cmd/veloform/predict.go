package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yourusername/veloform/internal/models"
	"github.com/yourusername/veloform/internal/prediction"
	"github.com/yourusername/veloform/internal/service"
)

var (
	predictRaceFile string
	predictTrials   int
)

func init() {
	predictCmd.Flags().StringVarP(&predictRaceFile, "race", "r", "", "Path to race start list JSON")
	predictCmd.Flags().IntVar(&predictTrials, "trials", 0, "Override Monte Carlo trial count")
	_ = predictCmd.MarkFlagRequired("race")
}

// startListFile mirrors the JSON handed over by the race-management
// side: race metadata plus the start list.
type startListFile struct {
	RaceID      uuid.UUID          `json:"race_id"`
	Discipline  string             `json:"discipline"`
	AgeCategory string             `json:"age_category"`
	ProfileType models.ProfileType `json:"profile_type"`
	Date        time.Time          `json:"date"`
	StartList   []startListRider   `json:"start_list"`
}

type startListRider struct {
	RiderID uuid.UUID `json:"rider_id"`
	Name    string    `json:"name"`
}

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Generate ranked predictions for a race start list",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := setupDatabase(cmd); err != nil {
			return err
		}
		defer func() { _ = db.Close(cmd.Context()) }()

		data, err := os.ReadFile(predictRaceFile)
		if err != nil {
			return fmt.Errorf("failed to read start list: %w", err)
		}
		var race startListFile
		if err := json.Unmarshal(data, &race); err != nil {
			return fmt.Errorf("failed to parse start list: %w", err)
		}

		trials := cfg.Prediction.MonteCarloTrials
		if predictTrials > 0 {
			trials = predictTrials
		}
		engine := prediction.NewEngine(prediction.WithTrials(trials))

		svc := service.NewPredictionService(
			repos, engine, nil, nil,
			service.PredictionOptions{
				FormCacheTTL:         time.Duration(cfg.Prediction.FormCacheTTLSeconds) * time.Second,
				FormCacheMaxEntries:  cfg.Prediction.FormCacheMaxEntries,
				SnapshotVersionLimit: cfg.Prediction.SnapshotVersionLimit,
			},
			appLogger,
		)

		startList := make([]service.StartListEntry, 0, len(race.StartList))
		for _, entry := range race.StartList {
			startList = append(startList, service.StartListEntry{RiderID: entry.RiderID, Name: entry.Name})
		}

		predictions, err := svc.PredictRace(cmd.Context(), service.RaceInfo{
			RaceID:      race.RaceID,
			Discipline:  race.Discipline,
			AgeCategory: race.AgeCategory,
			ProfileType: race.ProfileType,
			Date:        race.Date,
		}, startList)
		if err != nil {
			return err
		}

		printPredictions(predictions, race.StartList)
		return nil
	},
}

func printPredictions(predictions []models.RacePrediction, startList []startListRider) {
	names := make(map[uuid.UUID]string, len(startList))
	for _, entry := range startList {
		names[entry.RiderID] = entry.Name
	}

	fmt.Printf("%-4s %-24s %-7s %-7s %-7s %-8s %s\n", "Pos", "Rider", "Win", "Podium", "Top10", "Odds", "Reasoning")
	for _, p := range predictions {
		name := names[p.RiderID]
		if name == "" {
			name = p.RiderID.String()[:8]
		}
		fmt.Printf("%-4d %-24s %6.1f%% %6.1f%% %6.1f%% %8s %s\n",
			p.PredictedPosition, name,
			p.WinProbability*100, p.PodiumProbability*100, p.Top10Probability*100,
			p.ImpliedWinOdds().String(), p.Reasoning,
		)
	}
}
