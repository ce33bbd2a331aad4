package cli

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"

	"live-quiz-service/internal/config"
	"live-quiz-service/internal/domain"
	pgstore "live-quiz-service/internal/infra/postgres"
)

// NewSeedCmd loads a quiz JSON document into Postgres. Quiz authoring lives
// outside this service; this is operator tooling for demos and environments
// without the authoring backend.
func NewSeedCmd(configPath *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Upsert a quiz JSON file into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Postgres.URL == "" {
				return fmt.Errorf("postgres url not configured")
			}

			data, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			var quiz domain.Quiz
			if err := json.Unmarshal(data, &quiz); err != nil {
				return fmt.Errorf("parse quiz file: %w", err)
			}
			if quiz.ID == "" {
				return fmt.Errorf("quiz file must set an id")
			}

			ctx := cmd.Context()
			if err := runMigrationsWithConfig(ctx, cfg); err != nil {
				return err
			}
			pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := pgstore.NewQuizStore(pool).SaveQuiz(ctx, quiz); err != nil {
				return err
			}
			log.Printf("seeded quiz %s (%d questions)", quiz.ID, len(quiz.Questions))
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "path to quiz JSON file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
