package cli

import (
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"quiz-engine/internal/config"
	"quiz-engine/internal/infra/postgres"
	infraredis "quiz-engine/internal/infra/redis"
	"quiz-engine/internal/questions"
)

// NewImportCmd stores a question file in Postgres.
func NewImportCmd(configPath *string) *cobra.Command {
	var setID string
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a JSON or YAML question file into Postgres",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Postgres.URL == "" {
				return fmt.Errorf("postgres url not configured")
			}
			logger := newLogger(os.Stderr, cfg.Log)
			ctx := cmd.Context()

			src, err := questions.Load(args[0])
			if err != nil {
				return err
			}
			if setID != "" {
				src.ID = setID
			}

			db := postgres.OpenDB(cfg.Postgres.URL)
			defer db.Close()
			if _, err := postgres.Migrate(ctx, db); err != nil {
				return err
			}
			if err := postgres.NewImporter(db).Import(ctx, src); err != nil {
				return err
			}
			logger.Info("question set imported", "set_id", src.ID, "questions", len(src.Questions))

			// drop any cached copy so servers pick up the new content
			if cfg.Redis.Addr != "" {
				client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
				defer client.Close()
				if err := infraredis.NewQuestionSetRepository(client, nil, 0).Invalidate(ctx, src.ID); err != nil {
					logger.Warn("invalidate cached question set failed", "set_id", src.ID, "err", err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %s\n", src.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&setID, "id", "", "question set ID (defaults to the file name)")
	return cmd
}
