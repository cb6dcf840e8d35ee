package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"quiz-engine/internal/config"
	"quiz-engine/internal/domain"
	"quiz-engine/internal/infra/memory"
	"quiz-engine/internal/infra/postgres"
	infraredis "quiz-engine/internal/infra/redis"
)

// NewSetsCmd groups the question set maintenance commands.
func NewSetsCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sets",
		Short: "List or delete stored question sets",
	}
	cmd.AddCommand(newSetsListCmd(configPath), newSetsDeleteCmd(configPath))
	return cmd
}

func newSetsListCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List question sets from Postgres and the questions directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if cfg.Postgres.URL != "" {
				db := postgres.OpenDB(cfg.Postgres.URL)
				defer db.Close()
				ids, err := postgres.NewImporter(db).List(cmd.Context())
				if err != nil {
					return err
				}
				for _, id := range ids {
					fmt.Fprintf(out, "%s\tpostgres\n", id)
				}
			}

			ids, err := memory.NewDirLoader(cfg.Quiz.QuestionsDir).List()
			if err != nil {
				return fmt.Errorf("list %s: %w", cfg.Quiz.QuestionsDir, err)
			}
			for _, id := range ids {
				fmt.Fprintf(out, "%s\tfiles\n", id)
			}
			return nil
		},
	}
}

func newSetsDeleteCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <set-id>",
		Short: "Delete a question set from Postgres",
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
			setID := args[0]

			db := postgres.OpenDB(cfg.Postgres.URL)
			defer db.Close()
			if err := postgres.NewImporter(db).Delete(ctx, setID); err != nil {
				if errors.Is(err, domain.ErrQuestionSetNotFound) {
					return fmt.Errorf("question set %q: %w", setID, err)
				}
				return err
			}
			logger.Info("question set deleted", "set_id", setID)

			if cfg.Redis.Addr != "" {
				client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
				defer client.Close()
				if err := infraredis.NewQuestionSetRepository(client, nil, 0).Invalidate(ctx, setID); err != nil {
					logger.Warn("invalidate cached question set failed", "set_id", setID, "err", err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", setID)
			return nil
		},
	}
}
