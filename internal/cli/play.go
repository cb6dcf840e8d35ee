package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"

	"quiz-engine/internal/config"
	"quiz-engine/internal/domain"
	"quiz-engine/internal/engine"
	"quiz-engine/internal/infra/memory"
	"quiz-engine/internal/infra/postgres"
	"quiz-engine/internal/questions"
	"quiz-engine/internal/tui"
)

// NewPlayCmd plays a quiz in the terminal.
func NewPlayCmd(configPath *string) *cobra.Command {
	var (
		setID     string
		questFile string
		noColor   bool
		strict    bool
	)
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a quiz in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			src, err := loadForPlay(cmd.Context(), cfg, setID, questFile)
			if err != nil {
				return err
			}

			var opts []engine.Option
			if strict || cfg.Quiz.StrictChoices {
				opts = append(opts, engine.WithStrictChoices())
			}
			model := tui.NewModel(engine.New(domain.NewQuestionSet(src), opts...), tui.Options{
				NoColor: noColor,
				Title:   "Quiz: " + src.ID,
			})
			_, err = tea.NewProgram(model, tea.WithContext(cmd.Context()), tea.WithOutput(cmd.OutOrStdout())).Run()
			return err
		},
	}
	cmd.Flags().StringVar(&setID, "set", "", "question set ID (defaults to quiz.default_set or the embedded set)")
	cmd.Flags().StringVar(&questFile, "questions", "", "play a JSON or YAML question file directly")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colors")
	cmd.Flags().BoolVar(&strict, "strict", false, "ignore answers that are not among the choices")
	return cmd
}

func loadForPlay(ctx context.Context, cfg config.Config, setID, path string) (domain.QuestionSource, error) {
	if path != "" {
		return questions.Load(path)
	}
	if setID == "" {
		setID = cfg.Quiz.DefaultSet
	}
	if setID == "" {
		setID = questions.DefaultSetID
	}

	var loader memory.QuestionSetLoader = memory.NewDirLoader(cfg.Quiz.QuestionsDir)
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return domain.QuestionSource{}, fmt.Errorf("connecting to postgres: %w", err)
		}
		defer pool.Close()
		loader = memory.ChainLoader{postgres.NewQuestionSetLoader(pool), loader}
	}
	src, err := loader.LoadQuestionSet(ctx, setID)
	if err != nil {
		return domain.QuestionSource{}, fmt.Errorf("question set %q: %w", setID, err)
	}
	return src, nil
}
