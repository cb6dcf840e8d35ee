package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"quiz-engine/internal/domain"
	"quiz-engine/internal/questions"
)

// NewValidateCmd checks question files without loading them anywhere.
func NewValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>...",
		Short: "Validate JSON or YAML question files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			failed := 0
			for _, path := range args {
				src, err := questions.ParseFile(path)
				if err != nil {
					fmt.Fprintf(out, "%s: %v\n", path, err)
					failed++
					continue
				}
				if err := questions.Validate(src); err != nil {
					failed++
					var verr *questions.ValidationError
					if errors.As(err, &verr) {
						for _, issue := range verr.Issues {
							fmt.Fprintf(out, "%s: error: %s\n", path, issue)
						}
						continue
					}
					fmt.Fprintf(out, "%s: %v\n", path, err)
					continue
				}
				for _, issue := range questions.Warnings(src) {
					fmt.Fprintf(out, "%s: warning: %s\n", path, issue)
				}
				set := domain.NewQuestionSet(src)
				fmt.Fprintf(out, "%s: ok (%d main, bonus: %t)\n", path, len(set.Main), set.HasBonus())
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files invalid", failed, len(args))
			}
			return nil
		},
	}
}
