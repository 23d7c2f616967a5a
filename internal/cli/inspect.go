package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"portal-quiz-service/internal/quiz"
)

// NewInspectCmd normalizes a quiz content file and prints what a session would see.
func NewInspectCmd() *cobra.Command {
	var moduleID int
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Validate a quiz content file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			def, err := quiz.Normalize(data, moduleID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "title: %q\nmodule: %d\nduration: %s\nquestions: %d\n",
				def.Title, def.ModuleID, quiz.FormatClock(def.DurationSeconds), len(def.Questions))
			return nil
		},
	}
	cmd.Flags().IntVar(&moduleID, "module", 1, "module id to select from a modules file")
	return cmd
}
