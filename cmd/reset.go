package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/drillz/internal/engine"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset a learner's progress in a course",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := resolveUser(cmd)
		if err != nil {
			return err
		}
		e, err := setup(cmd, true)
		if err != nil {
			return err
		}
		defer e.Close()

		svc := e.engine(nil)
		courseID, err := courseArg(cmd, svc, userID)
		if err != nil {
			return err
		}
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			fmt.Printf("Reset progress of %s in course %d? [y/N] ", userID, courseID)
			var answer string
			_, _ = fmt.Scanln(&answer)
			if answer != "y" && answer != "Y" {
				fmt.Println("Aborted.")
				return nil
			}
		}
		if err := svc.Reset(cmd.Context(), userID, courseID); err != nil {
			return err
		}
		fmt.Println("Progress reset.")
		return nil
	},
}

func init() {
	resetCmd.Flags().Int("course", 0, "Course id (default: the active course)")
	resetCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
}

// courseArg returns --course, falling back to the learner's active course.
func courseArg(cmd *cobra.Command, svc *engine.Service, userID string) (int, error) {
	if id, _ := cmd.Flags().GetInt("course"); id > 0 {
		return id, nil
	}
	id, err := svc.ActiveCourse(cmd.Context(), userID)
	if errors.Is(err, engine.ErrNoCourse) {
		return 0, fmt.Errorf("no active course for %s: pass --course", userID)
	}
	return id, err
}
