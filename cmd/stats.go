package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show a learner's course statistics",
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
		st, err := svc.Stats(cmd.Context(), userID, courseID)
		if err != nil {
			return err
		}

		p := st.Progress
		fmt.Printf("%s  (%s)\n", st.Course.Title, userID)
		fmt.Println(strings.Repeat("─", 48))
		fmt.Printf("Gems:      %d / %d\n", p.Gems, st.GemsLimit)
		fmt.Printf("Points:    %d\n", p.Points)
		fmt.Printf("Streak:    %d (longest %d, next milestone %d)\n", p.CurrentStreak, p.LongestStreak, st.NextMilestone)
		fmt.Printf("Drills:    %d of %d completed\n", st.DrillsDone, st.DrillsTotal)
		if st.Rank > 0 {
			fmt.Printf("Rank:      #%d\n", st.Rank)
		}
		if st.Subscribed {
			fmt.Println("Plan:      subscriber")
		}

		if len(st.Recent) > 0 {
			fmt.Println()
			fmt.Printf("%-16s  %-12s  %6s  %7s\n", "When", "Reason", "Gems", "Points")
			for _, r := range st.Recent {
				fmt.Printf("%-16s  %-12s  %+6d  %+7d\n", r.At, r.Reason, r.GemsDelta, r.PointsDelta)
			}
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().Int("course", 0, "Course id (default: the active course)")
}
