package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var courseCmd = &cobra.Command{
	Use:   "course",
	Short: "Inspect imported courses",
}

var courseListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all courses",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd, true)
		if err != nil {
			return err
		}
		defer e.Close()

		courses, err := e.store.ContentRepo().ListCourses(cmd.Context())
		if err != nil {
			return fmt.Errorf("list courses: %w", err)
		}
		if len(courses) == 0 {
			fmt.Println("No courses imported. Use 'drillz import <bundle>'.")
			return nil
		}
		fmt.Printf("%-5s  %-32s  %s\n", "ID", "Title", "Description")
		fmt.Println(strings.Repeat("─", 80))
		for _, c := range courses {
			fmt.Printf("%-5d  %-32s  %s\n", c.ID, truncate(c.Title, 32), truncate(c.Description, 40))
		}
		return nil
	},
}

var courseShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show the units and drills of a course",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid course id %q: %w", args[0], err)
		}
		e, err := setup(cmd, true)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		repo := e.store.ContentRepo()
		c, err := repo.GetCourse(ctx, id)
		if err != nil {
			return fmt.Errorf("load course: %w", err)
		}
		units, err := repo.Outline(ctx, id)
		if err != nil {
			return fmt.Errorf("load outline: %w", err)
		}

		fmt.Printf("%s\n", c.Title)
		if c.Description != "" {
			fmt.Printf("%s\n", c.Description)
		}
		for _, u := range units {
			fmt.Println()
			fmt.Printf("Unit %d: %s\n", u.Order, u.Title)
			for _, d := range u.Drills {
				timed := ""
				if d.IsTimed {
					timed = "  (timed)"
				}
				fmt.Printf("  %3d  %-36s %3d questions%s\n", d.ID, truncate(d.Title, 36), d.QuestionCount, timed)
			}
		}
		return nil
	},
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func init() {
	courseCmd.AddCommand(courseListCmd)
	courseCmd.AddCommand(courseShowCmd)
}
