package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/drillz/internal/content"
)

var importCmd = &cobra.Command{
	Use:   "import <bundle>",
	Short: "Import a course bundle (YAML or JSON)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := content.ParseFile(args[0])
		if err != nil {
			return err
		}
		if validateOnly, _ := cmd.Flags().GetBool("validate-only"); validateOnly {
			if err := b.Validate(); err != nil {
				return err
			}
			fmt.Printf("%s: ok (%d units)\n", args[0], len(b.Units))
			return nil
		}

		e, err := setup(cmd, true)
		if err != nil {
			return err
		}
		defer e.Close()

		id, err := content.Import(cmd.Context(), e.store.ContentRepo(), b)
		if err != nil {
			return err
		}
		e.log.Info("course imported", zap.Int("course_id", id), zap.String("title", b.Course.Title))
		fmt.Printf("Imported %q as course %d\n", b.Course.Title, id)
		return nil
	},
}

func init() {
	importCmd.Flags().Bool("validate-only", false, "Check the bundle without writing it")
}
