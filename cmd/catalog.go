package cmd

import (
	"fmt"
	"strings"

	"github.com/mathmaster/mathmaster/internal/curriculum"
	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List grades, topics and sub-topics",
	RunE: func(cmd *cobra.Command, args []string) error {
		gradeFlag, _ := cmd.Flags().GetString("grade")

		grades := curriculum.Grades()
		if gradeFlag != "" {
			id, ok := curriculum.ParseGrade(gradeFlag)
			if !ok {
				return fmt.Errorf("unknown grade %q", gradeFlag)
			}
			g, _ := curriculum.GetGrade(id)
			grades = []curriculum.GradeInfo{g}
		}

		for i, g := range grades {
			if i > 0 {
				fmt.Println()
			}
			fmt.Printf("%s  %s\n", g.ID, g.Name)
			fmt.Println(strings.Repeat("─", 60))
			for _, t := range g.Topics {
				fmt.Printf("  %-28s  %s\n", t.ID, t.Name)
				for _, s := range t.Subtopics {
					fmt.Printf("    %-26s  %s\n", s.ID, s.Name)
				}
			}
		}
		return nil
	},
}

func init() {
	catalogCmd.Flags().String("grade", "", "Show one grade only (ID or name)")
}
