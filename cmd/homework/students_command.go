package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"homework/internal/catalog"
	"homework/internal/roster"
)

type studentRow struct {
	Name    string      `json:"name"`
	Plan    roster.Plan `json:"plan"`
	Dir     string      `json:"dir"`
	Current int         `json:"current_images"`
	Past    int         `json:"past_images"`
}

func newStudentsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "students",
		Short: "List students and how many images each chapter pool holds",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			enum := catalog.NewEnumerator(cfg.Selection.Extensions, cfg.Selection.ExcludeMarker, ctx.ensureLogger())

			var list []studentRow
			for _, s := range roster.Collect(roster.Dirs(cfg)) {
				list = append(list, studentRow{
					Name:    s.Name,
					Plan:    s.Plan,
					Dir:     s.Dir,
					Current: len(enum.Images(filepath.Join(s.Dir, cfg.Selection.CurrentDir))),
					Past:    len(enum.Images(filepath.Join(s.Dir, cfg.Selection.PastDir))),
				})
			}

			if jsonOutput {
				return writeJSON(cmd, list)
			}
			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintf(out, "No students found under %s\n", cfg.Paths.BaseDir)
				return nil
			}
			rows := make([][]string, 0, len(list))
			for _, s := range list {
				targets := roster.TargetsFor(cfg, s.Plan)
				rows = append(rows, []string{
					s.Name,
					string(s.Plan),
					strconv.Itoa(s.Current),
					strconv.Itoa(s.Past),
					fmt.Sprintf("%d+%d", targets.Current, targets.Past),
					yesNo(targets.Question),
				})
			}
			fmt.Fprintln(out, renderTable(tableLayout{
				Headers: []string{"Student", "Plan", "Current", "Past", "Daily", "Question"},
				Rows:    rows,
				Aligns:  []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
			}))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output students as JSON")
	return cmd
}
