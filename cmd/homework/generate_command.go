package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"homework/internal/homework"
	"homework/internal/preflight"
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var (
		students      []string
		jsonOutput    bool
		skipPreflight bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate today's homework sheet for every student",
		Long: "Generate picks the least used screenshots for each student, writes one\n" +
			"JPEG sheet per student into the output directory, and skips students that\n" +
			"already have a sheet there.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			if !skipPreflight {
				if blocking := preflight.Blocking(preflight.RunAll(cfg)); len(blocking) > 0 {
					for _, r := range blocking {
						fmt.Fprintln(cmd.ErrOrStderr(), renderStatusLine(r.Name, statusError, r.Detail, shouldColorize(cmd.ErrOrStderr())))
					}
					return fmt.Errorf("preflight failed: %d check(s) blocking; run `homework doctor` for details", len(blocking))
				}
			}

			gen, err := homework.New(cfg,
				homework.WithLogger(ctx.ensureLogger()),
				homework.WithStudents(students...))
			if err != nil {
				return err
			}

			summary, runErr := gen.Run(cmd.Context())
			if errors.Is(runErr, homework.ErrLocked) {
				return runErr
			}

			if jsonOutput {
				if err := writeJSON(cmd, summary); err != nil {
					return err
				}
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), renderSummary(summary, shouldColorize(cmd.OutOrStdout())))
			}
			if runErr != nil {
				return fmt.Errorf("%d student(s) failed: %w", summary.Count(homework.OutcomeFailed), runErr)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&students, "student", "s", nil, "Only generate for these students (repeatable)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the run summary as JSON")
	cmd.Flags().BoolVar(&skipPreflight, "skip-preflight", false, "Skip directory readiness checks")
	return cmd
}

func renderSummary(summary homework.Summary, colorize bool) string {
	rows := make([][]string, 0, len(summary.Students))
	for _, r := range summary.Students {
		detail := r.Reason
		if r.Outcome == homework.OutcomeGenerated {
			detail = filepath.Base(r.Output)
		}
		rows = append(rows, []string{
			r.Student,
			string(r.Plan),
			paint(string(r.Outcome), outcomeColor(r.Outcome), colorize),
			r.Tag(),
			detail,
		})
	}
	footer := []string{
		"Total",
		"",
		fmt.Sprintf("%s generated, %s skipped, %s failed",
			strconv.Itoa(summary.Count(homework.OutcomeGenerated)),
			strconv.Itoa(summary.Count(homework.OutcomeSkipped)),
			strconv.Itoa(summary.Count(homework.OutcomeFailed))),
	}
	return renderTable(tableLayout{
		Title:   "Homework " + summary.Date.Format("2006-01-02"),
		Headers: []string{"Student", "Plan", "Outcome", "Contents", "Detail"},
		Rows:    rows,
		Footer:  footer,
	})
}

func outcomeColor(outcome homework.Outcome) string {
	switch outcome {
	case homework.OutcomeGenerated:
		return ansiGreen
	case homework.OutcomeSkipped:
		return ansiYellow
	default:
		return ansiRed
	}
}
