package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"homework/internal/catalog"
	"homework/internal/ledger"
	"homework/internal/selector"
)

func newSelectCommand(ctx *commandContext) *cobra.Command {
	var (
		count      int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "select <folder | file...>",
		Short: "Pick the least used images and record the picks",
		Long: "Select runs the fair selector over a folder tree (or an explicit list of\n" +
			"files), prints the picks, and bumps their usage counts in each folder's\n" +
			"ledger. Folders containing the exclude marker are skipped.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := ctx.ensureLogger()

			enum := catalog.NewEnumerator(cfg.Selection.Extensions, cfg.Selection.ExcludeMarker, logger)
			candidates, err := expandCandidates(enum, args)
			if err != nil {
				return err
			}

			sel := selector.New(ledger.NewStore(cfg.Selection.LedgerFile, logger), selector.WithLogger(logger))
			result, selErr := sel.Select(cmd.Context(), candidates, count)

			if jsonOutput {
				if err := writeJSON(cmd, result); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				if len(result.Picked) == 0 {
					fmt.Fprintln(out, "No images selected")
				} else {
					rows := make([][]string, 0, len(result.Picked))
					for i, p := range result.Picked {
						rows = append(rows, []string{strconv.Itoa(i + 1), catalog.ChapterLabel(p.Path), p.Name, strconv.Itoa(p.Count)})
					}
					fmt.Fprintln(out, renderTable(tableLayout{
						Headers: []string{"#", "Folder", "Image", "Uses"},
						Rows:    rows,
						Aligns:  []columnAlignment{alignRight, alignLeft, alignLeft, alignRight},
					}))
				}
			}
			return selErr
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 1, "Number of images to pick")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output picks as JSON")
	return cmd
}

// expandCandidates turns directory arguments into their image files. Every
// path comes back absolute so one file named two ways is still one candidate.
func expandCandidates(enum *catalog.Enumerator, args []string) ([]string, error) {
	var candidates []string
	for _, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, fmt.Errorf("candidate %s: %w", arg, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("candidate %s: %w", arg, err)
		}
		if info.IsDir() {
			candidates = append(candidates, enum.Images(abs)...)
			continue
		}
		candidates = append(candidates, abs)
	}
	return candidates, nil
}
