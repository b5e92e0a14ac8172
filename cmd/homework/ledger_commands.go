package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"

	"github.com/spf13/cobra"

	"homework/internal/ledger"
)

func newLedgerCommand(ctx *commandContext) *cobra.Command {
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect or reset a folder's usage ledger",
	}
	ledgerCmd.AddCommand(newLedgerShowCommand(ctx))
	ledgerCmd.AddCommand(newLedgerResetCommand(ctx))
	return ledgerCmd
}

func newLedgerShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <folder>",
		Short: "Show usage counts for a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store := ledger.NewStore(cfg.Selection.LedgerFile, ctx.ensureLogger())
			l, err := store.Read(args[0])
			switch {
			case errors.Is(err, fs.ErrNotExist):
				l = ledger.New(args[0])
			case err != nil:
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, l.Counts())
			}
			out := cmd.OutOrStdout()
			entries := l.Entries()
			if len(entries) == 0 {
				fmt.Fprintf(out, "No usage recorded in %s\n", store.Path(args[0]))
				return nil
			}
			rows := make([][]string, 0, len(entries))
			total := 0
			for _, e := range entries {
				rows = append(rows, []string{e.Name, strconv.Itoa(e.Count)})
				total += e.Count
			}
			fmt.Fprintln(out, renderTable(tableLayout{
				Title:   store.Path(args[0]),
				Headers: []string{"Image", "Uses"},
				Rows:    rows,
				Aligns:  []columnAlignment{alignLeft, alignRight},
				Footer:  []string{"Total", strconv.Itoa(total)},
			}))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output counts as JSON")
	return cmd
}

func newLedgerResetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset <folder>",
		Short: "Set every usage count in a folder back to zero",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store := ledger.NewStore(cfg.Selection.LedgerFile, ctx.ensureLogger())
			l := store.Load(args[0])
			l.Reset()
			if err := store.Save(l); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reset %d entries in %s\n", l.Len(), store.Path(args[0]))
			return nil
		},
	}
}
