package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"homework/internal/config"
	"homework/internal/roster"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Create, locate, and check the configuration file",
	}
	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigPathCommand(ctx))
	configCmd.AddCommand(newConfigValidateCommand(ctx))
	return configCmd
}

// initTarget resolves where `config init` writes: the --path value with ~
// expanded, or the per-user default location.
func initTarget(flagValue string) (string, error) {
	if value := strings.TrimSpace(flagValue); value != "" {
		target, err := config.ExpandPath(value)
		if err != nil {
			return "", fmt.Errorf("resolve config path: %w", err)
		}
		return target, nil
	}
	target, err := config.DefaultConfigPath()
	if err != nil {
		return "", fmt.Errorf("determine default config path: %w", err)
	}
	return target, nil
}

func newConfigInitCommand() *cobra.Command {
	var (
		targetPath string
		overwrite  bool
	)

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a commented sample configuration",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := initTarget(targetPath)
			if err != nil {
				return err
			}
			switch _, err := os.Lstat(target); {
			case err == nil && !overwrite:
				return fmt.Errorf("%s already exists; pass --overwrite to replace it", target)
			case err != nil && !errors.Is(err, fs.ErrNotExist):
				return fmt.Errorf("inspect %s: %w", target, err)
			}
			if err := config.CreateSample(target); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Next: set base_dir (or HOMEWORK_BASE_DIR), then run `homework doctor`.")
			return nil
		},
	}
	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Where to write the file (default ~/.config/homework/config.toml)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")
	return cmd
}

func newConfigPathCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file in use",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := ctx.ensureConfig(); err != nil {
				return err
			}
			suffix := ""
			if !ctx.configSeen {
				suffix = " (not found, defaults in use)"
			}
			fmt.Fprintln(cmd.OutOrStdout(), ctx.configPath+suffix)
			return nil
		},
	}
}

type configSetting struct {
	Section string `json:"section"`
	Key     string `json:"key"`
	Value   string `json:"value"`
}

// configSettings lists the values an operator most often needs to confirm.
func configSettings(cfg *config.Config) []configSetting {
	free := roster.TargetsFor(cfg, roster.PlanFree)
	paid := roster.TargetsFor(cfg, roster.PlanPaid)
	fontPath := cfg.Render.FontPath
	if fontPath == "" {
		fontPath = "built-in (ASCII only)"
	}
	return []configSetting{
		{"paths", "base_dir", cfg.Paths.BaseDir},
		{"paths", "output_dir", cfg.Paths.OutputDir},
		{"paths", "state_dir", cfg.Paths.StateDir},
		{"plans", "free", fmt.Sprintf("%s: %d current + %d past", cfg.PlanDir(cfg.Plans.FreeDir), free.Current, free.Past)},
		{"plans", "paid", fmt.Sprintf("%s: %d current + %d past, question %s", cfg.PlanDir(cfg.Plans.PaidDir), paid.Current, paid.Past, yesNo(paid.Question))},
		{"selection", "ledger_file", cfg.Selection.LedgerFile},
		{"selection", "exclude_marker", cfg.Selection.ExcludeMarker},
		{"questions", "bank", cfg.QuestionsPath()},
		{"pitching", "window", strconv.Itoa(cfg.Pitching.Window)},
		{"render", "font_path", fontPath},
	}
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Load the configuration and show the resolved settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			settings := configSettings(cfg)
			if jsonOutput {
				return writeJSON(cmd, settings)
			}

			rows := make([][]string, 0, len(settings))
			for _, s := range settings {
				rows = append(rows, []string{s.Section, s.Key, s.Value})
			}
			title := ctx.configPath
			if !ctx.configSeen {
				title += " (defaults)"
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(tableLayout{
				Title:   title,
				Headers: []string{"Section", "Key", "Value"},
				Rows:    rows,
			}))
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the resolved settings as JSON")
	return cmd
}
