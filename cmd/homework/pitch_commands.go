package main

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/text/unicode/norm"

	"homework/internal/catalog"
	"homework/internal/config"
	"homework/internal/pitching"
	"homework/internal/roster"
)

func newPitchCommand(ctx *commandContext) *cobra.Command {
	pitchCmd := &cobra.Command{
		Use:   "pitch",
		Short: "Record and review screenshot drill results",
	}
	pitchCmd.AddCommand(newPitchRecordCommand(ctx))
	pitchCmd.AddCommand(newPitchUndoCommand(ctx))
	pitchCmd.AddCommand(newPitchStatsCommand(ctx))
	pitchCmd.AddCommand(newPitchPlaylistCommand(ctx))
	return pitchCmd
}

func (c *commandContext) withPitching(fn func(*pitching.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := pitching.Open(cfg, c.ensureLogger())
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

// imageKeyArg accepts either an existing screenshot path or a chapter/file key.
func imageKeyArg(arg string) string {
	if info, err := os.Stat(arg); err == nil && !info.IsDir() {
		return pitching.ImageKey(arg)
	}
	return norm.NFC.String(strings.TrimSpace(arg))
}

func newPitchRecordCommand(ctx *commandContext) *cobra.Command {
	var session string

	cmd := &cobra.Command{
		Use:   "record <student> <image> <pass|fail>",
		Short: "Record one drill attempt",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := pitching.ParseResult(args[2])
			if err != nil {
				return err
			}
			return ctx.withPitching(func(store *pitching.Store) error {
				stat, err := store.Record(cmd.Context(), args[0], imageKeyArg(args[1]), result, session)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s (average %s, %d attempts)\n",
					stat.Student, stat.ImageKey, result, formatAverage(stat.BattingAverage), stat.TotalAttempts)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&session, "session", "", "Session id shared by the attempts of one drill")
	return cmd
}

func newPitchUndoCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "undo <student> <image>",
		Short: "Remove the most recent attempt for an image",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withPitching(func(store *pitching.Store) error {
				stat, err := store.Rollback(cmd.Context(), args[0], imageKeyArg(args[1]))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s: undone (average %s, %d attempts)\n",
					stat.Student, stat.ImageKey, formatAverage(stat.BattingAverage), stat.TotalAttempts)
				return nil
			})
		},
	}
}

func newPitchStatsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats <student>",
		Short: "Show batting averages per image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withPitching(func(store *pitching.Store) error {
				stats, err := store.Stats(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, stats)
				}
				out := cmd.OutOrStdout()
				if len(stats) == 0 {
					fmt.Fprintf(out, "No drill history for %s\n", args[0])
					return nil
				}
				colorize := shouldColorize(out)
				rows := make([][]string, 0, len(stats))
				for _, s := range stats {
					lastPlayed := "-"
					if !s.LastPlayed.IsZero() {
						lastPlayed = humanize.Time(s.LastPlayed)
					}
					rows = append(rows, []string{
						s.ImageKey,
						strconv.Itoa(s.TotalAttempts),
						recentMarks(s.Recent),
						paint(formatAverage(s.BattingAverage), gradeColor(s.Grade()), colorize),
						lastPlayed,
					})
				}
				fmt.Fprintln(out, renderTable(tableLayout{
					Title:   args[0],
					Headers: []string{"Image", "Attempts", "Recent", "Average", "Last played"},
					Rows:    rows,
					Aligns:  []columnAlignment{alignLeft, alignRight, alignLeft, alignRight, alignLeft},
				}))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output stats as JSON")
	return cmd
}

type playlistEntry struct {
	Key  string `json:"key"`
	Path string `json:"path"`
}

func newPitchPlaylistCommand(ctx *commandContext) *cobra.Command {
	var (
		planFlag   string
		seed       uint64
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "playlist <student> [chapter...]",
		Short: "Print a shuffled drill order for a student's chapters",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			var plan roster.Plan
			if planFlag != "" {
				if plan, err = roster.ParsePlan(planFlag); err != nil {
					return err
				}
			}
			student, ok := roster.Find(roster.Collect(roster.Dirs(cfg)), args[0], plan)
			if !ok {
				return fmt.Errorf("student %q not found", args[0])
			}

			enum := catalog.NewEnumerator(cfg.Selection.Extensions, cfg.Selection.ExcludeMarker, ctx.ensureLogger())
			paths := drillImages(cfg, enum, student, args[1:])
			if len(paths) == 0 {
				return fmt.Errorf("no images found for %s", student.Name)
			}

			var rnd *rand.Rand
			if cmd.Flags().Changed("seed") {
				rnd = rand.New(rand.NewPCG(seed, seed))
			}
			order := pitching.Playlist(paths, rnd)

			entries := make([]playlistEntry, 0, len(order))
			for _, p := range order {
				entries = append(entries, playlistEntry{Key: pitching.ImageKey(p), Path: p})
			}
			if jsonOutput {
				return writeJSON(cmd, entries)
			}
			out := cmd.OutOrStdout()
			for i, e := range entries {
				fmt.Fprintf(out, "%3d  %s\t%s\n", i+1, e.Key, e.Path)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&planFlag, "plan", "", "Disambiguate a student present in both plans (free or paid)")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Shuffle seed for a reproducible order")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the playlist as JSON")
	return cmd
}

// drillImages gathers the student's current and past chapter images,
// optionally limited to the named chapter folders.
func drillImages(cfg *config.Config, enum *catalog.Enumerator, student roster.Student, chapters []string) []string {
	wanted := make(map[string]struct{}, len(chapters))
	for _, ch := range chapters {
		wanted[norm.NFC.String(strings.TrimSpace(ch))] = struct{}{}
	}
	var paths []string
	for _, pool := range []string{cfg.Selection.CurrentDir, cfg.Selection.PastDir} {
		for _, p := range enum.Images(filepath.Join(student.Dir, pool)) {
			if len(wanted) > 0 {
				if _, ok := wanted[catalog.ChapterLabel(p)]; !ok {
					continue
				}
			}
			paths = append(paths, p)
		}
	}
	return paths
}

func recentMarks(results []pitching.Result) string {
	var b strings.Builder
	for _, r := range results {
		if r == pitching.ResultPass {
			b.WriteByte('O')
		} else {
			b.WriteByte('X')
		}
	}
	if b.Len() == 0 {
		return "-"
	}
	return b.String()
}

func formatAverage(avg float64) string {
	return strconv.Itoa(int(avg*100+0.5)) + "%"
}
