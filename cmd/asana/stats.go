package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayusman/asana/internal/store"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	var format string
	var limit int

	cmd := &cobra.Command{
		Use:   "stats [session-id]",
		Short: "Show saved sessions and per-pose progress",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := resolveFormat(cmd, format)
			if err != nil {
				return err
			}

			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			if len(args) == 1 {
				return showSession(cmd, st, args[0], format)
			}

			sessions, err := st.Sessions().List(limit)
			if err != nil {
				return fmt.Errorf("list sessions: %w", err)
			}
			perf, err := st.Performance().List()
			if err != nil {
				return fmt.Errorf("list performance: %w", err)
			}

			if format == formatJSON {
				return writeJSON(cmd, map[string]any{"sessions": sessions, "poses": perf})
			}

			w := cmd.OutOrStdout()
			if len(sessions) == 0 {
				fmt.Fprintln(w, "No sessions recorded yet")
				return nil
			}

			rows := make([][]string, 0, len(sessions))
			for _, s := range sessions {
				rows = append(rows, []string{
					s.ID,
					s.StartedAt.Local().Format("2006-01-02 15:04"),
					s.Duration().Round(time.Second).String(),
					strconv.Itoa(s.Frames),
					formatPercent(s.AverageAccuracy),
					strconv.Itoa(s.Completions),
					s.BestPose,
				})
			}
			fmt.Fprintln(w, renderTable(
				[]string{"Session", "Started", "Duration", "Frames", "Average", "Holds", "Best pose"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft},
			))

			rows = rows[:0]
			for _, p := range perf {
				rows = append(rows, []string{
					p.PoseID,
					strconv.Itoa(p.Attempts),
					formatPercent(p.AverageAccuracy),
					formatPercent(p.BestAccuracy),
					strconv.Itoa(p.Completions),
				})
			}
			if len(rows) > 0 {
				fmt.Fprintln(w, renderTable(
					[]string{"Pose", "Frames", "Average", "Best", "Holds"},
					rows,
					[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight},
				))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", formatAuto, "Output format: auto, table or json")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of recent sessions to show")
	return cmd
}

func showSession(cmd *cobra.Command, st *store.Store, id, format string) error {
	s, err := st.Sessions().Get(id)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("session %q not found", id)
	}
	if err != nil {
		return fmt.Errorf("get session: %w", err)
	}

	if format == formatJSON {
		return writeJSON(cmd, s)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Session %s\n", s.ID)
	fmt.Fprintf(w, "Started:  %s\n", s.StartedAt.Local().Format(time.RFC1123))
	fmt.Fprintf(w, "Duration: %s\n", s.Duration().Round(time.Second))
	fmt.Fprintf(w, "Frames:   %d (average %s)\n", s.Frames, formatPercent(s.AverageAccuracy))
	fmt.Fprintf(w, "Holds:    %d\n", s.Completions)

	rows := make([][]string, 0, len(s.Poses))
	for _, p := range s.Poses {
		rows = append(rows, []string{
			p.PoseID,
			strconv.Itoa(p.Frames),
			formatPercent(p.AverageAccuracy),
			formatPercent(p.BestAccuracy),
			strconv.Itoa(p.Completions),
		})
	}
	if len(rows) > 0 {
		fmt.Fprintln(w, renderTable(
			[]string{"Pose", "Frames", "Average", "Best", "Holds"},
			rows,
			[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight},
		))
	}
	return nil
}
