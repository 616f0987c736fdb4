package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

type poseRow struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	SanskritName string `json:"sanskrit_name,omitempty"`
	Category     string `json:"category,omitempty"`
	Difficulty   int    `json:"difficulty"`
	Builtin      bool   `json:"builtin"`
	Samples      int    `json:"samples"`
	Slot         int    `json:"slot"`
	Active       bool   `json:"active"`
}

func newPosesCommand(ctx *commandContext) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "poses",
		Short: "List poses and the training sequence",
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

			poses, err := st.Poses().List()
			if err != nil {
				return fmt.Errorf("list poses: %w", err)
			}
			slots, err := st.Slots().List()
			if err != nil {
				return fmt.Errorf("list slots: %w", err)
			}

			slotOf := make(map[string]int, len(slots))
			activeOf := make(map[string]bool, len(slots))
			for i, s := range slots {
				if _, seen := slotOf[s.PoseID]; !seen {
					slotOf[s.PoseID] = i + 1
				}
				activeOf[s.PoseID] = activeOf[s.PoseID] || s.Active
			}

			out := make([]poseRow, 0, len(poses))
			for _, p := range poses {
				out = append(out, poseRow{
					ID:           p.ID,
					Name:         p.Name,
					SanskritName: p.SanskritName,
					Category:     p.Category,
					Difficulty:   p.Difficulty,
					Builtin:      p.Builtin,
					Samples:      p.Samples,
					Slot:         slotOf[p.ID],
					Active:       activeOf[p.ID],
				})
			}

			if format == formatJSON {
				return writeJSON(cmd, map[string]any{"poses": out})
			}

			rows := make([][]string, 0, len(out))
			for _, p := range out {
				slot := "-"
				if p.Slot > 0 {
					slot = strconv.Itoa(p.Slot)
				}
				rows = append(rows, []string{
					p.ID, p.Name, p.SanskritName, p.Category,
					strconv.Itoa(p.Difficulty), slot, yesNo(p.Active),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Name", "Sanskrit", "Category", "Level", "Slot", "Active"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", formatAuto, "Output format: auto, table or json")
	return cmd
}
