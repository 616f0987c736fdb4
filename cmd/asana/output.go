package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

const (
	formatAuto  = "auto"
	formatTable = "table"
	formatJSON  = "json"
)

// resolveFormat turns --format auto into table for terminals and json for
// pipes and files.
func resolveFormat(cmd *cobra.Command, format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", formatAuto:
		if f, ok := cmd.OutOrStdout().(*os.File); ok {
			if isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) {
				return formatTable, nil
			}
		}
		return formatJSON, nil
	case formatTable:
		return formatTable, nil
	case formatJSON:
		return formatJSON, nil
	default:
		return "", fmt.Errorf("unsupported format %q (want auto, table or json)", format)
	}
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
