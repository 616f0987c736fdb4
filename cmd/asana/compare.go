package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ayusman/asana/internal/library"
	"github.com/ayusman/asana/internal/similarity"
	"github.com/ayusman/asana/internal/skeleton"
	"github.com/ayusman/asana/internal/store"
)

type compareOutput struct {
	PoseID string `json:"pose_id,omitempty"`
	similarity.Result
	Feedback similarity.Feedback `json:"feedback"`
}

func newCompareCommand(ctx *commandContext) *cobra.Command {
	var poseID string
	var referencePath string
	var threshold float64
	var maxSuggestions int
	var format string

	cmd := &cobra.Command{
		Use:   "compare <detected.json>",
		Short: "Score a recorded detection against a pose",
		Long: "Score a detected skeleton, stored as a JSON object keyed by keypoint name, " +
			"against a pose from the library or a reference file.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("threshold") {
				threshold = cfg.Training.DetectionThreshold
			}
			if !cmd.Flags().Changed("max-suggestions") {
				maxSuggestions = cfg.Training.MaxSuggestions
			}
			format, err = resolveFormat(cmd, format)
			if err != nil {
				return err
			}

			detected, err := readSkeleton(args[0])
			if err != nil {
				return err
			}

			var reference skeleton.Skeleton
			hint := similarity.HintFunc(nil)
			switch {
			case referencePath != "":
				if reference, err = readSkeleton(referencePath); err != nil {
					return err
				}
			case poseID != "":
				reference, hint, err = ctx.poseReference(poseID)
				if err != nil {
					return err
				}
			default:
				return errors.New("either --pose or --reference is required")
			}

			result := similarity.Compare(reference, detected, threshold)
			out := compareOutput{
				PoseID:   poseID,
				Result:   result,
				Feedback: similarity.Suggest(result.Keypoints, maxSuggestions, hint),
			}

			if format == formatJSON {
				return writeJSON(cmd, out)
			}
			renderCompare(cmd, out, threshold)
			return nil
		},
	}

	cmd.Flags().StringVarP(&poseID, "pose", "p", "", "Pose ID to compare against")
	cmd.Flags().StringVarP(&referencePath, "reference", "r", "", "Reference skeleton JSON file")
	cmd.Flags().Float64VarP(&threshold, "threshold", "t", 50, "Match threshold (0-100)")
	cmd.Flags().IntVarP(&maxSuggestions, "max-suggestions", "k", similarity.DefaultMaxSuggestions, "Maximum number of suggestions")
	cmd.Flags().StringVar(&format, "format", formatAuto, "Output format: auto, table or json")
	return cmd
}

// poseReference resolves a pose from the store, falling back to the catalog
// when the store cannot be opened.
func (c *commandContext) poseReference(id string) (skeleton.Skeleton, similarity.HintFunc, error) {
	var hint similarity.HintFunc
	if p, ok := library.Lookup(id); ok {
		hint = p.Hint
	}

	st, err := c.openStore()
	if err != nil {
		if p, ok := library.Lookup(id); ok {
			return p.Reference, hint, nil
		}
		return skeleton.Skeleton{}, nil, err
	}
	defer st.Close()

	if _, err := st.Poses().GetByID(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return skeleton.Skeleton{}, nil, fmt.Errorf("pose %q not found", id)
		}
		return skeleton.Skeleton{}, nil, err
	}
	ref, err := st.Poses().Reference(id)
	if err != nil {
		return skeleton.Skeleton{}, nil, fmt.Errorf("load reference for %q: %w", id, err)
	}
	if ref.Empty() {
		return skeleton.Skeleton{}, nil, fmt.Errorf("pose %q has no reference skeleton", id)
	}
	return ref, hint, nil
}

func readSkeleton(path string) (skeleton.Skeleton, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return skeleton.Skeleton{}, fmt.Errorf("read skeleton: %w", err)
	}
	var sk skeleton.Skeleton
	if err := json.Unmarshal(data, &sk); err != nil {
		return skeleton.Skeleton{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return sk, nil
}

func renderCompare(cmd *cobra.Command, out compareOutput, threshold float64) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Overall: %s (threshold %.0f, matched: %s)\n",
		formatPercent(out.Overall), threshold, yesNo(out.Matched))

	names := make([]skeleton.Name, 0, len(out.Keypoints))
	for name := range out.Keypoints {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := out.Keypoints[names[i]], out.Keypoints[names[j]]
		if a != b {
			return a < b
		}
		return names[i] < names[j]
	})

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		score := out.Keypoints[name]
		severity := ""
		if score < similarity.SuggestionThreshold {
			severity = string(similarity.SeverityFor(score))
		}
		rows = append(rows, []string{string(name), formatPercent(score), severity})
	}
	if len(rows) > 0 {
		fmt.Fprintln(w, renderTable([]string{"Keypoint", "Score", "Severity"}, rows, []columnAlignment{alignLeft, alignRight, alignLeft}))
	}

	for _, s := range out.Feedback.Suggestions {
		fmt.Fprintln(w, s.String())
	}
	if len(out.Feedback.Messages) > 0 {
		fmt.Fprintln(w, strings.Join(out.Feedback.Messages, "\n"))
	}
}
