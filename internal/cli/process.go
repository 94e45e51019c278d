package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/flowlens/flowlens/internal/event"
	"github.com/flowlens/flowlens/internal/grouper"
	"github.com/flowlens/flowlens/internal/processor"
)

func init() {
	rootCmd.AddCommand(newProcessCmd())
}

func newProcessCmd() *cobra.Command {
	var (
		input      string
		output     string
		debounceMs int64
		showGroups bool
	)

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Process a recording and report the applied optimizations",
		Long: `Run the dedupe, coalesce, and drop-transient passes over a recording
and report what changed. With --out, the processed recording is written
back as JSON; with --groups, the resulting action groups are printed.

Examples:
  flowlens process -i recording.json
  flowlens process -i recording.json -o processed.json --groups`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := loadRecording(input)
			if err != nil {
				return err
			}

			opts := processor.DefaultOptions()
			if debounceMs > 0 {
				opts.DebounceWindowMs = debounceMs
			}
			processed, result := processor.Process(rec.Events, opts)

			fmt.Printf("Recording %q: %d event(s) in, %d out\n", rec.Name, result.OriginalCount, result.ProcessedCount)
			for _, opt := range result.Applied {
				fmt.Printf("  %s: removed %d\n", opt.Kind, opt.Removed)
			}

			if showGroups {
				for _, g := range grouper.Group(processed) {
					fmt.Printf("  group %s [%s]: %d event(s): %s\n", g.ID, g.ActionType, len(g.Events), g.Name)
				}
			}

			if output == "" {
				return nil
			}
			out := event.Recording{
				Name:      rec.Name,
				CreatedAt: rec.CreatedAt,
				StartURL:  rec.StartURL,
				Events:    processed,
			}
			raw, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal processed recording: %w", err)
			}
			if err := os.WriteFile(output, raw, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			fmt.Printf("Wrote %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "recording JSON file (required)")
	cmd.Flags().StringVarP(&output, "out", "o", "", "write the processed recording to this file")
	cmd.Flags().Int64Var(&debounceMs, "debounce-ms", 0, "override the dedupe/coalesce window")
	cmd.Flags().BoolVar(&showGroups, "groups", false, "print the resulting action groups")
	cmd.MarkFlagRequired("input")

	return cmd
}
