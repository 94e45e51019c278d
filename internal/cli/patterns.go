package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/flowlens/flowlens/internal/event"
	"github.com/flowlens/flowlens/internal/pattern"
	"github.com/flowlens/flowlens/internal/processor"
	"github.com/flowlens/flowlens/internal/store"
)

func init() {
	rootCmd.AddCommand(newPatternsCmd())
}

func newPatternsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "Mine and apply reusable interaction patterns",
		Long: `Extract parameterized patterns from recordings, list them, and
re-instantiate them against new parameter values.`,
	}
	cmd.AddCommand(newPatternsExtractCmd())
	cmd.AddCommand(newPatternsCommonCmd())
	cmd.AddCommand(newPatternsListCmd())
	cmd.AddCommand(newPatternsApplyCmd())
	return cmd
}

func newPatternsExtractCmd() *cobra.Command {
	var (
		input        string
		name         string
		parameterize bool
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract a pattern template from a recording",
		Long: `Extract a pattern template from a processed recording and store it.

With --parameterize, selectors, target text, and input values become
named slots that must be supplied when the pattern is applied.

Examples:
  flowlens patterns extract -i login.json --name login --parameterize
  flowlens patterns extract -i checkout.json --name checkout`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := loadRecording(input)
			if err != nil {
				return err
			}
			if name == "" {
				name = rec.Name
			}
			if name == "" {
				return fmt.Errorf("recording has no name; pass --name")
			}

			processed, _ := processor.Process(rec.Events, processor.DefaultOptions())
			t := pattern.BuildTemplate(name, processed, parameterize)

			return withStore(func(s *store.SQLiteStore) error {
				if err := s.SavePattern(context.Background(), t); err != nil {
					return err
				}
				fmt.Printf("Stored pattern %s (%s): %d event(s), %d parameter(s)\n",
					t.ID, t.Name, len(t.Events), len(t.Parameters))
				for _, def := range t.Parameters {
					fmt.Printf("  %s (%s)\n", def.Name, def.Type)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "recording JSON file (required)")
	cmd.Flags().StringVar(&name, "name", "", "pattern name (defaults to the recording's name)")
	cmd.Flags().BoolVar(&parameterize, "parameterize", false, "turn selectors, text, and values into parameter slots")
	cmd.MarkFlagRequired("input")

	return cmd
}

func newPatternsCommonCmd() *cobra.Command {
	var minOccurrences int

	cmd := &cobra.Command{
		Use:   "common <recording.json>...",
		Short: "Find patterns shared across multiple recordings",
		Long: `Group structurally equal events (same type and selector) across the
given recordings and print those occurring at least --min times.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var recordings []event.Recording
			for _, path := range args {
				rec, err := loadRecording(path)
				if err != nil {
					return err
				}
				recordings = append(recordings, rec)
			}

			common := pattern.ExtractCommonPatterns(recordings, minOccurrences)
			if len(common) == 0 {
				fmt.Println("No common patterns found.")
				return nil
			}
			for _, p := range common {
				fmt.Printf("%3dx %-10s %s\n", p.Occurrences, p.Type, p.Selector)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&minOccurrences, "min", 2, "minimum occurrence count")
	return cmd
}

func newPatternsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored pattern templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(s *store.SQLiteStore) error {
				patterns, err := s.ListPatterns(context.Background())
				if err != nil {
					return err
				}
				for _, t := range patterns {
					fmt.Printf("%-42s %-20s %d event(s), %d parameter(s)\n",
						t.ID, t.Name, len(t.Events), len(t.Parameters))
				}
				return nil
			})
		},
	}
}

func newPatternsApplyCmd() *cobra.Command {
	var params []string

	cmd := &cobra.Command{
		Use:   "apply <id>",
		Short: "Instantiate a stored pattern with parameter values",
		Long: `Instantiate a stored pattern template, substituting the given
parameters, and print the resulting events as JSON.

Examples:
  flowlens patterns apply ptn_abc123 -p selector_1=#email -p value_1=a@b.com`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values := make(map[string]any, len(params))
			for _, kv := range params {
				k, v, ok := strings.Cut(kv, "=")
				if !ok {
					return fmt.Errorf("invalid parameter %q, want key=value", kv)
				}
				values[k] = v
			}

			return withStore(func(s *store.SQLiteStore) error {
				t, err := s.GetPattern(context.Background(), args[0])
				if err != nil {
					return err
				}
				x := pattern.NewExtractor()
				x.RegisterTemplate(t)
				events, err := x.ApplyTemplate(t.ID, values)
				if err != nil {
					return err
				}
				return printJSON(events)
			})
		},
	}

	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "parameter value as key=value (repeatable)")
	return cmd
}
