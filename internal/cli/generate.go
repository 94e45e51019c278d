package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/flowlens/flowlens/internal/generator"
	"github.com/flowlens/flowlens/internal/grouper"
	"github.com/flowlens/flowlens/internal/processor"
	"github.com/flowlens/flowlens/internal/template"
)

func init() {
	rootCmd.AddCommand(newGenerateCmd())
}

func newGenerateCmd() *cobra.Command {
	var (
		input       string
		framework   string
		language    string
		outDir      string
		testName    string
		baseURL     string
		pageObjects bool
		noComments  bool
		noAssert    bool
		noSetup     bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate test code from a recording",
		Long: `Generate test files for a target framework from a recording JSON file.

The recording is processed (dedupe, coalesce, drop transient), grouped
into semantic actions, and rendered as framework-specific test code.

Examples:
  flowlens generate -i recording.json -f playwright -o ./tests
  flowlens generate -i recording.json -f selenium -l python --page-objects
  flowlens generate -i recording.json -f cypress --test-name "checkout flow"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := loadRecording(input)
			if err != nil {
				return err
			}

			processed, result := processor.Process(rec.Events, processor.DefaultOptions())
			groups := grouper.Group(processed)

			g, err := generator.New(framework, language, template.NewEngine())
			if err != nil {
				return err
			}

			cfg := generator.DefaultConfig(g.Framework(), g.Language())
			cfg.TestName = testName
			cfg.BaseURL = baseURL
			cfg.PageObjectModel = pageObjects
			cfg.IncludeComments = !noComments
			cfg.IncludeAssertions = !noAssert
			cfg.IncludeSetup = !noSetup
			if cfg.TestName == "" && rec.Name != "" {
				cfg.TestName = rec.Name
			}
			if cfg.BaseURL == "" {
				cfg.BaseURL = rec.StartURL
			}

			files, err := generator.Emit(g, groups, cfg)
			if err != nil {
				return err
			}

			fmt.Printf("Processed %d events into %d (%s), %d group(s):\n",
				result.OriginalCount, result.ProcessedCount, summarize(result), len(groups))
			return writeGeneratedFiles(outDir, files)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "recording JSON file (required)")
	cmd.Flags().StringVarP(&framework, "framework", "f", "playwright", "target framework: "+strings.Join(generator.Frameworks(), ", "))
	cmd.Flags().StringVarP(&language, "language", "l", "", "target language (defaults to the framework's language)")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	cmd.Flags().StringVar(&testName, "test-name", "", "test name (defaults to the recording's name)")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "base URL for setup navigation")
	cmd.Flags().BoolVar(&pageObjects, "page-objects", false, "emit page object classes")
	cmd.Flags().BoolVar(&noComments, "no-comments", false, "omit comments from generated code")
	cmd.Flags().BoolVar(&noAssert, "no-assertions", false, "omit recorded assertions")
	cmd.Flags().BoolVar(&noSetup, "no-setup", false, "omit setup/teardown scaffolding")
	cmd.MarkFlagRequired("input")

	return cmd
}

// summarize renders the applied optimizations as "dedupe:1 coalesce:2".
func summarize(result processor.Result) string {
	if len(result.Applied) == 0 {
		return "no optimizations"
	}
	parts := make([]string, 0, len(result.Applied))
	for _, opt := range result.Applied {
		parts = append(parts, fmt.Sprintf("%s:%d", opt.Kind, opt.Removed))
	}
	return strings.Join(parts, " ")
}
