package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/flowlens/flowlens/internal/store"
	"github.com/flowlens/flowlens/internal/template"
)

func init() {
	rootCmd.AddCommand(newTemplatesCmd())
}

func newTemplatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Manage code templates",
		Long: `List, export, import, and delete code templates.

Built-in templates ship with the binary; imported templates persist in
the database and shadow built-ins with the same id.`,
	}
	cmd.AddCommand(newTemplatesListCmd())
	cmd.AddCommand(newTemplatesExportCmd())
	cmd.AddCommand(newTemplatesImportCmd())
	cmd.AddCommand(newTemplatesDeleteCmd())
	return cmd
}

// loadEngine seeds a template engine with the built-ins plus every template
// persisted in the store.
func loadEngine(s *store.SQLiteStore) (*template.Engine, error) {
	engine := template.NewEngine()
	stored, err := s.ListTemplates(context.Background())
	if err != nil {
		return nil, err
	}
	for _, t := range stored {
		engine.Register(t)
	}
	return engine, nil
}

func newTemplatesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(s *store.SQLiteStore) error {
				engine, err := loadEngine(s)
				if err != nil {
					return err
				}
				for _, t := range engine.List() {
					target := t.Framework
					if t.Language != "" {
						target += "/" + t.Language
					}
					if target == "" {
						target = "any"
					}
					fmt.Printf("%-22s %-12s %-22s %s\n", t.ID, t.Category, target, t.Name)
				}
				return nil
			})
		},
	}
}

func newTemplatesExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Export a template as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(s *store.SQLiteStore) error {
				engine, err := loadEngine(s)
				if err != nil {
					return err
				}
				data, err := engine.ExportTemplate(args[0])
				if err != nil {
					return err
				}
				if output == "" {
					fmt.Println(string(data))
					return nil
				}
				if err := os.WriteFile(output, data, 0o644); err != nil {
					return fmt.Errorf("failed to write %s: %w", output, err)
				}
				fmt.Printf("Exported %s to %s\n", args[0], output)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "out", "o", "", "write to this file instead of stdout")
	return cmd
}

func newTemplatesImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import a template JSON file into the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read template: %w", err)
			}
			return withStore(func(s *store.SQLiteStore) error {
				engine := template.NewEngine()
				t, err := engine.ImportTemplate(raw)
				if err != nil {
					return err
				}
				if err := s.SaveTemplate(context.Background(), t); err != nil {
					return err
				}
				fmt.Printf("Imported template %s (%s)\n", t.ID, t.Name)
				return nil
			})
		},
	}
}

func newTemplatesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an imported template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(s *store.SQLiteStore) error {
				if err := s.DeleteTemplate(context.Background(), args[0]); err != nil {
					return err
				}
				fmt.Printf("Deleted template %s\n", args[0])
				return nil
			})
		},
	}
}
