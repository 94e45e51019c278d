package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/flowlens/flowlens/internal/event"
	"github.com/flowlens/flowlens/internal/generator"
	"github.com/flowlens/flowlens/internal/store"
)

// withStore opens the database, executes the function, and handles cleanup.
func withStore(fn func(*store.SQLiteStore) error) error {
	s, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer s.Close()

	return fn(s)
}

// loadRecording reads a recording JSON file.
func loadRecording(path string) (event.Recording, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return event.Recording{}, fmt.Errorf("failed to read recording: %w", err)
	}
	var rec event.Recording
	if err := json.Unmarshal(raw, &rec); err != nil {
		return event.Recording{}, fmt.Errorf("failed to parse recording %s: %w", path, err)
	}
	return rec, nil
}

// writeGeneratedFiles writes emitted artifacts under outDir, creating
// subdirectories as needed.
func writeGeneratedFiles(outDir string, files []generator.GeneratedTestFile) error {
	for _, f := range files {
		path := filepath.Join(outDir, filepath.FromSlash(f.Filename))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, []byte(f.Content), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		fmt.Printf("  %s (%s, %d bytes)\n", path, f.Type, len(f.Content))
	}
	return nil
}

// printJSON writes an indented JSON rendering of v to stdout.
func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
