// store.go — Persistence contract for templates and mined patterns.
package store

import (
	"context"

	"github.com/flowlens/flowlens/internal/pattern"
	"github.com/flowlens/flowlens/internal/template"
)

// Store defines the persistence operations for shareable artifacts: code
// templates and mined pattern templates.
type Store interface {
	// Code template operations
	SaveTemplate(ctx context.Context, t template.Template) error
	GetTemplate(ctx context.Context, id string) (template.Template, error)
	ListTemplates(ctx context.Context) ([]template.Template, error)
	DeleteTemplate(ctx context.Context, id string) error

	// Pattern template operations
	SavePattern(ctx context.Context, t pattern.Template) error
	GetPattern(ctx context.Context, id string) (pattern.Template, error)
	ListPatterns(ctx context.Context) ([]pattern.Template, error)
	DeletePattern(ctx context.Context, id string) error

	// Lifecycle
	Close() error
}
