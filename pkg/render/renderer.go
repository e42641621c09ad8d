package render

import (
	"context"
)

// Renderer converts a FormView into a byte representation (HTML, JSON,
// terminal prompts).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, form FormView, options RenderOptions) ([]byte, error)
}
