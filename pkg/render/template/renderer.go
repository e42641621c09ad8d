package template

import (
	"io"
)

// TemplateRenderer is the engine contract renderers rely on. Names passed to
// RenderTemplate may omit the engine's file extension. When out is given the
// result is also written there.
type TemplateRenderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(content string, data any, out ...io.Writer) (string, error)
}
