// Package template defines the template engine seam used by control and form
// renderers. The gotemplate sub-package provides the pongo2 implementation.
package template
