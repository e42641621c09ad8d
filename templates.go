package formfields

import (
	"io/fs"

	"github.com/goliatone/go-formfields/pkg/controls"
	"github.com/goliatone/go-formfields/pkg/renderers/vanilla"
)

// EmbeddedTemplates exposes the built-in form layout templates so callers can
// reuse or extend them without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	return vanilla.TemplatesFS()
}

// ControlTemplates exposes the built-in control templates.
func ControlTemplates() fs.FS {
	return controls.TemplatesFS()
}

// AssetsFS exposes the stylesheet and scripts used by the rendered forms.
//
// Typical mount:
//
//	mux.Handle("/assets/formfields/",
//	  http.StripPrefix("/assets/formfields/",
//	    http.FileServerFS(formfields.AssetsFS()),
//	  ),
//	)
func AssetsFS() fs.FS {
	return vanilla.AssetsFS()
}
