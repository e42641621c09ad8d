package vanilla

import (
	"embed"
	"io/fs"
)

var (
	//go:embed templates/*.tmpl
	templateFiles embed.FS
	//go:embed assets/*
	assetFiles embed.FS

	templatesRoot = mustSub(templateFiles, "templates")
	assetsRoot    = mustSub(assetFiles, "assets")
)

// Files shipped under AssetsFS. Control scripts are served from
// /assets/formfields/.
const (
	StylesheetName     = "formfields.css"
	MediaScriptName    = "media.js"
	RepeaterScriptName = "repeater.js"
)

// TemplatesFS returns the form, section and row templates.
func TemplatesFS() fs.FS { return templatesRoot }

// AssetsFS returns the stylesheet and control scripts.
func AssetsFS() fs.FS { return assetsRoot }

func defaultStylesheet() string {
	data, _ := fs.ReadFile(assetsRoot, StylesheetName)
	return string(data)
}

func mustSub(files embed.FS, dir string) fs.FS {
	sub, err := fs.Sub(files, dir)
	if err != nil {
		panic(err)
	}
	return sub
}
