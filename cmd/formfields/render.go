package main

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formfields/pkg/fields"
	"github.com/goliatone/go-formfields/pkg/forms"
	"github.com/goliatone/go-formfields/pkg/render"
	"github.com/goliatone/go-formfields/pkg/renderers/jsonview"
	"github.com/goliatone/go-formfields/pkg/renderers/tui"
	"github.com/goliatone/go-formfields/pkg/renderers/vanilla"
)

var renderFlags struct {
	item     string
	subtype  string
	renderer string
	format   string
	output   string
	action   string
	sections []string
	fields   []string
}

var renderCmd = &cobra.Command{
	Use:   "render <object-type> <screen>",
	Short: "Render a screen to HTML, JSON or an interactive prompt session",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnvironment(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		renderers, err := cliRenderers(renderFlags.format)
		if err != nil {
			return err
		}
		form := forms.New(env.registry, args[0], args[1],
			forms.WithChoices(env.choices),
			forms.WithRenderers(renderers),
			forms.WithLogger(logger),
		)
		out, err := form.Render(cmd.Context(), forms.Request{
			ItemID:    renderFlags.item,
			Subtype:   renderFlags.subtype,
			Principal: fields.Superuser,
			Renderer:  renderFlags.renderer,
			Options: render.RenderOptions{
				Action: renderFlags.action,
				Subset: render.Subset{Sections: renderFlags.sections, Fields: renderFlags.fields},
			},
		})
		if err != nil {
			return err
		}
		return writeOutput(renderFlags.output, out)
	},
}

func init() {
	flags := renderCmd.Flags()
	flags.StringVar(&renderFlags.item, "item", "", "item id for object meta")
	flags.StringVar(&renderFlags.subtype, "subtype", "", "object subtype")
	flags.StringVarP(&renderFlags.renderer, "renderer", "r", "vanilla", "renderer: vanilla, json or tui")
	flags.StringVar(&renderFlags.format, "format", "json", "tui output: json, form or pretty")
	flags.StringVarP(&renderFlags.output, "output", "o", "", "output file (stdout if empty)")
	flags.StringVar(&renderFlags.action, "action", "", "form action URL")
	flags.StringSliceVar(&renderFlags.sections, "sections", nil, "only render these sections")
	flags.StringSliceVar(&renderFlags.fields, "fields", nil, "only render these fields")
}

func cliRenderers(format string) (*render.Registry, error) {
	outputFormat, err := tui.ParseOutputFormat(format)
	if err != nil {
		return nil, err
	}
	html, err := vanilla.New()
	if err != nil {
		return nil, err
	}
	prompts, err := tui.New(tui.WithOutputFormat(outputFormat))
	if err != nil {
		return nil, err
	}
	renderers := render.NewRegistry()
	renderers.MustRegister(html)
	renderers.MustRegister(jsonview.New())
	renderers.MustRegister(prompts)
	return renderers, nil
}
