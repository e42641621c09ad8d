package main

import (
	"errors"
	"fmt"
	"net/url"
	"sort"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formfields/pkg/fields"
	"github.com/goliatone/go-formfields/pkg/forms"
	"github.com/goliatone/go-formfields/pkg/render"
	"github.com/goliatone/go-formfields/pkg/renderers/tui"
)

var editFlags struct {
	item    string
	subtype string
}

var editCmd = &cobra.Command{
	Use:   "edit <object-type> <screen>",
	Short: "Edit a screen's values with terminal prompts",
	Long: `Prompts for every control of the screen and saves the answers. Fields that
fail validation are asked again until the form saves or the prompt is
interrupted.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := openEnvironment(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		form := forms.New(env.registry, args[0], args[1],
			forms.WithChoices(env.choices),
			forms.WithLogger(logger),
		)
		prompts, err := tui.New()
		if err != nil {
			return err
		}

		req := forms.Request{
			ItemID:    editFlags.item,
			Subtype:   editFlags.subtype,
			Principal: fields.Superuser,
		}
		answers := url.Values{}
		for {
			view, err := form.View(ctx, req)
			if err != nil {
				return err
			}
			var opts render.RenderOptions
			if req.Errors != nil {
				// only ask again for what failed
				opts.Subset = render.Subset{Fields: keys(req.Errors)}
			}
			state, err := prompts.Collect(ctx, view, opts)
			if errors.Is(err, tui.ErrAborted) {
				fmt.Fprintln(cmd.ErrOrStderr(), "aborted, nothing saved")
				return nil
			}
			if err != nil {
				return err
			}

			result, err := form.Save(ctx, forms.SaveRequest{
				ItemID:    req.ItemID,
				Subtype:   req.Subtype,
				Principal: req.Principal,
				Values:    merge(answers, state.Form()),
			})
			if err != nil {
				return err
			}
			for _, id := range result.Saved {
				fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", id)
			}
			if result.Valid() {
				return nil
			}
			for _, id := range keys(result.Errors) {
				for _, message := range result.Errors[id] {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", id, message)
				}
			}
			req.Errors = result.Errors
			req.Submitted = answers
		}
	},
}

func init() {
	editCmd.Flags().StringVar(&editFlags.item, "item", "", "item id for object meta")
	editCmd.Flags().StringVar(&editFlags.subtype, "subtype", "", "object subtype")
}

func keys(m map[string][]string) []string {
	out := make([]string, 0, len(m))
	for key := range m {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

func merge(dst, src url.Values) url.Values {
	for key, values := range src {
		dst[key] = values
	}
	return dst
}
