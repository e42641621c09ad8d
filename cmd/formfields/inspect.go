package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formfields/pkg/fields"
	"github.com/goliatone/go-formfields/pkg/registry"
)

var inspectFlags struct {
	subtype string
	all     bool
	kind    string
}

var inspectCmd = &cobra.Command{
	Use:   "inspect [object-type]",
	Short: "Print the registered screens, sections and controls",
	Long: `Without --kind the command prints one tree per object type: screens, their
sections and the controls of each section. With --kind it lists every entity
of that kind.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnvironment(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		out := cmd.OutOrStdout()
		objectTypes := []string{}
		if len(args) == 1 {
			objectTypes = append(objectTypes, args[0])
		} else {
			for objectType := range env.registry.Grouped("") {
				objectTypes = append(objectTypes, objectType)
			}
			sort.Strings(objectTypes)
		}

		if inspectFlags.kind != "" {
			kind, err := fields.ParseKind(inspectFlags.kind)
			if err != nil {
				return err
			}
			for _, objectType := range objectTypes {
				for _, entity := range env.registry.Find(inspectQuery(kind, objectType)) {
					printEntity(out, 0, entity)
				}
			}
			return nil
		}

		for _, objectType := range objectTypes {
			printTree(out, env.registry, objectType)
		}
		return nil
	},
}

func init() {
	flags := inspectCmd.Flags()
	flags.StringVar(&inspectFlags.subtype, "subtype", "", "object subtype")
	flags.BoolVar(&inspectFlags.all, "all", false, "include every subtype")
	flags.StringVarP(&inspectFlags.kind, "kind", "k", "", "list one kind: screen, section, field or control")
}

func inspectQuery(kind fields.Kind, objectType string) registry.Query {
	return registry.Query{
		Kind:        kind,
		ObjectType:  objectType,
		Subtype:     inspectFlags.subtype,
		AllSubtypes: inspectFlags.all,
	}
}

func printTree(w io.Writer, reg *registry.Registry, objectType string) {
	fmt.Fprintln(w, objectType)
	for _, screen := range reg.Find(inspectQuery(fields.KindScreen, objectType)) {
		printEntity(w, 1, screen)
		sections := inspectQuery(fields.KindSection, objectType)
		sections.Parent = screen.ID()
		for _, section := range reg.Find(sections) {
			printEntity(w, 2, section)
			controls := inspectQuery(fields.KindControl, objectType)
			controls.Parent = section.ID()
			for _, control := range reg.Find(controls) {
				printEntity(w, 3, control)
			}
		}
	}
}

func printEntity(w io.Writer, depth int, entity fields.Entity) {
	for range depth {
		fmt.Fprint(w, "  ")
	}
	fmt.Fprintf(w, "%s %s", entity.Kind(), entity.ID())
	if scope := entity.Scope(); scope.Subtype != "" {
		fmt.Fprintf(w, " [%s]", scope)
	}
	if typed, ok := entity.(interface{ Type() string }); ok && typed.Type() != "" {
		fmt.Fprintf(w, " type=%s", typed.Type())
	}
	if gated, ok := entity.(fields.Gated); ok && gated.Capability() != "" {
		fmt.Fprintf(w, " capability=%s", gated.Capability())
	}
	fmt.Fprintf(w, " priority=%d\n", entity.Priority())
}
