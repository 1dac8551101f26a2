package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/gnana997/docgen/pkg/catalog"
	"github.com/gnana997/docgen/pkg/docgen"
	"github.com/gnana997/docgen/pkg/metadata"
)

const maxWidth = 80

var (
	headingStyle = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

type inspectOptions struct {
	project     projectFlags
	dir         string
	catalogPath string
	source      string
}

func newInspectCmd(opts *globalOptions) *cobra.Command {
	var o inspectOptions
	cmd := &cobra.Command{
		Use:   "inspect <component>",
		Short: "Print a component's props and doclets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, opts, &o, args[0])
		},
	}
	o.project.register(cmd)
	cmd.Flags().StringVar(&o.dir, "dir", ".", "source tree to extract")
	cmd.Flags().StringVar(&o.catalogPath, "catalog", "", "read this catalog file instead of extracting")
	cmd.Flags().StringVar(&o.source, "source", "", "source file id when several files define the name")
	return cmd
}

func runInspect(cmd *cobra.Command, opts *globalOptions, o *inspectOptions, name string) error {
	var qs *catalog.QueryService
	if o.catalogPath != "" {
		var err error
		if qs, err = catalog.LoadAndQuery(o.catalogPath); err != nil {
			return err
		}
	} else {
		p, err := openProject(opts, &o.project, o.dir)
		if err != nil {
			return err
		}
		defer p.Close()
		if _, err := p.pipeline.Run(cmd.Context(), nil); err != nil {
			return err
		}
		qs = queryFor(p.catalog())
	}

	comp, ok := qs.GetComponent(name, o.source)
	if !ok {
		return fmt.Errorf("component %q not found", name)
	}
	printComponent(cmd.OutOrStdout(), comp)
	return nil
}

// printComponent renders a human-readable component summary.
func printComponent(w io.Writer, comp *catalog.Component) {
	fmt.Fprintf(w, "%s  %s\n", headingStyle.Render(comp.DisplayName), dimStyle.Render(comp.Source))

	if comp.Description != "" {
		fmt.Fprintln(w)
		for _, para := range strings.Split(comp.Description, "\n\n") {
			printWrapped(w, para, 0, maxWidth)
		}
	}

	if len(comp.Doclets) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, headingStyle.Render("Doclets"))
		for _, d := range comp.Doclets {
			fmt.Fprintf(w, "  @%s %s\n", d.Tag, d.Value)
		}
	}

	if len(comp.Composes) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s  %s\n", headingStyle.Render("Composes"), strings.Join(comp.Composes, ", "))
	}

	fmt.Fprintln(w)
	printProps(w, comp.Props)

	if len(comp.Methods) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, headingStyle.Render("Methods"))
		for _, m := range comp.Methods {
			params := make([]string, 0, len(m.Params))
			for _, p := range m.Params {
				params = append(params, p.Name)
			}
			fmt.Fprintf(w, "  %s(%s)\n", m.Name, strings.Join(params, ", "))
		}
	}
}

// printProps renders the props table with dynamic column widths.
func printProps(w io.Writer, props []metadata.Prop) {
	if len(props) == 0 {
		fmt.Fprintf(w, "%s  (none)\n", headingStyle.Render("Props"))
		return
	}
	fmt.Fprintln(w, headingStyle.Render("Props"))

	nameW, typeW, defW := len("NAME"), len("TYPE"), len("DEFAULT")
	for _, p := range props {
		nameW = max(nameW, len(p.Name))
		typeW = max(typeW, len(propTypeName(p)))
		defW = max(defW, len(defaultText(p)))
	}

	fmt.Fprintf(w, "  %-*s  %-*s  %-3s  %s\n", nameW, "NAME", typeW, "TYPE", "REQ", "DEFAULT")
	fmt.Fprintf(w, "  %s\n", strings.Repeat("─", nameW+typeW+defW+9))
	for _, p := range props {
		req := "no"
		if p.Required {
			req = "yes"
		}
		fmt.Fprintf(w, "  %-*s  %-*s  %-3s  %s\n", nameW, p.Name, typeW, propTypeName(p), req, defaultText(p))
		if p.Description != "" {
			printWrapped(w, p.Description, nameW+4, maxWidth)
		}
	}
}

// propTypeName prefers the TypeScript or Flow annotation over PropTypes.
func propTypeName(p metadata.Prop) string {
	switch {
	case p.TSType != nil:
		return typeDescriptorName(p.TSType)
	case p.FlowType != nil:
		return typeDescriptorName(p.FlowType)
	case p.Type != nil:
		return propTypeText(p.Type)
	}
	return "-"
}

func typeDescriptorName(t *docgen.TypeDescriptor) string {
	if t.Raw != "" {
		return t.Raw
	}
	return t.Name
}

func propTypeText(t *docgen.PropType) string {
	switch t.Name {
	case "enum":
		values := make([]string, 0, len(t.Enum))
		for _, v := range t.Enum {
			values = append(values, v.Value)
		}
		return strings.Join(values, " | ")
	case "union":
		members := make([]string, 0, len(t.Of))
		for _, m := range t.Of {
			if m.Value != "" {
				members = append(members, m.Value)
			} else {
				members = append(members, m.Name)
			}
		}
		return strings.Join(members, " | ")
	case "custom":
		if t.Raw != "" {
			return t.Raw
		}
	}
	return t.Name
}

func defaultText(p metadata.Prop) string {
	if p.DefaultValue == nil {
		return "-"
	}
	return p.DefaultValue.Value
}

// printWrapped prints text word-wrapped at width with the given left indent.
func printWrapped(w io.Writer, text string, indent, width int) {
	prefix := strings.Repeat(" ", indent)
	line := prefix
	for _, word := range strings.Fields(text) {
		switch {
		case line == prefix:
			line += word
		case len(line)+len(word)+1 > width:
			fmt.Fprintln(w, line)
			line = prefix + word
		default:
			line += " " + word
		}
	}
	if line != prefix {
		fmt.Fprintln(w, line)
	}
}
