package commands

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/xmlviewls/internal/cli/output"
	"github.com/leapstack-labs/xmlviewls/pkg/hover"
	"github.com/leapstack-labs/xmlviewls/pkg/model"
)

// DescribeOptions holds options for the describe command.
type DescribeOptions struct {
	Members bool   // List inherited and own members
	Format  string // Output format
}

// NewDescribeCommand creates the describe command.
func NewDescribeCommand() *cobra.Command {
	opts := &DescribeOptions{}
	cmd := &cobra.Command{
		Use:   "describe <class>",
		Short: "Show model documentation for a class",
		Long: `Show the documentation of a framework class as an editor hover would.

The model is selected with --framework and --ui5-version (or the
configured defaults). A missing version selects the newest model.`,
		Example: `  # Describe a control
  xmlviewls describe sap.m.Button

  # Include every property, aggregation and event
  xmlviewls describe sap.m.Page --members

  # Describe against a specific version
  xmlviewls describe sap.m.Page --ui5-version 1.71`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDescribe(cmd, args[0], opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Members, "members", "m", false, "List all members including inherited ones")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, json, markdown")

	return cmd
}

// DescribeJSONOutput is the JSON output structure for describe.
type DescribeJSONOutput struct {
	Name       string       `json:"name"`
	Model      string       `json:"model"`
	Extends    []string     `json:"extends"`
	Incomplete bool         `json:"incomplete,omitempty"` // Extends stops at an inheritance cycle
	Markdown   string       `json:"markdown"`
	Members    []memberInfo `json:"members,omitempty"`
	Reference  string       `json:"reference,omitempty"`
}

type memberInfo struct {
	Kind       string `json:"kind"`
	Name       string `json:"name"`
	Type       string `json:"type,omitempty"`
	Owner      string `json:"owner"`
	Deprecated bool   `json:"deprecated,omitempty"`
}

func runDescribe(cmd *cobra.Command, name string, opts *DescribeOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	cfg := cmdCtx.Cfg
	r := rendererFor(cmd, cmdCtx.Renderer, opts.Format)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	m, err := cmdCtx.Store.Resolve(ctx, cfg.DefaultFramework, cfg.DefaultVersion)
	if err != nil {
		return err
	}
	cls, ok := m.Class(name)
	if !ok {
		return fmt.Errorf("class %q not found in %s", name, m.Key())
	}

	md := hover.Class(m, cls)
	var members []memberInfo
	if opts.Members {
		members = classMembers(m, cls)
	}

	if r.EffectiveMode() == output.ModeJSON {
		chain, cycle := model.SuperclassChain(m, cls)
		extends := make([]string, len(chain))
		for i, c := range chain {
			extends[i] = c.Name
		}
		return r.JSON(DescribeJSONOutput{
			Name:       cls.Name,
			Model:      m.Key().String(),
			Extends:    extends,
			Incomplete: cycle != nil,
			Markdown:   md,
			Members:    members,
			Reference:  hover.APIReferenceURL(m, cls.Name),
		})
	}

	if r.EffectiveMode() == output.ModeText {
		r.Println(r.Styles().Header1.Render(cls.Name) + " " + r.Styles().Muted.Render(m.Key().String()))
		r.Println("")
	}
	r.Println(md)

	if len(members) > 0 {
		r.Println("")
		t := table.NewWriter()
		t.SetOutputMirror(r.Writer())
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Kind", "Name", "Type", "Declared In"})
		for _, mem := range members {
			memName := mem.Name
			if mem.Deprecated {
				memName += " (deprecated)"
			}
			t.AppendRow(table.Row{mem.Kind, memName, mem.Type, mem.Owner})
		}
		if r.EffectiveMode() == output.ModeMarkdown {
			t.RenderMarkdown()
		} else {
			t.Render()
		}
	}
	return nil
}

// classMembers lists the flattened members of cls, grouped by kind and
// sorted by name.
func classMembers(m *model.Model, cls *model.Class) []memberInfo {
	var members []memberInfo
	for _, p := range sortedMembers(model.FlattenProperties(m, cls)) {
		members = append(members, memberInfo{
			Kind: "property", Name: p.Name, Type: p.Type, Owner: p.Owner, Deprecated: p.IsDeprecated(),
		})
	}
	for _, a := range sortedMembers(model.FlattenAggregations(m, cls)) {
		members = append(members, memberInfo{
			Kind: "aggregation", Name: a.Name, Type: fmt.Sprintf("%s %s", a.Type, a.Cardinality),
			Owner: a.Owner, Deprecated: a.IsDeprecated(),
		})
	}
	for _, e := range sortedMembers(model.FlattenEvents(m, cls)) {
		members = append(members, memberInfo{
			Kind: "event", Name: e.Name, Owner: e.Owner, Deprecated: e.IsDeprecated(),
		})
	}
	return members
}

func sortedMembers[T interface{ MemberName() string }](byName map[string]T) []T {
	out := make([]T, 0, len(byName))
	for _, v := range byName {
		out = append(out, v)
	}
	slices.SortFunc(out, func(a, b T) int {
		return strings.Compare(a.MemberName(), b.MemberName())
	})
	return out
}
