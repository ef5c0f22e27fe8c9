package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	etypes "github.com/turtacn/CompoundForge/pkg/types/element"
)

func NewElementCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "element",
		Aliases: []string{"el"},
		Short:   "Look up element records",
	}
	cmd.AddCommand(newElementShowCmd(), newElementListCmd(), newElementSearchCmd())
	return cmd
}

func newElementShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show SYMBOL",
		Short: "Show one element by symbol (case-insensitive)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			svc, err := cc.Service(cmd.Context())
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd, cc)
			defer cancel()

			e, err := svc.Element(ctx, args[0])
			if err != nil {
				return err
			}
			if cc.OutputFormat == "json" {
				return PrintResult(cmd, e)
			}
			return PrintResult(cmd, elementView{*e})
		},
	}
}

func newElementListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every element in atomic-number order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			svc, err := cc.Service(cmd.Context())
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd, cc)
			defer cancel()

			list, err := svc.Elements(ctx)
			if err != nil {
				return err
			}
			return printElements(cmd, cc, list)
		},
	}
}

func newElementSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search QUERY",
		Short: "Find elements whose symbol or name starts with QUERY",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			svc, err := cc.Service(cmd.Context())
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd, cc)
			defer cancel()

			list, err := svc.SearchElements(ctx, args[0])
			if err != nil {
				return err
			}
			return printElements(cmd, cc, list)
		},
	}
}

func printElements(cmd *cobra.Command, cc *CLIContext, list []etypes.Element) error {
	if list == nil {
		list = []etypes.Element{}
	}
	if cc.OutputFormat == "json" {
		return PrintResult(cmd, list)
	}
	return PrintResult(cmd, elementList(list))
}

type elementView struct {
	etypes.Element
}

func (v elementView) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s (%d)\n", labelStyle.Render("Element:"), v.Symbol, v.AtomicNumber)
	fmt.Fprintf(&sb, "%s %s\n", labelStyle.Render("Name:   "), v.Name)
	fmt.Fprintf(&sb, "%s %s\n", labelStyle.Render("Class:  "), v.Category)
	fmt.Fprintf(&sb, "%s %s\n", labelStyle.Render("States: "), formatStates(v.OxidationStates))
	fmt.Fprintf(&sb, "%s %s", labelStyle.Render("EN:     "), formatEN(v.Electronegativity))
	return sb.String()
}

type elementList []etypes.Element

func (l elementList) TableHeaders() []string {
	return []string{"Z", "SYMBOL", "NAME", "CATEGORY", "OXIDATION STATES", "EN"}
}

func (l elementList) TableRows() [][]string {
	rows := make([][]string, len(l))
	for i, e := range l {
		rows[i] = []string{
			fmt.Sprintf("%d", e.AtomicNumber),
			e.Symbol,
			e.Name,
			string(e.Category),
			formatStates(e.OxidationStates),
			formatEN(e.Electronegativity),
		}
	}
	return rows
}

func formatStates(states []int) string {
	if len(states) == 0 {
		return "-"
	}
	parts := make([]string, len(states))
	for i, s := range states {
		parts[i] = fmt.Sprintf("%+d", s)
	}
	return strings.Join(parts, " ")
}

func formatEN(en *float64) string {
	if en == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *en)
}
