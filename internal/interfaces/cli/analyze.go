package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/turtacn/CompoundForge/internal/application/compound"
	domain "github.com/turtacn/CompoundForge/internal/domain/compound"
	"github.com/turtacn/CompoundForge/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CompoundForge/pkg/errors"
)

var (
	likelyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	possibleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	unlikelyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	labelStyle    = lipgloss.NewStyle().Bold(true)
)

func NewAnalyzeCmd() *cobra.Command {
	var (
		counts  map[string]int
		formula string
	)
	cmd := &cobra.Command{
		Use:   "analyze [SYMBOL...]",
		Short: "Predict whether a set of elements forms a compound",
		Example: `  cforge analyze Na Cl
  cforge analyze Fe O --count Fe=2 --count O=3
  cforge analyze --formula CaCO3 -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			req := &compound.AnalyzeRequest{Formula: strings.TrimSpace(formula)}
			if req.Formula == "" {
				req.Symbols = args
				if len(counts) > 0 {
					req.Counts = counts
				}
			} else if len(args) > 0 || len(counts) > 0 {
				return errors.New(errors.ErrCodeBadRequest, "--formula cannot be combined with symbols or --count")
			}

			svc, err := cc.Service(cmd.Context())
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd, cc)
			defer cancel()

			res, err := svc.Analyze(ctx, req)
			if err != nil {
				return err
			}
			cc.Logger.Debug("analysis complete",
				logging.String("likelihood", res.Likelihood.String()),
				logging.Bool("cached", res.Cached))
			if cc.OutputFormat == "json" {
				return PrintResult(cmd, res)
			}
			return PrintResult(cmd, analysisView{res})
		},
	}
	cmd.Flags().StringToIntVarP(&counts, "count", "n", nil, "explicit atom count, e.g. --count Fe=2 (repeatable)")
	cmd.Flags().StringVarP(&formula, "formula", "f", "", "analyze a formula such as CaCO3 instead of symbols")
	return cmd
}

// analysisView renders an AnalyzeResult for the text and table formats.
type analysisView struct {
	*compound.AnalyzeResult
}

func (v analysisView) symbols() []string {
	out := make([]string, len(v.Elements))
	for i, e := range v.Elements {
		out[i] = e.Symbol
	}
	return out
}

func (v analysisView) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s\n", labelStyle.Render("Elements:  "), strings.Join(v.symbols(), ", "))
	fmt.Fprintf(&sb, "%s %s\n", labelStyle.Render("Likelihood:"), colorizeLikelihood(v.Likelihood))
	fmt.Fprintf(&sb, "%s %s\n", labelStyle.Render("Bond type: "), v.BondType)
	if v.ElectronegativityDifference != nil {
		fmt.Fprintf(&sb, "%s %.2f\n", labelStyle.Render("ΔEN:       "), *v.ElectronegativityDifference)
	}
	if len(v.Candidates) > 0 {
		fmt.Fprintf(&sb, "%s\n", labelStyle.Render("Candidates:"))
		for _, c := range v.Candidates {
			fmt.Fprintf(&sb, "  %-10s %s\n", c.Formula, assignment(c))
		}
	}
	fmt.Fprintf(&sb, "%s %s", labelStyle.Render("Rationale: "), v.Rationale)
	if v.Cached {
		sb.WriteString("\n(cached)")
	}
	return sb.String()
}

func (v analysisView) TableHeaders() []string {
	return []string{"FORMULA", "OXIDATION STATES", "NET CHARGE"}
}

func (v analysisView) TableRows() [][]string {
	rows := make([][]string, 0, len(v.Candidates))
	for _, c := range v.Candidates {
		rows = append(rows, []string{c.Formula, assignment(c), fmt.Sprintf("%d", c.NetCharge())})
	}
	return rows
}

func assignment(c domain.CompoundCandidate) string {
	parts := make([]string, len(c.OxidationAssignment))
	for i, t := range c.OxidationAssignment {
		parts[i] = fmt.Sprintf("%s%+d×%d", t.Symbol, t.OxidationState, t.Count)
	}
	return strings.Join(parts, " ")
}

func colorizeLikelihood(l domain.Likelihood) string {
	switch l {
	case domain.LikelihoodLikely:
		return likelyStyle.Render(l.String())
	case domain.LikelihoodPossible:
		return possibleStyle.Render(l.String())
	case domain.LikelihoodUnlikely:
		return unlikelyStyle.Render(l.String())
	default:
		return l.String()
	}
}
