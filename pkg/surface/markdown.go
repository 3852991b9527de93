package surface

import (
	"fmt"
	"io"
	"strings"

	"github.com/lucasprac/dea-choquet/pkg/engine"
)

// MarkdownRenderer renders CycleResults as a Markdown report.
type MarkdownRenderer struct{}

func (r *MarkdownRenderer) Render(w io.Writer, result *engine.CycleResults) error {
	_, err := io.WriteString(w, buildMarkdownSummary(result))
	return err
}

func buildMarkdownSummary(result *engine.CycleResults) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "## Cycle %s\n\n", result.CycleID)

	stats := result.PopulationStats
	sb.WriteString("### Population\n\n")
	sb.WriteString("| Metric | Value |\n|--------|-------|\n")
	fmt.Fprintf(&sb, "| DMUs | %d |\n", stats.TotalDMUs)
	fmt.Fprintf(&sb, "| Mean efficiency | %.3f |\n", stats.MeanEfficiency)
	fmt.Fprintf(&sb, "| Std efficiency | %.3f |\n", stats.StdEfficiency)
	fmt.Fprintf(&sb, "| Efficiency terciles | %.3f / %.3f |\n",
		result.TercileThresholds.Efficiency[0], result.TercileThresholds.Efficiency[1])
	fmt.Fprintf(&sb, "| Effectiveness terciles | %.3f / %.3f |\n",
		result.TercileThresholds.Effectiveness[0], result.TercileThresholds.Effectiveness[1])
	sb.WriteString("\n")

	sb.WriteString("### Ranking\n\n")
	sb.WriteString("| Rank | DMU | Employee | Cross | Self | Percentile | Category | Profile |\n")
	sb.WriteString("|------|-----|----------|-------|------|------------|----------|---------|\n")
	for _, row := range ranked(result) {
		s := row.Score
		fmt.Fprintf(&sb, "| %d | %s | %s | %.3f | %.3f | %.0f%% | %s | %s |\n",
			s.Rank, row.DMUID, s.EmployeeName, s.CrossEfficiency, s.SelfEvaluation,
			s.Percentile*100, s.Category, engine.Profile(row.Cell))
	}
	sb.WriteString("\n")

	if len(result.ShapleyValues) > 0 {
		sb.WriteString("### Indicator importance\n\n")
		for _, nv := range byValueDesc(result.ShapleyValues) {
			fmt.Fprintf(&sb, "- **%s**: %.3f\n", nv.Key, nv.Value)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("### Nine-box\n\n")
	sb.WriteString("| Efficiency \\ Effectiveness | low | med | high |\n|---|---|---|---|\n")
	for _, eff := range tierOrder {
		fmt.Fprintf(&sb, "| %s |", eff)
		for _, out := range []string{"low", "med", "high"} {
			cell := result.NineBoxMatrix[eff+"_"+out]
			fmt.Fprintf(&sb, " %s (%d) |", cell.Profile, cell.Count)
		}
		sb.WriteString("\n")
	}

	if len(result.Warnings) > 0 {
		sb.WriteString("\n### Warnings\n\n")
		for _, wr := range result.Warnings {
			fmt.Fprintf(&sb, "- `%s` %s: %s\n", wr.Kind, wr.DMUID, wr.Message)
		}
	}

	return sb.String()
}
