package surface

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lucasprac/dea-choquet/pkg/engine"
)

// TerminalRenderer renders CycleResults as colored terminal output.
type TerminalRenderer struct{}

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

func categoryColor(c engine.Category) string {
	if noColor() {
		return ""
	}
	switch c {
	case engine.CategoryExceptional, engine.CategoryAbove:
		return colorGreen
	case engine.CategoryMeets:
		return colorYellow
	case engine.CategoryBelow, engine.CategoryCritical:
		return colorRed
	default:
		return ""
	}
}

func noColor() bool {
	_, ok := os.LookupEnv("NO_COLOR")
	return ok
}

func bold(s string) string {
	if noColor() {
		return s
	}
	return colorBold + s + colorReset
}

func dim(s string) string {
	if noColor() {
		return s
	}
	return colorDim + s + colorReset
}

func colored(s, color string) string {
	if noColor() || color == "" {
		return s
	}
	return color + s + colorReset
}

func (r *TerminalRenderer) Render(w io.Writer, result *engine.CycleResults) error {
	stats := result.PopulationStats
	fmt.Fprintf(w, "%s\n", bold(fmt.Sprintf("Choquet DEA: cycle %s", result.CycleID)))
	fmt.Fprintf(w, "Evaluated: %d DMUs / mean efficiency %.3f / std %.3f / %d ms\n\n",
		stats.TotalDMUs, stats.MeanEfficiency, stats.StdEfficiency, result.ComputationTimeMs)

	fmt.Fprintln(w, "Ranking:")
	for _, row := range ranked(result) {
		s := row.Score
		name := row.DMUID
		if s.EmployeeName != "" {
			name = fmt.Sprintf("%s (%s)", row.DMUID, s.EmployeeName)
		}
		fmt.Fprintf(w, "  %3d. %-32s cross %.3f  self %.3f  p%3.0f  %s",
			s.Rank, name, s.CrossEfficiency, s.SelfEvaluation, s.Percentile*100,
			colored(string(s.Category), categoryColor(s.Category)))
		if row.Cell != "" {
			fmt.Fprintf(w, "  %s", dim("["+engine.Profile(row.Cell)+"]"))
		}
		if s.ProspectValue != nil {
			fmt.Fprintf(w, "  %s %+.3f", s.ProspectMode, *s.ProspectValue)
		}
		if len(s.Flags) > 0 {
			fmt.Fprintf(w, "  %s", colored(fmt.Sprintf("%v", s.Flags), colorRed))
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w)

	if len(result.ShapleyValues) > 0 {
		fmt.Fprintln(w, "Indicator importance (Shapley):")
		for _, nv := range byValueDesc(result.ShapleyValues) {
			fmt.Fprintf(w, "  %-12s %.3f %s\n", nv.Key, nv.Value, bar(nv.Value, 30))
		}
		fmt.Fprintln(w)
	}

	if len(result.InteractionWeights) > 0 {
		fmt.Fprintln(w, "Interactions:")
		for _, nv := range byValueDesc(result.InteractionWeights) {
			kind := "synergy"
			if nv.Value < 0 {
				kind = "redundancy"
			}
			fmt.Fprintf(w, "  %-24s %+.3f %s\n", nv.Key, nv.Value, dim(kind))
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "Nine-box (efficiency rows x effectiveness columns):")
	fmt.Fprintf(w, "  %-6s %-22s %-22s %-22s\n", "", "low", "med", "high")
	for _, eff := range tierOrder {
		fmt.Fprintf(w, "  %-6s", eff)
		for _, out := range []string{"low", "med", "high"} {
			cell := result.NineBoxMatrix[eff+"_"+out]
			fmt.Fprintf(w, " %-22s", fmt.Sprintf("%s: %d", cell.Profile, cell.Count))
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w)

	if len(result.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, wr := range result.Warnings {
			fmt.Fprintf(w, "  %s %s %s\n", colored("●", colorRed), bold(wr.DMUID), wr.Message)
		}
		fmt.Fprintln(w)
	}

	return nil
}

// bar draws a proportional bar for a value in [0,1].
func bar(v float64, width int) string {
	n := int(v*float64(width) + 0.5)
	n = max(0, min(width, n))
	return strings.Repeat("█", n)
}
