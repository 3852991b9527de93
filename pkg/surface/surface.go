// Package surface defines output rendering for cycle results.
// Implementations handle different output targets: terminal, Markdown, JSON.
package surface

import (
	"fmt"
	"io"
	"sort"

	"github.com/lucasprac/dea-choquet/pkg/engine"
)

// Renderer produces formatted output from CycleResults.
type Renderer interface {
	// Render writes the formatted results to the writer.
	Render(w io.Writer, result *engine.CycleResults) error
}

// ForFormat returns the renderer for an output format name.
func ForFormat(format string) (Renderer, error) {
	switch format {
	case "", "text":
		return &TerminalRenderer{}, nil
	case "json":
		return &JSONRenderer{}, nil
	case "markdown", "md":
		return &MarkdownRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want text, json or markdown)", format)
	}
}

// rankedRow is one DMU in display order.
type rankedRow struct {
	DMUID string
	Score engine.EfficiencyScore
	Cell  string
}

// ranked returns DMUs ordered by rank, then id.
func ranked(result *engine.CycleResults) []rankedRow {
	cellOf := make(map[string]string)
	for key, cell := range result.NineBoxMatrix {
		for _, id := range cell.Employees {
			cellOf[id] = key
		}
	}
	rows := make([]rankedRow, 0, len(result.EfficiencyScores))
	for id, s := range result.EfficiencyScores {
		rows = append(rows, rankedRow{DMUID: id, Score: s, Cell: cellOf[id]})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Score.Rank != rows[j].Score.Rank {
			return rows[i].Score.Rank < rows[j].Score.Rank
		}
		return rows[i].DMUID < rows[j].DMUID
	})
	return rows
}

type namedValue struct {
	Key   string
	Value float64
}

// byValueDesc orders map entries by value, largest first.
func byValueDesc(m map[string]float64) []namedValue {
	out := make([]namedValue, 0, len(m))
	for k, v := range m {
		out = append(out, namedValue{k, v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Key < out[j].Key
	})
	return out
}

var tierOrder = []string{"high", "med", "low"}
