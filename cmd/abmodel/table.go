package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lewhay03/Antibody-Constant-Region-Modelling-Pipeline/pipeline"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF")).Bold(true)
	bestStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0AEC0"))
	cellStyle   = lipgloss.NewStyle()
)

// renderTable lays rows out in left aligned columns under a bold header.
func renderTable(header []string, rows [][]string) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); i < len(widths) && w > widths[i] {
				widths[i] = w
			}
		}
	}

	line := func(cells []string, style lipgloss.Style) string {
		rendered := make([]string, len(cells))
		for i, cell := range cells {
			rendered[i] = cellStyle.Width(widths[i] + 2).Render(style.Render(cell))
		}
		return strings.TrimRight(
			lipgloss.JoinHorizontal(lipgloss.Top, rendered...), " ")
	}

	lines := []string{line(header, headerStyle)}
	for _, row := range rows {
		lines = append(lines, line(row, lipgloss.NewStyle()))
	}
	return strings.Join(lines, "\n")
}

func score(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.3f", *v)
}

// modelRows lists the ranked models first, then the failures.
func modelRows(r *pipeline.Report) [][]string {
	var rows [][]string
	for i, m := range r.Ranked {
		rows = append(rows, []string{fmt.Sprintf("%d", i+1), m.Name,
			score(m.DOPE), score(m.DOPEHR), score(m.GA341), m.Path})
	}
	for _, m := range r.Models {
		if !m.OK() {
			rows = append(rows, []string{"-", m.Name, "-", "-", "-",
				"failed: " + m.Failure})
		}
	}
	return rows
}

// printReport summarizes a run: what was recombined, the files written and
// the ranked models when models were built.
func printReport(w io.Writer, r *pipeline.Report) {
	label := func(name, value string) {
		if len(value) > 0 {
			fmt.Fprintf(w, "%s %s\n", labelStyle.Render(name+":"), value)
		}
	}
	label("Variable template", r.Variable)
	label("Constant template", r.Constant)
	label("Isotype", r.Isotype)
	label("Target", r.Target)
	label("FASTA", strings.TrimSpace(r.Files.FastaHeavy+" "+r.Files.FastaLight))
	label("Alignments", strings.TrimSpace(r.Files.ClustalHeavy+" "+r.Files.ClustalLight))
	label("PIR", r.Files.PIR)
	label("Run record", r.Files.Record)
	if len(r.Stopped) > 0 {
		label("Stopped after", r.Stopped)
		return
	}
	if len(r.Models) == 0 {
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, renderTable(
		[]string{"Rank", "Model", "DOPE", "DOPE-HR", "GA341", "File"},
		modelRows(r)))
	if best, ok := r.Best(); ok {
		fmt.Fprintf(w, "\n%s %s\n", labelStyle.Render("Top model:"),
			bestStyle.Render(best.String()))
	}
}
