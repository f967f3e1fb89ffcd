// Package report renders simulation results for the terminal.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/liftmc/internal/sensitivity"
	"github.com/san-kum/liftmc/internal/stats"
)

// Reference prints the two-line result of the reference experiment.
func Reference(w io.Writer, s stats.Summary) error {
	_, err := fmt.Fprintf(w, "Mean lift is %f N\nStandard deviation of lift is %f N\n", s.Mean, s.StdDev)
	return err
}

// Detailed renders s as a bordered panel. seed is shown for reproduction.
func Detailed(w io.Writer, s stats.Summary, seed int64) error {
	rows := []string{
		title.Render("Lift distribution"),
		"",
		row("trials", fmt.Sprintf("%d", s.Trials)),
		row("method", s.Method),
		row("seed", fmt.Sprintf("%d", seed)),
		row("mean", fmt.Sprintf("%.3f N", s.Mean)),
		row("stddev", fmt.Sprintf("%.3f N", s.StdDev)),
		row("min", fmt.Sprintf("%.3f N", s.Min)),
		row("p05", fmt.Sprintf("%.3f N", s.P05)),
		row("median", fmt.Sprintf("%.3f N", s.P50)),
		row("p95", fmt.Sprintf("%.3f N", s.P95)),
		row("max", fmt.Sprintf("%.3f N", s.Max)),
	}
	if s.NonFinite > 0 {
		rows = append(rows, "", warn.Render(fmt.Sprintf("%d of %d trials produced NaN/Inf lift", s.NonFinite, s.Trials)))
	}

	_, err := fmt.Fprintln(w, panel.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)))
	return err
}

// Spread renders the between-replicate variability of the mean.
func Spread(w io.Writer, replicates int, mean, stddev float64) error {
	body := lipgloss.JoinVertical(lipgloss.Left,
		title.Render("Replicates"),
		row("count", fmt.Sprintf("%d", replicates)),
		row("mean", fmt.Sprintf("%.3f N", mean)),
		row("stddev", fmt.Sprintf("%.3f N", stddev)),
	)
	_, err := fmt.Fprintln(w, panel.Render(body))
	return err
}

func row(name, v string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, label.Render(name), value.Render(v))
}

// Sensitivity renders one line per input, largest share first as given.
func Sensitivity(w io.Writer, r *sensitivity.Report) error {
	var sb strings.Builder
	sb.WriteString(title.Render("Variance attribution"))
	sb.WriteString("\n")
	sb.WriteString(subtle.Render(fmt.Sprintf("total stddev %.3f N", r.Total.StdDev)))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("%-16s %-6s %12s %8s\n", "input", "unit", "stddev (N)", "share"))
	for _, c := range r.Contributions {
		sb.WriteString(fmt.Sprintf("%-16s %-6s %12.3f %7.1f%%\n", c.Input, c.Unit, c.StdDev, 100*c.Share))
	}
	sb.WriteString(subtle.Render(fmt.Sprintf("sum of shares %.1f%%", 100*r.ShareSum())))

	_, err := fmt.Fprintln(w, panel.Render(sb.String()))
	return err
}
