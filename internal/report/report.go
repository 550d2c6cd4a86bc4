// Package report prints complexity results for humans.
package report

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/haskel/bigo/internal/complexity"
)

// Colors
var (
	colorPrimary = lipgloss.Color("86")  // Cyan
	colorSuccess = lipgloss.Color("82")  // Green
	colorDanger  = lipgloss.Color("196") // Red
	colorMuted   = lipgloss.Color("245") // Light gray
)

// Printer writes one summary line per result and, in verbose mode, the
// tables the guess was derived from. It implements complexity.Reporter.
type Printer struct {
	w       io.Writer
	verbose bool

	okStyle     lipgloss.Style
	failStyle   lipgloss.Style
	guessStyle  lipgloss.Style
	headerStyle lipgloss.Style
	mutedStyle  lipgloss.Style

	mu sync.Mutex
}

// New creates a Printer writing to w. Colours are used only when w is a
// terminal.
func New(w io.Writer, verbose bool) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:           w,
		verbose:     verbose,
		okStyle:     r.NewStyle().Foreground(colorSuccess).Bold(true),
		failStyle:   r.NewStyle().Foreground(colorDanger).Bold(true),
		guessStyle:  r.NewStyle().Foreground(colorPrimary),
		headerStyle: r.NewStyle().Foreground(colorPrimary).Bold(true),
		mutedStyle:  r.NewStyle().Foreground(colorMuted),
	}
}

// Report prints res.
func (p *Printer) Report(res *complexity.Result) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.verbose {
		p.details(res)
	}
	fmt.Fprintln(p.w, p.Summary(res))
}

// Summary renders the one-line outcome of res.
func (p *Printer) Summary(res *complexity.Result) string {
	head := fmt.Sprintf("[%.3fs] %s", res.Elapsed.Seconds(), res.Label)

	if res.Failure != "" {
		return fmt.Sprintf("%-40s%s", head, p.failStyle.Render("FAILED: "+res.Failure))
	}

	line := fmt.Sprintf("%-40s%s", head, p.guessStyle.Render(fmt.Sprintf("%-30s", "Guess: "+res.Guess)))
	if res.Expected != "" {
		if res.Passed {
			line += p.okStyle.Render("OK")
		} else {
			line += p.failStyle.Render("NO -- EXPECTED " + res.Expected)
		}
	}
	line += p.mutedStyle.Render(fmt.Sprintf("  (%d samples)", len(res.Samples)))
	return line
}

func (p *Printer) details(res *complexity.Result) {
	fmt.Fprintln(p.w, p.headerStyle.Render(res.Label))
	fmt.Fprintf(p.w, "Interval: %s\n", res.Interval)
	if res.Restarted {
		fmt.Fprintf(p.w, "Restarted from probed interval %s\n", res.Probed)
	}
	if len(res.Samples) == 0 {
		return
	}

	fmt.Fprintln(p.w, "\nSamples:")
	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "n\tduration\tunits")
	for _, s := range res.Samples {
		fmt.Fprintf(tw, "%d\t%s\t%d\n", s.N, s.Duration, s.Units)
	}
	tw.Flush()

	if len(res.Ratios) == 0 {
		return
	}

	fmt.Fprintln(p.w, "\nRatio Table:")
	p.table(res.Ratios, "%.4g")

	diffs := complexity.Differences(res.Ratios, res.Interval.Step)
	fmt.Fprintln(p.w, "\nRatio Differences:")
	p.table(diffs, "%.3e")

	fmt.Fprintln(p.w, "\nStat Table:")
	tw = tabwriter.NewWriter(p.w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "\t%s\t\n", strings.Join(seriesNames(diffs), "\t"))
	medians, means := make([]string, len(diffs)), make([]string, len(diffs))
	lows, highs := make([]string, len(res.Ratios)), make([]string, len(res.Ratios))
	for i, d := range diffs {
		st := Summarize(d)
		medians[i] = fmt.Sprintf("%.3e", st.Median)
		means[i] = fmt.Sprintf("%.3e", st.Mean)
	}
	for i, s := range res.Ratios {
		lo, hi := Range(s)
		lows[i] = fmt.Sprintf("%.4g", lo)
		highs[i] = fmt.Sprintf("%.4g", hi)
	}
	fmt.Fprintf(tw, "diff median\t%s\t\n", strings.Join(medians, "\t"))
	fmt.Fprintf(tw, "diff mean\t%s\t\n", strings.Join(means, "\t"))
	fmt.Fprintf(tw, "ratio min\t%s\t\n", strings.Join(lows, "\t"))
	fmt.Fprintf(tw, "ratio max\t%s\t\n", strings.Join(highs, "\t"))
	tw.Flush()

	if len(res.Fits) == 0 {
		return
	}

	fmt.Fprintln(p.w, "\nFits:")
	tw = tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "class\tinitial\tfinal\terror\tpoints\taccepted")
	for _, f := range res.Fits {
		fmt.Fprintf(tw, "%s\t(%.4g, %.4g)\t(%.4g, %.4g)\t%.3e\t%d\t%v\n",
			f.Name, f.InitialA, f.InitialB, f.A, f.B, f.Error, f.Points, f.Accepted)
	}
	tw.Flush()

	if len(res.Accepted) > 0 {
		fmt.Fprintf(p.w, "Accepted: %s\n", strings.Join(res.Accepted, ", "))
	}
	fmt.Fprintln(p.w)
}

// table prints series as columns, one row per sample size.
func (p *Printer) table(series []complexity.RatioSeries, format string) {
	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "n\t%s\t\n", strings.Join(seriesNames(series), "\t"))

	rows := len(series[0].Points)
	for j := 0; j < rows; j++ {
		cells := make([]string, len(series))
		for i, s := range series {
			if j < len(s.Points) {
				cells[i] = fmt.Sprintf(format, s.Points[j].Ratio)
			}
		}
		fmt.Fprintf(tw, "%d\t%s\t\n", series[0].Points[j].N, strings.Join(cells, "\t"))
	}
	tw.Flush()
}

func seriesNames(series []complexity.RatioSeries) []string {
	names := make([]string, len(series))
	for i, s := range series {
		names[i] = s.Name
	}
	return names
}

// Stats summarizes one series.
type Stats struct {
	Median float64
	Mean   float64
	Count  int
}

// Summarize returns the lower median and the mean of the finite values of
// s. An empty series summarizes to zeros.
func Summarize(s complexity.RatioSeries) Stats {
	values := finiteValues(s)
	if len(values) == 0 {
		return Stats{}
	}

	sort.Float64s(values)
	return Stats{
		Median: stat.Quantile(0.5, stat.Empirical, values, nil),
		Mean:   stat.Mean(values, nil),
		Count:  len(values),
	}
}

// Range returns the smallest and largest finite values of s.
func Range(s complexity.RatioSeries) (lo, hi float64) {
	values := finiteValues(s)
	if len(values) == 0 {
		return 0, 0
	}
	return floats.Min(values), floats.Max(values)
}

func finiteValues(s complexity.RatioSeries) []float64 {
	values := make([]float64, 0, len(s.Points))
	for _, pt := range s.Points {
		if !math.IsNaN(pt.Ratio) && !math.IsInf(pt.Ratio, 0) {
			values = append(values, pt.Ratio)
		}
	}
	return values
}
