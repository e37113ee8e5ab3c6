package report

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/capital-cli/internal/model"
)

var printer = message.NewPrinter(language.English)

// money formats an amount with thousands separators, e.g. $1,234.50.
func money(v float64) string {
	return printer.Sprintf("$%.2f", v)
}

// deviation formats a percentage deviation. +Inf means spend against a zero
// allocation and must never reach arithmetic, only display.
func deviation(v float64) string {
	if math.IsInf(v, 1) {
		return "over budget (no allocation)"
	}
	return printer.Sprintf("%.2f%%", v)
}

// FormatText generates the human-readable analysis report.
func FormatText(d *Data) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Capital Monitoring Report: %s\n", d.Source)
	fmt.Fprintf(&b, "Generated: %s\n", d.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "As of: %s\n\n", d.AsOf.Format("2006-01-02"))

	for _, w := range d.Warnings {
		fmt.Fprintf(&b, "WARNING: %s\n", w)
	}
	if len(d.Warnings) > 0 {
		b.WriteString("\n")
	}

	if d.Table.Len() == 0 {
		b.WriteString("No data for the selected projects. Adjust the filters or upload more data.\n")
		return b.String()
	}

	b.WriteString("## Key Metrics\n")
	fmt.Fprintf(&b, "- Projects: %d\n", d.Metrics.Projects)
	fmt.Fprintf(&b, "- Total actuals: %s\n", money(d.Metrics.TotalActuals))
	fmt.Fprintf(&b, "- Total forecasts: %s\n", money(d.Metrics.TotalForecasts))
	fmt.Fprintf(&b, "- Total capital plan: %s\n", money(d.Metrics.TotalCapitalPlan))
	fmt.Fprintf(&b, "- Total allocation: %s\n", money(d.Metrics.TotalAllocation))
	fmt.Fprintf(&b, "- Net reallocation: %s\n", money(d.Metrics.NetReallocation))
	fmt.Fprintf(&b, "- Mean spread score: %s\n\n", printer.Sprintf("%.2f", d.Metrics.MeanSpreadScore))

	b.WriteString("## Performance Summary\n")
	for _, g := range d.Groups {
		fmt.Fprintf(&b, "- %s: actuals %s, allocation %s, deviation %s\n",
			groupLabel(g.Key), money(g.TotalActuals), money(g.TotalAllocation), deviation(g.PercentDeviation))
	}
	b.WriteString("\n")

	b.WriteString("## Over / Under Budget\n")
	if len(d.Over) == 0 && len(d.Under) == 0 {
		b.WriteString("No projects are over or under the highlight threshold.\n")
	}
	for _, g := range d.Over {
		fmt.Fprintf(&b, "- OVER  %s: actual spend %s (%s)\n", groupLabel(g.Key), money(g.TotalActuals), deviation(g.PercentDeviation))
	}
	for _, g := range d.Under {
		fmt.Fprintf(&b, "- UNDER %s: actual spend %s (under budget by %s)\n",
			groupLabel(g.Key), money(g.TotalActuals), deviation(math.Abs(g.PercentDeviation)))
	}
	b.WriteString("\n")

	writeRanked(&b, "## Most Predictable Spend", d.Top)
	writeRanked(&b, "## Least Predictable Spend", d.Bottom)

	if d.Commentary != nil {
		fmt.Fprintf(&b, "## %s\n", commentaryTitle(d.Commentary))
		for _, s := range d.Commentary.Sections {
			fmt.Fprintf(&b, "### %s\n%s\n\n", s.Heading, s.Body)
		}
	}

	return b.String()
}

func writeRanked(b *strings.Builder, heading string, t *model.Table) {
	fmt.Fprintf(b, "%s\n", heading)
	for _, row := range t.Rows {
		fmt.Fprintf(b, "- %s: spread score %s\n",
			groupLabel(row.Str(model.ColProjectName)),
			printer.Sprintf("%.2f", row.Float(model.ColAvgMonthlySpreadScore)))
	}
	b.WriteString("\n")
}

func groupLabel(key string) string {
	if key == "" {
		return "(unassigned)"
	}
	return key
}

func commentaryTitle(c *Commentary) string {
	if c.Title != "" {
		return c.Title
	}
	return "Commentary"
}
