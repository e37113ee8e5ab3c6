package report

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/capital-cli/internal/model"
	"github.com/sells-group/capital-cli/internal/pipeline"
)

func buildFixture(t *testing.T) *Data {
	t.Helper()
	headers := []string{
		"Project Name", "Project Manager", "Bus Area Allocation",
		"2025_01_A", "2025_02_A", "2025_01_F", "2025_02_F",
	}
	records := [][]string{
		// 230 actual vs 100 allocation: well over the 10% threshold.
		{"Alpha", "Kim", "100", "120", "110", "100", "100"},
		// 80 actual vs 100 allocation: 20% under.
		{"Beta", "Lee", "100", "40", "40", "40", "40"},
	}
	asOf, err := time.Parse("2006-01-02", "2025-06-15")
	assert.NoError(t, err)

	res, err := pipeline.Run(headers, records, pipeline.Options{AsOf: asOf})
	assert.NoError(t, err)

	return Build("budget.csv", res, res.Table, Options{
		GeneratedAt: asOf,
		Commentary: &Commentary{
			Title:    "Quarterly Notes",
			Sections: []CommentarySection{{Heading: "Outlook", Body: "Spend tracking improves."}},
		},
	})
}

func TestBuildDefaultsAndHighlights(t *testing.T) {
	d := buildFixture(t)

	assert.Equal(t, "budget.csv", d.Source)
	assert.Equal(t, 2, d.Metrics.Projects)
	assert.Len(t, d.Groups, 2)
	assert.Len(t, d.Over, 1)
	assert.Equal(t, "Alpha", d.Over[0].Key)
	assert.Len(t, d.Under, 1)
	assert.Equal(t, "Beta", d.Under[0].Key)

	// Beta has the flatter actual/forecast spread, so it ranks most
	// predictable.
	assert.Equal(t, "Beta", d.Top.Rows[0].Str(model.ColProjectName))
	assert.Equal(t, "Alpha", d.Bottom.Rows[0].Str(model.ColProjectName))
}

func TestFormatText(t *testing.T) {
	out := FormatText(buildFixture(t))

	assert.Contains(t, out, "# Capital Monitoring Report: budget.csv")
	assert.Contains(t, out, "As of: 2025-06-15")
	assert.Contains(t, out, "## Key Metrics")
	assert.Contains(t, out, "- OVER  Alpha")
	assert.Contains(t, out, "- UNDER Beta")
	assert.Contains(t, out, "## Most Predictable Spend")
	assert.Contains(t, out, "## Quarterly Notes")
	assert.Contains(t, out, "Spend tracking improves.")
}

func TestFormatTextNoData(t *testing.T) {
	res := &pipeline.Result{Table: &model.Table{}, AsOf: time.Now()}
	d := Build("empty.csv", res, res.Table, Options{})

	out := FormatText(d)
	assert.Contains(t, out, "No data for the selected projects")
	assert.NotContains(t, out, "## Key Metrics")
}

func TestDeviationFormatting(t *testing.T) {
	assert.Equal(t, "20.00%", deviation(20))
	assert.Equal(t, "-12.50%", deviation(-12.5))
	assert.Equal(t, "over budget (no allocation)", deviation(math.Inf(1)))
}

func TestMoneyFormatting(t *testing.T) {
	assert.Equal(t, "$1,234.50", money(1234.5))
	assert.Equal(t, "$-20.00", money(-20))
	assert.Equal(t, "$1,000,000.00", money(1e6))
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, WriteHTML(&buf, buildFixture(t)))
	out := buf.String()

	assert.Contains(t, out, "Capital and Budget Monitoring Report")
	assert.Contains(t, out, `<span class="red-text">Alpha</span>`)
	assert.Contains(t, out, `<span class="green-text">Beta</span>`)
	assert.Contains(t, out, "Projects over 10% or under -10% of budget:")
	assert.Contains(t, out, "Quarterly Notes")
}

func TestWriteHTMLNoData(t *testing.T) {
	res := &pipeline.Result{Table: &model.Table{}, AsOf: time.Now()}
	d := Build("empty.csv", res, res.Table, Options{})

	var buf bytes.Buffer
	assert.NoError(t, WriteHTML(&buf, d))
	assert.Contains(t, buf.String(), "No data available for the selected projects")
}

func TestWriteTableCSVRoundTrips(t *testing.T) {
	table := &model.Table{
		Columns: []string{"PROJECT_NAME", "TOTAL_ACTUALS"},
		Rows: []model.Row{
			{"PROJECT_NAME": "Alpha", "TOTAL_ACTUALS": 1234.5},
		},
	}

	var buf bytes.Buffer
	assert.NoError(t, WriteTableCSV(&buf, table))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, "PROJECT_NAME,TOTAL_ACTUALS", lines[0])
	assert.Equal(t, "Alpha,1234.5", lines[1])
}

func TestWriteSummaryCSV(t *testing.T) {
	var buf bytes.Buffer
	groups := []pipeline.GroupSummary{
		{Key: "Alpha", Projects: 1, TotalActuals: 230, PercentDeviation: 130},
	}
	assert.NoError(t, WriteSummaryCSV(&buf, groups))

	out := buf.String()
	assert.Contains(t, out, "group,projects,total_actuals")
	assert.Contains(t, out, "Alpha,1,230")
}

func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	assert.NoError(t, WriteWorkbook(path, buildFixture(t)))

	info, err := os.Stat(path)
	assert.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestLoadCommentary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "commentary.yaml")
	assert.NoError(t, os.WriteFile(path, []byte(
		"title: Q2 Review\nsections:\n  - heading: Summary\n    body: On track.\n"), 0o644))

	c, err := LoadCommentary(path)
	assert.NoError(t, err)
	assert.Equal(t, "Q2 Review", c.Title)
	assert.Len(t, c.Sections, 1)
	assert.Equal(t, "On track.", c.Sections[0].Body)

	_, err = LoadCommentary(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
