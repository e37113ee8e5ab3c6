package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/capital-cli/internal/model"
)

func asOf(t *testing.T, date string) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02", date)
	assert.NoError(t, err)
	return ts
}

func deriveFixture(t *testing.T, opts Options) *model.Table {
	t.Helper()
	columns := []string{
		model.ColProjectName,
		model.ColBusinessAllocation,
		model.ColPriorYearsActuals,
		"2025_01_A", "2025_02_A",
		"2025_01_F", "2025_02_F",
		"2025_01_CP",
	}
	table := model.NewTable(columns, [][]string{
		// underspend: allocation 1000 vs forecasts 190
		{"Alpha", "1000", "50", "100", "110", "90", "100", "500"},
		// overspend: allocation 500 vs forecasts 800
		{"Beta", "500", "0", "400", "450", "400", "400", "600"},
	})
	CoerceFinancial(table)
	cls := Classify(table.Columns, opts.AsOf.Year())
	DeriveMetrics(table, cls, opts)
	return table
}

func TestDeriveMetricsTotals(t *testing.T) {
	table := deriveFixture(t, Options{AsOf: asOf(t, "2025-06-15")})
	alpha := table.Rows[0]

	assert.Equal(t, 210.0, alpha.Float(model.ColTotalActuals))
	assert.Equal(t, 190.0, alpha.Float(model.ColTotalForecasts))
	assert.Equal(t, 500.0, alpha.Float(model.ColTotalCapitalPlan))
	assert.Equal(t, 260.0, alpha.Float(model.ColTotalActualsToDate))
	assert.Equal(t, 210.0, alpha.Float(model.ColSumActualSpendYTD))
	assert.InDelta(t, 400.0/12, alpha.Float(model.ColRunRatePerMonth), 1e-9)
	assert.Equal(t, 20.0, alpha.Float(model.ColTotalSpendVariance))
}

func TestDeriveMetricsVarianceSides(t *testing.T) {
	table := deriveFixture(t, Options{AsOf: asOf(t, "2025-06-15")})
	alpha, beta := table.Rows[0], table.Rows[1]

	assert.Equal(t, 810.0, alpha.Float(model.ColCapitalVariance))
	assert.Equal(t, 810.0, alpha.Float(model.ColCapitalUnderspend))
	assert.Equal(t, 0.0, alpha.Float(model.ColCapitalOverspend))
	assert.Equal(t, 810.0, alpha.Float(model.ColNetReallocation))

	assert.Equal(t, -300.0, beta.Float(model.ColCapitalVariance))
	assert.Equal(t, 0.0, beta.Float(model.ColCapitalUnderspend))
	assert.Equal(t, 300.0, beta.Float(model.ColCapitalOverspend))
	assert.Equal(t, -300.0, beta.Float(model.ColNetReallocation))
}

func TestDeriveMetricsSpreadScore(t *testing.T) {
	table := deriveFixture(t, Options{AsOf: asOf(t, "2025-06-15")})
	alpha := table.Rows[0]

	// |100-90| and |110-100| average to 10.
	assert.Equal(t, 10.0, alpha.Float(model.ColAvgMonthlySpreadScore))
	assert.Equal(t, 10.0, alpha.Float(AFVarianceColumn(2025, 1)))
	assert.Equal(t, 10.0, alpha.Float(AFVarianceColumn(2025, 2)))
	assert.True(t, table.HasColumn(AFVarianceColumn(2025, 1)))
	assert.True(t, table.HasColumn(AFVarianceColumn(2025, 2)))
}

func TestDeriveMetricsYTDRespectsAsOfMonth(t *testing.T) {
	table := deriveFixture(t, Options{AsOf: asOf(t, "2025-01-31")})
	alpha := table.Rows[0]

	assert.Equal(t, 100.0, alpha.Float(model.ColSumActualSpendYTD))
	// One month elapsed, so the average divides by 1, not 2.
	assert.Equal(t, 100.0, alpha.Float(model.ColAvgActualSpend))
}

func TestDeriveMetricsAverageDenominatorsFloorAtOne(t *testing.T) {
	columns := []string{model.ColProjectName, model.ColPriorYearsActuals}
	table := model.NewTable(columns, [][]string{{"Gamma", "25"}})
	CoerceFinancial(table)
	cls := Classify(columns, 2025)
	DeriveMetrics(table, cls, Options{AsOf: asOf(t, "2025-06-15")})

	row := table.Rows[0]
	assert.Equal(t, 0.0, row.Float(model.ColAvgActualSpend))
	assert.Equal(t, 0.0, row.Float(model.ColAvgForecastSpend))
	assert.Equal(t, 0.0, row.Float(model.ColAvgMonthlySpreadScore))
	assert.Equal(t, 25.0, row.Float(model.ColTotalActualsToDate))
	// No allocation column means no variance, not a phantom underspend.
	assert.Equal(t, 0.0, row.Float(model.ColCapitalVariance))
}

func TestDeriveMetricsMissingMonthPolicies(t *testing.T) {
	build := func(policy MissingMonthPolicy) model.Row {
		columns := []string{
			model.ColProjectName,
			"2025_01_A", "2025_02_A",
			"2025_01_F",
		}
		table := model.NewTable(columns, [][]string{{"Delta", "100", "60", "80"}})
		CoerceFinancial(table)
		cls := Classify(columns, 2025)
		DeriveMetrics(table, cls, Options{AsOf: asOf(t, "2025-06-15"), MissingMonth: policy})
		return table.Rows[0]
	}

	// Excluded: only January has both sides, score = |100-80| = 20.
	excluded := build(MissingMonthExcluded)
	assert.Equal(t, 20.0, excluded.Float(model.ColAvgMonthlySpreadScore))
	_, hasFeb := excluded[AFVarianceColumn(2025, 2)]
	assert.False(t, hasFeb)

	// Zero: February counts with forecast 0, score = (20 + 60) / 2 = 40.
	zero := build(MissingMonthZero)
	assert.Equal(t, 40.0, zero.Float(model.ColAvgMonthlySpreadScore))
	assert.Equal(t, 60.0, zero.Float(AFVarianceColumn(2025, 2)))
}

func TestMissingMonthPolicyValid(t *testing.T) {
	assert.True(t, MissingMonthExcluded.Valid())
	assert.True(t, MissingMonthZero.Valid())
	assert.False(t, MissingMonthPolicy("sometimes").Valid())
	assert.False(t, MissingMonthPolicy("").Valid())
}
