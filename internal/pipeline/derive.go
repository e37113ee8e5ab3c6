package pipeline

import (
	"math"
	"sort"
	"time"

	"github.com/sells-group/capital-cli/internal/model"
)

// MissingMonthPolicy controls how a month with only one side of the
// actual/forecast pair contributes to the spread score. The two upstream
// report variants disagreed here, so the choice is explicit.
type MissingMonthPolicy string

const (
	// MissingMonthExcluded drops months that lack either column from the
	// spread-score average.
	MissingMonthExcluded MissingMonthPolicy = "excluded"
	// MissingMonthZero treats the missing side as 0 and keeps the month in
	// the average, biasing the score toward "predictable".
	MissingMonthZero MissingMonthPolicy = "zero"
)

// Valid reports whether the policy is one of the two known values.
func (p MissingMonthPolicy) Valid() bool {
	return p == MissingMonthExcluded || p == MissingMonthZero
}

// Options parameterizes the classifier and deriver. AsOf replaces any
// ambient clock read so runs are reproducible and tests can pin a date.
type Options struct {
	AsOf         time.Time
	MissingMonth MissingMonthPolicy
}

func (o Options) withDefaults() Options {
	if o.AsOf.IsZero() {
		o.AsOf = time.Now()
	}
	if o.MissingMonth == "" {
		o.MissingMonth = MissingMonthExcluded
	}
	return o
}

// AFVarianceColumn is the canonical name of the per-month actual/forecast
// variance column appended by the deriver.
func AFVarianceColumn(year, month int) string {
	return MonthlyColumnName(year, month, "AF_VARIANCE")
}

// DeriveMetrics computes every derived field and appends it as a new column,
// one pass over the table, no row dropped. Average-spend denominators floor
// at 1 so a project with zero recorded months gets a defined zero average
// instead of NaN.
func DeriveMetrics(t *model.Table, cls Classification, opts Options) {
	opts = opts.withDefaults()
	year := opts.AsOf.Year()
	currentMonth := int(opts.AsOf.Month())

	actualByMonth := make(map[int]string, len(cls.Actuals))
	for _, mc := range cls.Actuals {
		actualByMonth[mc.Month] = mc.Name
	}
	forecastByMonth := make(map[int]string, len(cls.Forecasts))
	for _, mc := range cls.Forecasts {
		forecastByMonth[mc.Month] = mc.Name
	}
	varianceMonths := spreadMonths(actualByMonth, forecastByMonth, opts.MissingMonth)

	hasAllocation := t.HasColumn(model.ColBusinessAllocation)

	for _, row := range t.Rows {
		totalActuals := sumColumns(row, cls.Actuals)
		totalForecasts := sumColumns(row, cls.Forecasts)
		totalPlan := sumColumns(row, cls.Plans)

		row[model.ColTotalActuals] = totalActuals
		row[model.ColTotalForecasts] = totalForecasts
		row[model.ColTotalCapitalPlan] = totalPlan
		row[model.ColTotalActualsToDate] = row.Float(model.ColPriorYearsActuals) + totalActuals

		ytdSum := 0.0
		ytdMonths := 0
		for _, mc := range cls.Actuals {
			if mc.Month <= currentMonth {
				ytdSum += row.Float(mc.Name)
				ytdMonths++
			}
		}
		row[model.ColSumActualSpendYTD] = ytdSum
		row[model.ColRunRatePerMonth] = (totalActuals + totalForecasts) / 12

		variance := 0.0
		if hasAllocation {
			variance = row.Float(model.ColBusinessAllocation) - totalForecasts
		}
		underspend, overspend := 0.0, 0.0
		if variance > 0 {
			underspend = variance
		} else if variance < 0 {
			overspend = -variance
		}
		row[model.ColCapitalVariance] = variance
		row[model.ColCapitalUnderspend] = underspend
		row[model.ColCapitalOverspend] = overspend
		row[model.ColNetReallocation] = underspend - overspend

		row[model.ColAvgActualSpend] = ytdSum / float64(max(1, ytdMonths))
		row[model.ColAvgForecastSpend] = totalForecasts / float64(max(1, len(cls.Forecasts)))
		row[model.ColTotalSpendVariance] = totalActuals - totalForecasts

		spreadSum := 0.0
		for _, month := range varianceMonths {
			v := row.Float(actualByMonth[month]) - row.Float(forecastByMonth[month])
			row[AFVarianceColumn(year, month)] = v
			spreadSum += math.Abs(v)
		}
		if len(varianceMonths) > 0 {
			row[model.ColAvgMonthlySpreadScore] = spreadSum / float64(len(varianceMonths))
		} else {
			row[model.ColAvgMonthlySpreadScore] = 0.0
		}
	}

	for _, col := range []string{
		model.ColTotalActuals,
		model.ColTotalForecasts,
		model.ColTotalCapitalPlan,
		model.ColTotalActualsToDate,
		model.ColSumActualSpendYTD,
		model.ColRunRatePerMonth,
		model.ColCapitalVariance,
		model.ColCapitalUnderspend,
		model.ColCapitalOverspend,
		model.ColNetReallocation,
		model.ColAvgActualSpend,
		model.ColAvgForecastSpend,
		model.ColTotalSpendVariance,
	} {
		t.AddColumn(col)
	}
	for _, month := range varianceMonths {
		t.AddColumn(AFVarianceColumn(year, month))
	}
	t.AddColumn(model.ColAvgMonthlySpreadScore)
}

// spreadMonths returns the months included in the spread-score average,
// ascending. Excluded policy: months present on both sides. Zero policy:
// months present on either side, the missing side reading as 0.
func spreadMonths(actuals, forecasts map[int]string, policy MissingMonthPolicy) []int {
	var months []int
	switch policy {
	case MissingMonthZero:
		seen := make(map[int]bool)
		for m := range actuals {
			seen[m] = true
		}
		for m := range forecasts {
			seen[m] = true
		}
		for m := range seen {
			months = append(months, m)
		}
	default:
		for m := range actuals {
			if _, ok := forecasts[m]; ok {
				months = append(months, m)
			}
		}
	}
	sort.Ints(months)
	return months
}

func sumColumns(row model.Row, cols []MonthlyColumn) float64 {
	total := 0.0
	for _, mc := range cols {
		total += row.Float(mc.Name)
	}
	return total
}
