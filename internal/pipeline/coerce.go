package pipeline

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sells-group/capital-cli/internal/model"
)

// monthlyAnyYearRe matches monthly columns for any year. Coercion is
// deliberately broader than classification: prior-year monthly columns still
// get numeric cells even though they never enter current-year totals.
var monthlyAnyYearRe = regexp.MustCompile(`^\d{4}_\d{2}_(A|F|CP)$`)

// financialColumns is the fixed allow-list of exact metric names whose cells
// are coerced to numbers.
var financialColumns = map[string]struct{}{
	model.ColBusinessAllocation:    {},
	model.ColCurrentEAC:            {},
	model.ColPriorYearsActuals:     {},
	model.ColTotalActuals:          {},
	model.ColTotalForecasts:        {},
	model.ColTotalCapitalPlan:      {},
	model.ColTotalActualsToDate:    {},
	model.ColSumActualSpendYTD:     {},
	model.ColRunRatePerMonth:       {},
	model.ColCapitalVariance:       {},
	model.ColCapitalUnderspend:     {},
	model.ColCapitalOverspend:      {},
	model.ColNetReallocation:       {},
	model.ColAvgActualSpend:        {},
	model.ColAvgForecastSpend:      {},
	model.ColTotalSpendVariance:    {},
	model.ColAvgMonthlySpreadScore: {},
}

// IsFinancialColumn reports whether a canonical column name is expected to
// hold money values.
func IsFinancialColumn(name string) bool {
	if _, ok := financialColumns[name]; ok {
		return true
	}
	return monthlyAnyYearRe.MatchString(name)
}

// ParseAmount converts a raw cell into a number. Whitespace is stripped,
// thousands separators removed, and an empty cell reads as 0. Unparseable
// values become 0 — financial cells are best-effort, never an error.
func ParseAmount(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case nil:
		return 0
	}
	s := strings.TrimSpace(toString(v))
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// CoerceFinancial rewrites every financial column in place to float64 cells.
func CoerceFinancial(t *model.Table) {
	for _, col := range t.Columns {
		if !IsFinancialColumn(col) {
			continue
		}
		for _, row := range t.Rows {
			row[col] = ParseAmount(row[col])
		}
	}
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if v == nil {
		return ""
	}
	return strings.TrimSpace(strconvAppend(v))
}

func strconvAppend(v any) string {
	switch n := v.(type) {
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case int:
		return strconv.Itoa(n)
	case bool:
		return strconv.FormatBool(n)
	default:
		return ""
	}
}
