package pipeline

import (
	"fmt"
	"regexp"
	"strconv"
)

// MonthKind tags a canonical column by the monthly figure it carries.
type MonthKind string

const (
	KindOther    MonthKind = "other"
	KindActual   MonthKind = "actual"
	KindForecast MonthKind = "forecast"
	KindPlan     MonthKind = "plan"
)

// MonthlyColumn is a classified year/month/type column.
type MonthlyColumn struct {
	Name  string    `json:"name"`
	Year  int       `json:"year"`
	Month int       `json:"month"`
	Kind  MonthKind `json:"kind"`
}

// Classification partitions a header set into the three monthly column
// classes, each preserving original column order.
type Classification struct {
	Actuals   []MonthlyColumn `json:"actuals"`
	Forecasts []MonthlyColumn `json:"forecasts"`
	Plans     []MonthlyColumn `json:"plans"`
}

// Empty reports whether no monthly column was recognized.
func (c Classification) Empty() bool {
	return len(c.Actuals) == 0 && len(c.Forecasts) == 0 && len(c.Plans) == 0
}

var monthlyRe = regexp.MustCompile(`^(\d{4})_(\d{2})_(A|F|CP)$`)

var suffixKinds = map[string]MonthKind{
	"A":  KindActual,
	"F":  KindForecast,
	"CP": KindPlan,
}

// ClassifyColumn matches a canonical column name against the strict
// {year}_{MM}_{A|F|CP} pattern scoped to the given year. Columns for any
// other year, or with a malformed month or suffix, come back as KindOther.
// The month is only validated to be two digits; a "13" month is accepted and
// produces a defined, if useless, downstream result rather than a crash.
func ClassifyColumn(name string, year int) MonthlyColumn {
	m := monthlyRe.FindStringSubmatch(name)
	if m == nil {
		return MonthlyColumn{Name: name, Kind: KindOther}
	}
	colYear, _ := strconv.Atoi(m[1])
	if colYear != year {
		// Mixing prior-year monthly figures into current-year totals
		// corrupts every downstream sum, so out-of-year columns are
		// excluded outright.
		return MonthlyColumn{Name: name, Kind: KindOther}
	}
	month, _ := strconv.Atoi(m[2])
	return MonthlyColumn{Name: name, Year: colYear, Month: month, Kind: suffixKinds[m[3]]}
}

// Classify partitions canonical column names into actual, forecast, and
// capital-plan classes for the given year. A table with no matching columns
// yields three empty lists; downstream totals become 0, not an error.
func Classify(columns []string, year int) Classification {
	var cls Classification
	for _, name := range columns {
		mc := ClassifyColumn(name, year)
		switch mc.Kind {
		case KindActual:
			cls.Actuals = append(cls.Actuals, mc)
		case KindForecast:
			cls.Forecasts = append(cls.Forecasts, mc)
		case KindPlan:
			cls.Plans = append(cls.Plans, mc)
		}
	}
	return cls
}

// MonthlyColumnName builds the canonical name for a monthly column.
func MonthlyColumnName(year, month int, suffix string) string {
	return fmt.Sprintf("%d_%02d_%s", year, month, suffix)
}
