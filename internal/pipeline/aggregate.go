package pipeline

import (
	"math"
	"sort"

	"github.com/sells-group/capital-cli/internal/model"
)

// PercentDeviation computes the legacy summary metric (actual − budget) /
// budget × 100. A positive spend against a zero budget reads as +Inf;
// consumers must render that as "over budget" and never do arithmetic on it.
// Zero spend against a zero budget reads as 0.
func PercentDeviation(actual, budget float64) float64 {
	if budget == 0 {
		if actual > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return (actual - budget) / budget * 100
}

// GroupSummary is one aggregated row of a grouped view. The csv tags feed
// the summary CSV export.
type GroupSummary struct {
	Key              string  `json:"key" csv:"group"`
	Projects         int     `json:"projects" csv:"projects"`
	TotalActuals     float64 `json:"total_actuals" csv:"total_actuals"`
	TotalForecasts   float64 `json:"total_forecasts" csv:"total_forecasts"`
	TotalCapitalPlan float64 `json:"total_capital_plan" csv:"total_capital_plan"`
	TotalAllocation  float64 `json:"total_allocation" csv:"total_allocation"`
	NetReallocation  float64 `json:"net_reallocation" csv:"net_reallocation"`
	MeanSpreadScore  float64 `json:"mean_spread_score" csv:"mean_spread_score"`
	PercentDeviation float64 `json:"percent_deviation" csv:"percent_deviation"`
}

// Summarize groups the derived table by a categorical column and sums the
// headline figures per group. Groups appear in first-seen row order; rows
// with an absent key fall into the "" group.
func Summarize(t *model.Table, groupKey string) []GroupSummary {
	index := make(map[string]int)
	var groups []GroupSummary

	for _, row := range t.Rows {
		key := row.Str(groupKey)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, GroupSummary{Key: key})
		}
		g := &groups[i]
		g.Projects++
		g.TotalActuals += row.Float(model.ColTotalActuals)
		g.TotalForecasts += row.Float(model.ColTotalForecasts)
		g.TotalCapitalPlan += row.Float(model.ColTotalCapitalPlan)
		g.TotalAllocation += row.Float(model.ColBusinessAllocation)
		g.NetReallocation += row.Float(model.ColNetReallocation)
		g.MeanSpreadScore += row.Float(model.ColAvgMonthlySpreadScore)
	}

	for i := range groups {
		g := &groups[i]
		g.MeanSpreadScore /= float64(g.Projects)
		g.PercentDeviation = PercentDeviation(g.TotalActuals, g.TotalAllocation)
	}
	return groups
}

// RankBy returns a copy of the table sorted by a numeric column. The sort is
// stable so equal scores keep their original row order, and top-N slices are
// always consistent with the global sort.
func RankBy(t *model.Table, key string, descending bool) *model.Table {
	out := &model.Table{Columns: t.Columns, Rows: make([]model.Row, len(t.Rows))}
	copy(out.Rows, t.Rows)
	sort.SliceStable(out.Rows, func(i, j int) bool {
		a, b := out.Rows[i].Float(key), out.Rows[j].Float(key)
		if descending {
			return a > b
		}
		return a < b
	})
	return out
}

// TopN returns the first n rows of the table ranked ascending by key.
// Lower spread score means more predictable spend, so ascending rank puts
// the best performers first.
func TopN(t *model.Table, key string, n int) *model.Table {
	return truncate(RankBy(t, key, false), n)
}

// BottomN returns the first n rows of the table ranked descending by key.
func BottomN(t *model.Table, key string, n int) *model.Table {
	return truncate(RankBy(t, key, true), n)
}

func truncate(t *model.Table, n int) *model.Table {
	if n >= 0 && n < len(t.Rows) {
		t.Rows = t.Rows[:n]
	}
	return t
}

// Highlights splits groups into over- and under-budget lists using a strict
// percentage threshold: deviation > threshold flags over, < −threshold flags
// under, exactly at the threshold is not flagged. +Inf deviations flag over.
func Highlights(groups []GroupSummary, threshold float64) (over, under []GroupSummary) {
	for _, g := range groups {
		switch {
		case g.PercentDeviation > threshold:
			over = append(over, g)
		case g.PercentDeviation < -threshold:
			under = append(under, g)
		}
	}
	return over, under
}

// ComputeKeyMetrics reduces the derived table to its headline scalars.
func ComputeKeyMetrics(t *model.Table) model.RunMetrics {
	m := model.RunMetrics{Projects: t.Len()}
	for _, row := range t.Rows {
		m.TotalActuals += row.Float(model.ColTotalActuals)
		m.TotalForecasts += row.Float(model.ColTotalForecasts)
		m.TotalCapitalPlan += row.Float(model.ColTotalCapitalPlan)
		m.TotalAllocation += row.Float(model.ColBusinessAllocation)
		m.NetReallocation += row.Float(model.ColNetReallocation)
		m.MeanSpreadScore += row.Float(model.ColAvgMonthlySpreadScore)
	}
	if m.Projects > 0 {
		m.MeanSpreadScore /= float64(m.Projects)
	}
	return m
}
