package model

// Canonical descriptor columns. All optional; consumers treat them as
// absent-safe.
const (
	ColProjectID      = "PROJECT_ID"
	ColProjectName    = "PROJECT_NAME"
	ColProjectManager = "PROJECT_MANAGER"
	ColPortfolioLevel = "PORTFOLIO_LEVEL"
	ColClassification = "CLASSIFICATION"
	ColFundDecision   = "FUND_DECISION"
)

// Canonical financial input columns.
const (
	ColBusinessAllocation = "BUSINESS_ALLOCATION"
	ColCurrentEAC         = "CURRENT_EAC"
	ColPriorYearsActuals  = "PRIOR_YEARS_ACTUALS"
)

// Derived columns appended by the metrics deriver.
const (
	ColTotalActuals          = "TOTAL_ACTUALS"
	ColTotalForecasts        = "TOTAL_FORECASTS"
	ColTotalCapitalPlan      = "TOTAL_CAPITAL_PLAN"
	ColTotalActualsToDate    = "TOTAL_ACTUALS_TO_DATE"
	ColSumActualSpendYTD     = "SUM_ACTUAL_SPEND_YTD"
	ColRunRatePerMonth       = "RUN_RATE_PER_MONTH"
	ColCapitalVariance       = "CAPITAL_VARIANCE"
	ColCapitalUnderspend     = "CAPITAL_UNDERSPEND"
	ColCapitalOverspend      = "CAPITAL_OVERSPEND"
	ColNetReallocation       = "NET_REALLOCATION_AMOUNT"
	ColAvgActualSpend        = "AVG_ACTUAL_SPEND"
	ColAvgForecastSpend      = "AVG_FORECAST_SPEND"
	ColTotalSpendVariance    = "TOTAL_SPEND_VARIANCE"
	ColAvgMonthlySpreadScore = "AVERAGE_MONTHLY_SPREAD_SCORE"
)
