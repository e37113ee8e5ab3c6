package model

import "time"

// RunStatus tracks the lifecycle of a pipeline run.
type RunStatus string

const (
	RunStatusQueued   RunStatus = "queued"
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// RunMetrics holds the headline scalar aggregates of a derived table.
type RunMetrics struct {
	Projects         int     `json:"projects"`
	TotalActuals     float64 `json:"total_actuals"`
	TotalForecasts   float64 `json:"total_forecasts"`
	TotalCapitalPlan float64 `json:"total_capital_plan"`
	TotalAllocation  float64 `json:"total_allocation"`
	NetReallocation  float64 `json:"net_reallocation"`
	MeanSpreadScore  float64 `json:"mean_spread_score"`
}

// Run records one pipeline invocation over one uploaded file.
type Run struct {
	ID          string     `json:"id"`
	Source      string     `json:"source"`
	Fingerprint string     `json:"fingerprint"`
	Status      RunStatus  `json:"status"`
	Metrics     RunMetrics `json:"metrics"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
