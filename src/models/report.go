package models

// Summary holds the aggregate totals for a single analyze request. All
// monetary fields are rounded to 2 decimal places at the formatting boundary;
// during aggregation full float64 precision is kept.
type Summary struct {
	TotalRevenue   float64 `json:"total_revenue"`
	TotalCOGS      float64 `json:"total_cogs"`
	GrossProfit    float64 `json:"gross_profit"`
	GrossMarginPct float64 `json:"gross_margin_pct"`
	FixedCosts     float64 `json:"fixed_costs"`
	NetProfit      float64 `json:"net_profit"`
	NetMarginPct   float64 `json:"net_margin_pct"`
	FoodCostPct    float64 `json:"food_cost_pct"`
	TotalUnitsSold int64   `json:"total_units_sold"`
	AvgOrderValue  float64 `json:"avg_order_value"`

	// BreakEvenUnits is nil when break-even is unreachable: per-unit
	// contribution margin is zero or negative, so no sales volume covers
	// the fixed costs. Serialized as JSON null in that case.
	BreakEvenUnits *int64 `json:"break_even_units"`

	NumDays              int     `json:"num_days"`
	AvgDailyRevenue      float64 `json:"avg_daily_revenue"`
	AvgDailyTransactions float64 `json:"avg_daily_transactions"`
}

// Metrics is the computed-metrics section of the analyze response.
type Metrics struct {
	Summary    Summary                `json:"summary"`
	TopItems   []Rollup               `json:"top_items"`
	WorstItems []Rollup               `json:"worst_items"`
	Categories map[string]Rollup      `json:"categories"`
	Daily      map[string]DailyRollup `json:"daily"`
}

// Recommendation is the outcome of the AI narrative step. Available
// distinguishes "metrics computed, narrative unavailable" from a delivered
// narrative; Detail carries the human-readable reason when unavailable.
type Recommendation struct {
	Available bool   `json:"available"`
	Narrative string `json:"narrative,omitempty"`
	Model     string `json:"model,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

// AnalysisReport is the full response handed back to the caller of the
// analyze endpoint.
type AnalysisReport struct {
	POSFormatDetected      string         `json:"pos_format_detected"`
	RowsProcessed          int            `json:"rows_processed"`
	RowsDiscarded          int            `json:"rows_discarded"`
	MarginAnalysisDegraded bool           `json:"margin_analysis_degraded"`
	Metrics                Metrics        `json:"metrics"`
	Recommendations        Recommendation `json:"recommendations"`
	AnalyzedAt             string         `json:"analyzed_at"`
}
