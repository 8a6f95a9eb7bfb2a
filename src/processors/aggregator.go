package processors

import (
	"math"
	"strings"

	"github.com/username/cafeledger/backend/src/models"
)

// Aggregation holds the unrounded fold of one upload's transactions.
// Rollup maps are keyed by the case-normalized name; the Rollup's Name field
// keeps the first-seen original casing for display.
type Aggregation struct {
	Summary    models.Summary
	Items      map[string]*models.Rollup
	Categories map[string]*models.Rollup
	Daily      map[string]*models.DailyRollup
}

type Aggregator struct{}

func NewAggregator() *Aggregator { return &Aggregator{} }

// Aggregate folds the accepted transactions into the overall summary plus
// per-item, per-category and per-day rollups. fixedCosts below zero is
// treated as 0. Internal accumulation keeps full float64 precision; rounding
// happens at the formatting boundary only.
func (a *Aggregator) Aggregate(txs []models.Transaction, fixedCosts float64) Aggregation {
	if fixedCosts < 0 {
		fixedCosts = 0
	}

	agg := Aggregation{
		Items:      make(map[string]*models.Rollup),
		Categories: make(map[string]*models.Rollup),
		Daily:      make(map[string]*models.DailyRollup),
	}

	var totalRevenue, totalCOGS float64
	var totalUnits int64

	for _, tx := range txs {
		revenue := tx.Revenue()
		cogs := tx.COGS()

		totalRevenue += revenue
		totalCOGS += cogs
		totalUnits += tx.Quantity

		accumulate(agg.Items, tx.Item, revenue, cogs, tx.Quantity)
		accumulate(agg.Categories, tx.Category, revenue, cogs, tx.Quantity)

		day := tx.Date.Format("2006-01-02")
		daily, ok := agg.Daily[day]
		if !ok {
			daily = &models.DailyRollup{}
			agg.Daily[day] = daily
		}
		daily.Revenue += revenue
		daily.Cost += cogs
		daily.Transactions++
	}

	grossProfit := totalRevenue - totalCOGS
	netProfit := grossProfit - fixedCosts

	s := models.Summary{
		TotalRevenue:   totalRevenue,
		TotalCOGS:      totalCOGS,
		GrossProfit:    grossProfit,
		FixedCosts:     fixedCosts,
		NetProfit:      netProfit,
		TotalUnitsSold: totalUnits,
		NumDays:        len(agg.Daily),
	}

	// Percentages report 0 when there is no revenue, never NaN.
	if totalRevenue > 0 {
		s.GrossMarginPct = grossProfit / totalRevenue * 100
		s.NetMarginPct = netProfit / totalRevenue * 100
		s.FoodCostPct = totalCOGS / totalRevenue * 100
	}

	if len(txs) > 0 {
		s.AvgOrderValue = totalRevenue / float64(len(txs))
	}

	s.BreakEvenUnits = breakEvenUnits(grossProfit, totalUnits, fixedCosts)

	if s.NumDays > 0 {
		s.AvgDailyRevenue = totalRevenue / float64(s.NumDays)
		s.AvgDailyTransactions = float64(len(txs)) / float64(s.NumDays)
	}

	agg.Summary = s
	return agg
}

// breakEvenUnits returns the units needed so gross profit covers fixed
// costs, or nil when the average per-unit contribution margin is zero or
// negative and break-even is unreachable at any volume.
func breakEvenUnits(grossProfit float64, totalUnits int64, fixedCosts float64) *int64 {
	if totalUnits == 0 {
		return nil
	}
	contribution := grossProfit / float64(totalUnits)
	if contribution <= 0 {
		return nil
	}
	units := int64(math.Ceil(fixedCosts / contribution))
	return &units
}

func accumulate(groups map[string]*models.Rollup, name string, revenue, cogs float64, quantity int64) {
	key := strings.ToLower(strings.TrimSpace(name))
	group, ok := groups[key]
	if !ok {
		group = &models.Rollup{Name: strings.TrimSpace(name)}
		groups[key] = group
	}
	group.Revenue += revenue
	group.Cost += cogs
	group.Profit += revenue - cogs
	group.Quantity += quantity
}
