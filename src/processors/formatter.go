package processors

import (
	"sort"

	"github.com/username/cafeledger/backend/src/models"
	"github.com/username/cafeledger/backend/src/utils"
)

// MetricsFormatter shapes an Aggregation into the externally-visible Metrics
// object: monetary values rounded to 2 decimal places, item groups ranked
// and truncated to the top/worst N. Pure and deterministic given its inputs.
type MetricsFormatter struct {
	topN int
}

func NewMetricsFormatter(topN int) *MetricsFormatter {
	return &MetricsFormatter{topN: topN}
}

func (f *MetricsFormatter) Format(agg Aggregation) models.Metrics {
	byProfitDesc := rankedRollups(agg.Items, false)
	byProfitAsc := rankedRollups(agg.Items, true)

	top := make([]models.Rollup, 0, f.topN)
	for i := 0; i < len(byProfitDesc) && i < f.topN; i++ {
		top = append(top, roundRollup(byProfitDesc[i]))
	}

	worst := make([]models.Rollup, 0, f.topN)
	for i := 0; i < len(byProfitAsc) && i < f.topN; i++ {
		worst = append(worst, roundRollup(byProfitAsc[i]))
	}

	categories := make(map[string]models.Rollup, len(agg.Categories))
	for _, group := range agg.Categories {
		categories[group.Name] = roundRollup(*group)
	}

	daily := make(map[string]models.DailyRollup, len(agg.Daily))
	for day, d := range agg.Daily {
		daily[day] = models.DailyRollup{
			Revenue:      utils.RoundFloat(d.Revenue, 2),
			Cost:         utils.RoundFloat(d.Cost, 2),
			Transactions: d.Transactions,
		}
	}

	return models.Metrics{
		Summary:    roundSummary(agg.Summary),
		TopItems:   top,
		WorstItems: worst,
		Categories: categories,
		Daily:      daily,
	}
}

// rankedRollups sorts item groups by profit, descending for the top ranking
// or ascending for the worst ranking. Either way ties break by higher
// quantity then lexical name, so repeated runs over the same input produce
// identical orderings.
func rankedRollups(groups map[string]*models.Rollup, ascending bool) []models.Rollup {
	ranked := make([]models.Rollup, 0, len(groups))
	for _, group := range groups {
		ranked = append(ranked, *group)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Profit != ranked[j].Profit {
			if ascending {
				return ranked[i].Profit < ranked[j].Profit
			}
			return ranked[i].Profit > ranked[j].Profit
		}
		if ranked[i].Quantity != ranked[j].Quantity {
			return ranked[i].Quantity > ranked[j].Quantity
		}
		return ranked[i].Name < ranked[j].Name
	})
	return ranked
}

func roundRollup(r models.Rollup) models.Rollup {
	r.Revenue = utils.RoundFloat(r.Revenue, 2)
	r.Cost = utils.RoundFloat(r.Cost, 2)
	r.Profit = utils.RoundFloat(r.Profit, 2)
	return r
}

func roundSummary(s models.Summary) models.Summary {
	s.TotalRevenue = utils.RoundFloat(s.TotalRevenue, 2)
	s.TotalCOGS = utils.RoundFloat(s.TotalCOGS, 2)
	s.GrossProfit = utils.RoundFloat(s.GrossProfit, 2)
	s.GrossMarginPct = utils.RoundFloat(s.GrossMarginPct, 2)
	s.FixedCosts = utils.RoundFloat(s.FixedCosts, 2)
	s.NetProfit = utils.RoundFloat(s.NetProfit, 2)
	s.NetMarginPct = utils.RoundFloat(s.NetMarginPct, 2)
	s.FoodCostPct = utils.RoundFloat(s.FoodCostPct, 2)
	s.AvgOrderValue = utils.RoundFloat(s.AvgOrderValue, 2)
	s.AvgDailyRevenue = utils.RoundFloat(s.AvgDailyRevenue, 2)
	s.AvgDailyTransactions = utils.RoundFloat(s.AvgDailyTransactions, 2)
	return s
}
