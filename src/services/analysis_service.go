package services

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/cafeledger/backend/src/logger"
	"github.com/username/cafeledger/backend/src/models"
	"github.com/username/cafeledger/backend/src/parsers"
	"github.com/username/cafeledger/backend/src/processors"
	"github.com/username/cafeledger/backend/src/utils"
)

type analysisServiceImpl struct {
	detector    *parsers.SchemaDetector
	aggregator  *processors.Aggregator
	formatter   *processors.MetricsFormatter
	recommender Recommender
	reportCache *cache.Cache
	cacheTTL    time.Duration
}

func NewAnalysisService(
	detector *parsers.SchemaDetector,
	aggregator *processors.Aggregator,
	formatter *processors.MetricsFormatter,
	recommender Recommender,
	reportCache *cache.Cache,
	cacheTTL time.Duration,
) AnalysisService {
	return &analysisServiceImpl{
		detector:    detector,
		aggregator:  aggregator,
		formatter:   formatter,
		recommender: recommender,
		reportCache: reportCache,
		cacheTTL:    cacheTTL,
	}
}

// Analyze runs one upload through the full pipeline. All state is request
// scoped; nothing survives the call except a TTL-bounded copy of the report
// in the in-memory cache, keyed by the payload fingerprint, so a repeated
// identical upload does not burn another AI call.
func (s *analysisServiceImpl) Analyze(ctx context.Context, csvText string, fixedCosts float64) (*models.AnalysisReport, error) {
	overallStartTime := time.Now()

	cacheKey := utils.PayloadFingerprint(csvText, fixedCosts)
	if cached, found := s.reportCache.Get(cacheKey); found {
		logger.L.Info("Cache hit for analyze payload", "fingerprint", cacheKey[:12])
		return cached.(*models.AnalysisReport), nil
	}

	header, records, err := parsers.ParseDelimited(csvText)
	if err != nil {
		return nil, err
	}

	mapping, format, err := s.detector.Detect(header)
	if err != nil {
		return nil, err
	}
	logger.L.Info("POS format detected", "format", format, "dataRows", len(records))

	txs, processed, discarded := parsers.NewRowNormalizer(mapping).NormalizeAll(records)
	if discarded > 0 {
		logger.L.Warn("Some rows failed coercion and were discarded", "discarded", discarded, "processed", processed)
	}

	if fixedCosts < 0 {
		logger.L.Warn("Negative fixed_costs supplied, treating as 0", "fixedCosts", fixedCosts)
		fixedCosts = 0
	}

	metrics := s.formatter.Format(s.aggregator.Aggregate(txs, fixedCosts))

	report := &models.AnalysisReport{
		POSFormatDetected:      format,
		RowsProcessed:          processed,
		RowsDiscarded:          discarded,
		MarginAnalysisDegraded: !mapping.HasCost(),
		Metrics:                metrics,
		Recommendations:        s.recommend(ctx, metrics),
		AnalyzedAt:             time.Now().UTC().Format(time.RFC3339),
	}

	s.reportCache.Set(cacheKey, report, s.cacheTTL)
	logger.L.Info("Analyze complete", "format", format, "rowsProcessed", processed,
		"rowsDiscarded", discarded, "duration", time.Since(overallStartTime))
	return report, nil
}

// recommend runs the AI step in isolation. Any failure (missing key,
// timeout, quota) degrades to "metrics only, no narrative" and is reported
// in the recommendation block, never as a request error.
func (s *analysisServiceImpl) recommend(ctx context.Context, metrics models.Metrics) models.Recommendation {
	narrative, err := s.recommender.Recommend(ctx, metrics)
	if err != nil {
		logger.L.Warn("AI recommendation unavailable, returning metrics only", "error", err)
		return models.Recommendation{
			Available: false,
			Detail:    err.Error(),
		}
	}
	return models.Recommendation{
		Available: true,
		Narrative: narrative,
		Model:     s.recommender.ModelName(),
	}
}
