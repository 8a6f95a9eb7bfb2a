package services

import (
	"context"
	"errors"

	"github.com/username/cafeledger/backend/src/models"
)

// ErrRecommendationsDisabled is returned by a Recommender that has no API
// key configured. The analyze pipeline degrades to metrics-only.
var ErrRecommendationsDisabled = errors.New("ai recommendations disabled: no API key configured")

// AnalysisService runs the full analyze pipeline for one upload: schema
// detection, row normalization, aggregation, formatting, and the isolated
// recommendation step.
type AnalysisService interface {
	Analyze(ctx context.Context, csvText string, fixedCosts float64) (*models.AnalysisReport, error)
}

// Recommender produces a narrative recommendation from computed metrics.
// Failures are the caller's to absorb; they must never fail the metrics
// response.
type Recommender interface {
	ModelName() string
	Recommend(ctx context.Context, metrics models.Metrics) (string, error)
}
