package services

import (
	"context"
	"errors"
	"os"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/cafeledger/backend/src/logger"
	"github.com/username/cafeledger/backend/src/models"
	"github.com/username/cafeledger/backend/src/parsers"
	"github.com/username/cafeledger/backend/src/processors"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

type stubRecommender struct {
	narrative string
	err       error
	calls     int
}

func (s *stubRecommender) ModelName() string { return "stub-model" }

func (s *stubRecommender) Recommend(_ context.Context, _ models.Metrics) (string, error) {
	s.calls++
	return s.narrative, s.err
}

func newTestService(rec Recommender) AnalysisService {
	return NewAnalysisService(
		parsers.NewSchemaDetector(),
		processors.NewAggregator(),
		processors.NewMetricsFormatter(5),
		rec,
		cache.New(time.Minute, time.Minute),
		time.Minute,
	)
}

const flatWhiteCSV = "date,item,category,price,cost,quantity\n2026-01-01,Flat White,Coffee,5.50,1.20,45\n"

func TestAnalyze_FlatWhiteUpload(t *testing.T) {
	svc := newTestService(&stubRecommender{narrative: "sell more coffee"})
	report, err := svc.Analyze(context.Background(), flatWhiteCSV, 0)
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}

	if report.POSFormatDetected != parsers.FormatGeneric {
		t.Errorf("POSFormatDetected = %q, want generic", report.POSFormatDetected)
	}
	if report.RowsProcessed != 1 || report.RowsDiscarded != 0 {
		t.Errorf("row counts = %d/%d, want 1/0", report.RowsProcessed, report.RowsDiscarded)
	}
	if report.MarginAnalysisDegraded {
		t.Error("margin analysis should not be degraded with a cost column present")
	}

	s := report.Metrics.Summary
	if s.TotalRevenue != 247.50 || s.TotalCOGS != 54.00 || s.GrossProfit != 193.50 {
		t.Errorf("summary totals = %v/%v/%v, want 247.50/54.00/193.50", s.TotalRevenue, s.TotalCOGS, s.GrossProfit)
	}
	if s.GrossMarginPct != 78.18 {
		t.Errorf("GrossMarginPct = %v, want 78.18", s.GrossMarginPct)
	}
	if s.NetProfit != 193.50 {
		t.Errorf("NetProfit = %v, want 193.50", s.NetProfit)
	}

	if !report.Recommendations.Available || report.Recommendations.Narrative != "sell more coffee" {
		t.Errorf("unexpected recommendation block: %+v", report.Recommendations)
	}
	if report.Recommendations.Model != "stub-model" {
		t.Errorf("recommendation model = %q, want stub-model", report.Recommendations.Model)
	}
}

func TestAnalyze_DegradedWithoutCostColumn(t *testing.T) {
	svc := newTestService(&stubRecommender{})
	csvText := "date,item,category,price,quantity\n2026-01-01,Flat White,Coffee,5.50,45\n"
	report, err := svc.Analyze(context.Background(), csvText, 0)
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if report.POSFormatDetected != parsers.FormatGeneric {
		t.Errorf("POSFormatDetected = %q, want generic", report.POSFormatDetected)
	}
	if !report.MarginAnalysisDegraded {
		t.Error("expected margin analysis to be flagged degraded")
	}
	s := report.Metrics.Summary
	if s.TotalCOGS != 0 || s.FoodCostPct != 0 {
		t.Errorf("cost-less upload: TotalCOGS=%v FoodCostPct=%v, want 0/0", s.TotalCOGS, s.FoodCostPct)
	}
}

// A file whose only data row fails coercion yields a zero-valued summary,
// not an error.
func TestAnalyze_SingleDiscardedRow(t *testing.T) {
	svc := newTestService(&stubRecommender{})
	csvText := "date,item,category,price,cost,quantity\n2026-01-01,Latte,Coffee,4.00,1.00,abc\n"
	report, err := svc.Analyze(context.Background(), csvText, 0)
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if report.RowsProcessed != 0 || report.RowsDiscarded != 1 {
		t.Errorf("row counts = %d/%d, want 0/1", report.RowsProcessed, report.RowsDiscarded)
	}
	if report.Metrics.Summary.TotalRevenue != 0 {
		t.Errorf("TotalRevenue = %v, want 0", report.Metrics.Summary.TotalRevenue)
	}
}

func TestAnalyze_RowAccounting(t *testing.T) {
	svc := newTestService(&stubRecommender{})
	csvText := "date,item,price,quantity\n" +
		"2026-01-01,Latte,4.00,2\n" +
		"bad-date,Latte,4.00,2\n" +
		"2026-01-02,,4.00,2\n" +
		"2026-01-03,Mocha,4.50,xyz\n" +
		"2026-01-04,Muffin,3.25,4\n"
	report, err := svc.Analyze(context.Background(), csvText, 0)
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if got := report.RowsProcessed + report.RowsDiscarded; got != 5 {
		t.Errorf("rows_processed + rows_discarded = %d, want 5 (every data row accounted for)", got)
	}
	if report.RowsProcessed != 2 || report.RowsDiscarded != 3 {
		t.Errorf("row counts = %d/%d, want 2/3", report.RowsProcessed, report.RowsDiscarded)
	}
}

func TestAnalyze_RequestFatalErrors(t *testing.T) {
	svc := newTestService(&stubRecommender{})

	if _, err := svc.Analyze(context.Background(), "date,item,price,quantity\n", 0); !errors.Is(err, parsers.ErrEmptyInput) {
		t.Errorf("header-only input: expected ErrEmptyInput, got %v", err)
	}
	if _, err := svc.Analyze(context.Background(), "foo,bar\n1,2\n", 0); !errors.Is(err, parsers.ErrSchemaDetection) {
		t.Errorf("unmappable header: expected ErrSchemaDetection, got %v", err)
	}
	if _, err := svc.Analyze(context.Background(), "", 0); !errors.Is(err, parsers.ErrSchemaDetection) {
		t.Errorf("blank input: expected ErrSchemaDetection, got %v", err)
	}
}

func TestAnalyze_Idempotent(t *testing.T) {
	csvText := "date,item,category,price,cost,quantity\n" +
		"2026-01-01,Latte,Coffee,4.00,1.00,2\n" +
		"2026-01-01,Mocha,Coffee,4.50,1.10,2\n" +
		"2026-01-02,Muffin,Bakery,3.25,0.80,4\n"

	first, err := newTestService(&stubRecommender{}).Analyze(context.Background(), csvText, 50)
	if err != nil {
		t.Fatalf("first Analyze() error: %v", err)
	}
	second, err := newTestService(&stubRecommender{}).Analyze(context.Background(), csvText, 50)
	if err != nil {
		t.Fatalf("second Analyze() error: %v", err)
	}
	if !reflect.DeepEqual(first.Metrics, second.Metrics) {
		t.Errorf("metrics differ across identical runs:\nfirst:  %+v\nsecond: %+v", first.Metrics, second.Metrics)
	}
}

func TestAnalyze_CachesRepeatPayloads(t *testing.T) {
	rec := &stubRecommender{narrative: "ok"}
	svc := newTestService(rec)

	if _, err := svc.Analyze(context.Background(), flatWhiteCSV, 0); err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if _, err := svc.Analyze(context.Background(), flatWhiteCSV, 0); err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if rec.calls != 1 {
		t.Errorf("recommender called %d times for identical payloads, want 1", rec.calls)
	}

	// Different fixed costs is a different payload.
	if _, err := svc.Analyze(context.Background(), flatWhiteCSV, 100); err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}
	if rec.calls != 2 {
		t.Errorf("recommender called %d times after distinct payload, want 2", rec.calls)
	}
}

func TestAnalyze_RecommendationFailureDegrades(t *testing.T) {
	svc := newTestService(&stubRecommender{err: errors.New("quota exceeded")})
	report, err := svc.Analyze(context.Background(), flatWhiteCSV, 0)
	if err != nil {
		t.Fatalf("Analyze() must not fail when the recommender does: %v", err)
	}
	if report.Recommendations.Available {
		t.Error("recommendation should be unavailable")
	}
	if !strings.Contains(report.Recommendations.Detail, "quota exceeded") {
		t.Errorf("detail = %q, want the failure reason", report.Recommendations.Detail)
	}
	if report.Metrics.Summary.TotalRevenue != 247.50 {
		t.Errorf("metrics must survive a recommendation failure, got %+v", report.Metrics.Summary)
	}
}
