package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/username/cafeledger/backend/src/logger"
	"github.com/username/cafeledger/backend/src/models"
)

const recommenderSystemPrompt = "You are an expert cafe business and financial analyst. " +
	"Provide specific, actionable, data-driven recommendations. " +
	"Focus on: cost control, pricing strategy, menu optimization, " +
	"labor efficiency, waste reduction, and revenue growth. " +
	"Use the numbers provided. Be direct and practical. " +
	"Format with clear headers and bullet points."

// GroqRecommender calls an OpenAI-compatible chat completions endpoint
// (Groq by default) to turn computed metrics into narrative advice.
type GroqRecommender struct {
	client    *openai.Client
	modelName string
	maxTokens int
	timeout   time.Duration
	enabled   bool
}

func NewGroqRecommender(apiKey, baseURL, modelName string, maxTokens int, timeout time.Duration) *GroqRecommender {
	clientConfig := openai.DefaultConfig(apiKey)
	clientConfig.BaseURL = baseURL

	return &GroqRecommender{
		client:    openai.NewClientWithConfig(clientConfig),
		modelName: modelName,
		maxTokens: maxTokens,
		timeout:   timeout,
		enabled:   apiKey != "",
	}
}

func (g *GroqRecommender) ModelName() string { return g.modelName }

// Recommend sends the metrics prompt. The request runs under its own
// timeout so an unresponsive provider cannot stall the metrics response.
func (g *GroqRecommender) Recommend(ctx context.Context, metrics models.Metrics) (string, error) {
	if !g.enabled {
		return "", ErrRecommendationsDisabled
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	startTime := time.Now()
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.modelName,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: recommenderSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: BuildAnalysisPrompt(metrics)},
		},
		MaxTokens:   g.maxTokens,
		Temperature: 0.4,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	logger.L.Info("AI recommendation generated", "model", g.modelName, "duration", time.Since(startTime))
	return resp.Choices[0].Message.Content, nil
}

// BuildAnalysisPrompt renders computed metrics into the analyst prompt:
// the summary block, the top and lowest performing items, and the category
// table, with industry benchmarks for context.
func BuildAnalysisPrompt(metrics models.Metrics) string {
	s := metrics.Summary

	var b strings.Builder
	b.WriteString("Analyze this cafe's financial data and provide 6-8 specific, prioritized recommendations.\n\n")

	b.WriteString("FINANCIAL SUMMARY:\n")
	fmt.Fprintf(&b, "- Total Revenue: $%.2f\n", s.TotalRevenue)
	fmt.Fprintf(&b, "- Total COGS: $%.2f\n", s.TotalCOGS)
	fmt.Fprintf(&b, "- Gross Profit: $%.2f (Margin: %.2f%%)\n", s.GrossProfit, s.GrossMarginPct)
	fmt.Fprintf(&b, "- Fixed Costs: $%.2f\n", s.FixedCosts)
	fmt.Fprintf(&b, "- Net Profit: $%.2f (Margin: %.2f%%)\n", s.NetProfit, s.NetMarginPct)
	fmt.Fprintf(&b, "- Food Cost %%: %.2f%%\n", s.FoodCostPct)
	fmt.Fprintf(&b, "- Avg Order Value: $%.2f\n", s.AvgOrderValue)
	if s.BreakEvenUnits != nil {
		fmt.Fprintf(&b, "- Break-even: %d units\n", *s.BreakEvenUnits)
	} else {
		b.WriteString("- Break-even: unreachable at current contribution margin\n")
	}
	fmt.Fprintf(&b, "- Avg Daily Revenue: $%.2f\n", s.AvgDailyRevenue)
	fmt.Fprintf(&b, "- Avg Daily Transactions: %.2f\n", s.AvgDailyTransactions)

	b.WriteString("\nTOP SELLING ITEMS:\n")
	for _, item := range metrics.TopItems {
		fmt.Fprintf(&b, "  - %s: revenue $%.2f, cost $%.2f, profit $%.2f, qty %d\n",
			item.Name, item.Revenue, item.Cost, item.Profit, item.Quantity)
	}

	b.WriteString("\nLOWEST PERFORMING ITEMS:\n")
	for i, item := range metrics.WorstItems {
		if i >= 3 {
			break
		}
		fmt.Fprintf(&b, "  - %s: revenue $%.2f, cost $%.2f, profit $%.2f, qty %d\n",
			item.Name, item.Revenue, item.Cost, item.Profit, item.Quantity)
	}

	b.WriteString("\nCATEGORY BREAKDOWN:\n")
	names := make([]string, 0, len(metrics.Categories))
	for name := range metrics.Categories {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c := metrics.Categories[name]
		fmt.Fprintf(&b, "  - %s: revenue $%.2f, cost $%.2f, profit $%.2f\n",
			name, c.Revenue, c.Cost, c.Profit)
	}

	b.WriteString("\nIndustry benchmarks: food cost 28-32%, gross margin 65-70%, net margin 5-15%.\n\n")
	b.WriteString("Provide:\n")
	b.WriteString("1. URGENT actions (quick wins this week)\n")
	b.WriteString("2. PRICING recommendations (specific items to reprice)\n")
	b.WriteString("3. MENU optimization (what to promote, what to remove)\n")
	b.WriteString("4. COST REDUCTION strategies\n")
	b.WriteString("5. REVENUE GROWTH opportunities\n")
	b.WriteString("6. CASH FLOW advice")

	return b.String()
}
