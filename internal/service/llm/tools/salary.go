package tools

import (
	"context"
	"fmt"
	"math"

	"deepmirror/internal/domain/models/career"
	llmSvc "deepmirror/internal/domain/services/llm"
	"deepmirror/internal/service/llm/schema"
)

type salaryArgs struct {
	Role string `json:"role" jsonschema_description:"The job role, e.g. \"Frontend Developer\", \"Product Manager\""`
	City string `json:"city" jsonschema_description:"The city, e.g. \"Beijing\", \"Shanghai\", \"Shenzhen\""`
}

// SalaryInsightDefinition declares getSalaryInsight to the model
func SalaryInsightDefinition() llmSvc.ToolDefinition {
	return llmSvc.ToolDefinition{
		Name:        career.ToolGetSalaryInsight,
		Description: "Get salary range insights for a specific job role in a city. Returns estimated monthly salary in RMB.",
		Parameters:  schema.Generate[salaryArgs](),
	}
}

// SalaryInsight is the result returned to the model
type SalaryInsight struct {
	Role        string `json:"role"`
	City        string `json:"city"`
	SalaryRange string `json:"salary_range"`
	MarketTrend string `json:"market_trend"`
	Source      string `json:"source"`
}

// SalaryInsightTool produces a mock monthly salary range. Figures are
// illustrative, not market data.
type SalaryInsightTool struct {
	config *ToolConfig
	intn   func(n int) int
}

// NewSalaryInsightTool creates the getSalaryInsight executor.
// intn must return a value in [0, n).
func NewSalaryInsightTool(config *ToolConfig, intn func(n int) int) *SalaryInsightTool {
	if config == nil {
		config = DefaultToolConfig()
	}
	return &SalaryInsightTool{config: config, intn: intn}
}

// Execute computes the range for role and city
func (t *SalaryInsightTool) Execute(ctx context.Context, input map[string]interface{}) (interface{}, error) {
	role, ok := stringArg(input, "role")
	if !ok {
		return nil, fmt.Errorf("%s: missing or invalid 'role' argument", career.ToolGetSalaryInsight)
	}
	city, ok := stringArg(input, "city")
	if !ok {
		return nil, fmt.Errorf("%s: missing or invalid 'city' argument", career.ToolGetSalaryInsight)
	}

	minSalary, maxSalary := t.Range(city)
	return SalaryInsight{
		Role:        role,
		City:        city,
		SalaryRange: fmt.Sprintf("%dk-%dk RMB/month", thousands(minSalary), thousands(maxSalary)),
		MarketTrend: "Stable",
		Source:      "Market Trend Database (Mock)",
	}, nil
}

// Range returns the monthly min and max for city
func (t *SalaryInsightTool) Range(city string) (int, int) {
	variation := 0
	if t.config.SalaryVariation > 0 {
		variation = t.intn(t.config.SalaryVariation)
	}
	minSalary := t.config.SalaryBase + t.config.CityOffsets[city] + variation
	return minSalary, minSalary + t.config.SalarySpread
}

func thousands(v int) int {
	return int(math.Round(float64(v) / 1000))
}
