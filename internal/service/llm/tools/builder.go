package tools

import (
	"math/rand/v2"

	"deepmirror/internal/metrics"
)

// ToolRegistryBuilder provides a fluent API for building tool registries.
type ToolRegistryBuilder struct {
	registry *ToolRegistry
	config   *ToolConfig
	intn     func(n int) int
}

// NewToolRegistryBuilder creates a new builder with a fresh registry.
// m may be nil when metrics are not collected.
func NewToolRegistryBuilder(m *metrics.Metrics) *ToolRegistryBuilder {
	return &ToolRegistryBuilder{
		registry: NewToolRegistry(m),
		config:   DefaultToolConfig(),
		intn:     rand.IntN,
	}
}

// WithConfig sets custom tool configuration.
// If not called, defaults will be used.
func (b *ToolRegistryBuilder) WithConfig(config *ToolConfig) *ToolRegistryBuilder {
	if config != nil {
		b.config = config
	}
	return b
}

// WithRandom replaces the source of salary variation. Tests use it to pin
// the generated range.
func (b *ToolRegistryBuilder) WithRandom(intn func(n int) int) *ToolRegistryBuilder {
	if intn != nil {
		b.intn = intn
	}
	return b
}

// WithInterviewTools registers the tools offered during the interview:
// enableReportButton and getSalaryInsight.
func (b *ToolRegistryBuilder) WithInterviewTools() *ToolRegistryBuilder {
	b.registry.Register(ReportButtonDefinition(), NewReportButtonTool())
	b.registry.Register(SalaryInsightDefinition(), NewSalaryInsightTool(b.config, b.intn))
	return b
}

// Build returns the constructed tool registry.
func (b *ToolRegistryBuilder) Build() *ToolRegistry {
	return b.registry
}

// BuildInterviewRegistry is a convenience for NewToolRegistryBuilder(m).WithInterviewTools().Build()
func BuildInterviewRegistry(m *metrics.Metrics) *ToolRegistry {
	return NewToolRegistryBuilder(m).WithInterviewTools().Build()
}
