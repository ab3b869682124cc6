package tools

// ToolConfig centralizes configuration for all tools.
type ToolConfig struct {
	// Salary insight configuration (monthly RMB)
	SalaryBase      int            // base monthly salary before city offset
	SalaryVariation int            // random variation is drawn from [0, SalaryVariation)
	SalarySpread    int            // max = min + SalarySpread
	CityOffsets     map[string]int // per-city bonus; unknown cities get 0
}

// DefaultToolConfig returns the default tool configuration.
func DefaultToolConfig() *ToolConfig {
	return &ToolConfig{
		SalaryBase:      15000,
		SalaryVariation: 5000,
		SalarySpread:    8000,
		CityOffsets: map[string]int{
			"Beijing":   5000,
			"Shanghai":  5000,
			"Shenzhen":  4000,
			"Guangzhou": 3000,
			"Hangzhou":  2000,
		},
	}
}
