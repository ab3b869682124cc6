package career

// RoleAnalysis is a request-scoped deep dive into a single role. Never persisted.
type RoleAnalysis struct {
	Responsibilities    []string `json:"responsibilities" jsonschema_description:"List of 3-4 key responsibilities. Be practical and grounded. Use Chinese double quotes for emphasis."`
	DailyRoutine        string   `json:"daily_routine" jsonschema_description:"Description of a typical day in exactly 3 lines starting with 上午：, 下午：, 晚上：."`
	WhyFit              string   `json:"why_fit" jsonschema_description:"Why this fits the user. Use Chinese double quotes."`
	SalaryRange         string   `json:"salary_range" jsonschema_description:"Estimated salary range in China (e.g. 15k-25k)"`
	IndustriesCompanies []string `json:"industries_companies" jsonschema_description:"List of suitable industries or representative companies"`
	CoreCompetencies    []string `json:"core_competencies" jsonschema_description:"List of 3-5 specific hard/soft skills (e.g., specific tools, methodologies). Use Chinese double quotes."`
	SelectionAdvice     string   `json:"selection_advice" jsonschema_description:"Brief advice to help user decide if this is right for them. Use Chinese double quotes for emphasis."`
}

// RoleComparison compares two roles side by side. Never persisted.
type RoleComparison struct {
	Role1Analysis     RoleMatch `json:"role1_analysis"`
	Role2Analysis     RoleMatch `json:"role2_analysis"`
	ComparisonSummary string    `json:"comparison_summary" jsonschema_description:"A balanced comparison highlighting key differences"`
	Recommendation    string    `json:"recommendation" jsonschema_description:"A clear recommendation on which might be a better starting point and why"`
}

// RoleMatch is one side of a RoleComparison
type RoleMatch struct {
	RoleName    string   `json:"role_name"`
	SalaryRange string   `json:"salary_range" jsonschema_description:"Estimated salary range in China"`
	MatchScore  float64  `json:"match_score" jsonschema:"minimum=1,maximum=100" jsonschema_description:"Compatibility score based on user profile"`
	Pros        []string `json:"pros" jsonschema_description:"Top 3 advantages for the user"`
	Cons        []string `json:"cons" jsonschema_description:"Top 3 challenges for the user"`
}

// Selection is the outcome of analysing the user's selected roles: exactly
// one of Analysis or Comparison is set.
type Selection struct {
	Roles      []string        `json:"roles"`
	Analysis   *RoleAnalysis   `json:"analysis,omitempty"`
	Comparison *RoleComparison `json:"comparison,omitempty"`
}
