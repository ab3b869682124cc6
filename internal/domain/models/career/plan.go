package career

// TaskType classifies a plan task
type TaskType string

const (
	TaskLearning   TaskType = "learning"
	TaskAction     TaskType = "action"
	TaskConnection TaskType = "connection"
	TaskReflection TaskType = "reflection"
)

// Valid reports whether t is one of the four known task types
func (t TaskType) Valid() bool {
	switch t {
	case TaskLearning, TaskAction, TaskConnection, TaskReflection:
		return true
	}
	return false
}

// Plan is a multi-week execution plan derived from a Report.
// At most one plan is active per session.
type Plan struct {
	Goal     string      `json:"goal" jsonschema_description:"A clear, inspiring 1-sentence goal for this period"`
	Duration string      `json:"duration" jsonschema_description:"e.g. '6 Weeks'"`
	Phases   []PlanPhase `json:"phases"`
}

// PlanPhase groups the tasks of a week range
type PlanPhase struct {
	Week  string     `json:"week" jsonschema_description:"Week range, e.g. \"Week 1-2\""`
	Theme string     `json:"theme" jsonschema_description:"Phase Theme"`
	Tasks []PlanTask `json:"tasks"`
}

// PlanTask is a single day's action
type PlanTask struct {
	Day    string   `json:"day" jsonschema_description:"Day identifier, e.g. \"Day 1\""`
	Action string   `json:"action" jsonschema_description:"Specific task action"`
	Type   TaskType `json:"type" jsonschema:"enum=learning,enum=action,enum=connection,enum=reflection" jsonschema_description:"Task type"`
}

// PlanContext is the slice of a plan the chat needs for coaching mode
type PlanContext struct {
	Goal     string `json:"goal"`
	Duration string `json:"duration"`
}

// Context returns the coaching context for p
func (p *Plan) Context() *PlanContext {
	if p == nil {
		return nil
	}
	return &PlanContext{Goal: p.Goal, Duration: p.Duration}
}
