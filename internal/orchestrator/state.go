package orchestrator

// State is the phase a session is in. It is derived from the session
// contents and in-flight calls, never stored.
type State int

const (
	Interviewing State = iota
	ReportUnlocked
	GeneratingReport
	ReportReady
	PlanReady
	Coaching
)

func (s State) String() string {
	switch s {
	case Interviewing:
		return "interviewing"
	case ReportUnlocked:
		return "report_unlocked"
	case GeneratingReport:
		return "generating_report"
	case ReportReady:
		return "report_ready"
	case PlanReady:
		return "plan_ready"
	case Coaching:
		return "coaching"
	default:
		return "unknown"
	}
}
