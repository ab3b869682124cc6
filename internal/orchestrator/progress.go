package orchestrator

import (
	"sync"
	"time"
)

// Report generation has no real progress signal, so the tracker shows a
// synthetic one: the bar creeps towards 98% over a nominal duration while
// step labels rotate, and jumps to 100% once the report arrives.

// ReportSteps are shown in order while a report is being generated
var ReportSteps = []string{
	"正在回顾我们的深度对话...",
	"正在分析你的职业原型...",
	"正在挖掘你的隐藏天赋...",
	"正在绘制你的职业画像...",
	"正在生成最终报告...",
}

// ReadyStep labels the completed report
const ReadyStep = "准备就绪！"

// progressCap is the highest percentage shown before completion
const progressCap = 98.0

// Progress is one update of the report generation indicator
type Progress struct {
	Percent float64
	Step    string
}

// ProgressConfig tunes the synthetic progress indicator
type ProgressConfig struct {
	Duration     time.Duration // nominal time to reach the cap
	Tick         time.Duration
	StepInterval time.Duration
}

// DefaultProgressConfig returns a 12 s bar with 100 ms ticks and a new step
// label every 2.5 s
func DefaultProgressConfig() ProgressConfig {
	return ProgressConfig{
		Duration:     12 * time.Second,
		Tick:         100 * time.Millisecond,
		StepInterval: 2500 * time.Millisecond,
	}
}

type progressTracker struct {
	cfg    ProgressConfig
	notify func(Progress)

	mu      sync.Mutex
	percent float64
	step    int

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

func startProgress(cfg ProgressConfig, notify func(Progress)) *progressTracker {
	if notify == nil {
		notify = func(Progress) {}
	}
	t := &progressTracker{
		cfg:    cfg,
		notify: notify,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	notify(Progress{Percent: 0, Step: ReportSteps[0]})
	go t.run()
	return t
}

func (t *progressTracker) run() {
	defer close(t.done)

	if t.cfg.Tick <= 0 || t.cfg.Duration <= 0 {
		<-t.stop
		return
	}
	increment := progressCap / float64(t.cfg.Duration/t.cfg.Tick)

	tick := time.NewTicker(t.cfg.Tick)
	defer tick.Stop()

	var stepC <-chan time.Time
	if t.cfg.StepInterval > 0 {
		stepTicker := time.NewTicker(t.cfg.StepInterval)
		defer stepTicker.Stop()
		stepC = stepTicker.C
	}

	for {
		select {
		case <-t.stop:
			return
		case <-tick.C:
			t.mu.Lock()
			if t.percent < progressCap {
				t.percent = min(t.percent+increment, progressCap)
			}
			p := Progress{Percent: t.percent, Step: ReportSteps[t.step]}
			t.mu.Unlock()
			t.notify(p)
		case <-stepC:
			t.mu.Lock()
			if t.step < len(ReportSteps)-1 {
				t.step++
			}
			p := Progress{Percent: t.percent, Step: ReportSteps[t.step]}
			t.mu.Unlock()
			t.notify(p)
		}
	}
}

// halt stops the ticker and waits for it, so no update follows
func (t *progressTracker) halt() {
	t.once.Do(func() { close(t.stop) })
	<-t.done
}

// complete halts the tracker and reports 100%
func (t *progressTracker) complete() {
	t.halt()
	t.notify(Progress{Percent: 100, Step: ReadyStep})
}
