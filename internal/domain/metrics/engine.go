package metrics

import (
	"time"

	"github.com/rpggio/sitetrack/internal/domain/project"
)

// Engine binds a clock and a status policy to the package functions.
type Engine struct {
	Now    func() time.Time
	Policy StatusPolicy
}

// NewEngine returns an engine using time.Now.
func NewEngine(policy StatusPolicy) *Engine {
	return &Engine{Now: time.Now, Policy: policy}
}

func (e *Engine) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

func (e *Engine) Classify(p project.Project) Classification {
	return Classify(e.now(), p, e.Policy)
}

func (e *Engine) Summary(p project.Project) ProjectSummary {
	return Summary(e.now(), p, e.Policy)
}

func (e *Engine) Rollup(projects []project.Project, by GroupBy) []Group {
	return Rollup(projects, by, e.now(), e.Policy)
}

func (e *Engine) StateOverview(states []string, projects []project.Project) []Group {
	return StateOverview(states, projects, e.now(), e.Policy)
}

func (e *Engine) Totals(projects []project.Project) Totals {
	return DashboardTotals(projects, e.now(), e.Policy)
}

func (e *Engine) UpcomingDeadlines(projects []project.Project, window int) []DeadlineAlert {
	return UpcomingDeadlines(e.now(), projects, window)
}
