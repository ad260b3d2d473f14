package project

import (
	"math"

	"github.com/google/uuid"
)

// Normalize migrates a stored or user-supplied project to the canonical
// shape: missing status defaults to active, child collections are never nil,
// the completion percentage is clamped, numbers are finite and non-negative
// where required and child entries always carry an id.
func Normalize(p Project) Project {
	out, _ := normalize(p, uuid.NewString)
	return out
}

// normalize is Normalize with an explicit id source. The bool reports
// whether any child entry was given a new id.
func normalize(p Project, newID func() string) (Project, bool) {
	out := p.Clone()
	if out.Status == "" {
		out.Status = StatusActive
	}
	out.Value = finiteOrZero(out.Value)
	if out.Value < 0 {
		out.Value = 0
	}
	if out.TargetDate != nil && out.TargetDate.IsZero() {
		out.TargetDate = nil
	}
	if out.PercentComplete != nil {
		v := ClampPercent(*out.PercentComplete)
		out.PercentComplete = &v
	}
	if out.Labours == nil {
		out.Labours = []LabourEntry{}
	}
	if out.Materials == nil {
		out.Materials = []MaterialEntry{}
	}

	assigned := false
	for i := range out.Labours {
		l := &out.Labours[i]
		if l.ID == "" {
			l.ID = newID()
			assigned = true
		}
		l.Rate = finiteOrZero(l.Rate)
		l.OvertimeHours = finiteOrZero(l.OvertimeHours)
	}
	for i := range out.Materials {
		m := &out.Materials[i]
		if m.ID == "" {
			m.ID = newID()
			assigned = true
		}
		m.UnitCost = finiteOrZero(m.UnitCost)
		m.Quantity = finiteOrZero(m.Quantity)
	}
	return out, assigned
}

// NormalizeAll applies Normalize to every project and drops records without
// an id, which cannot be addressed in the remote store.
func NormalizeAll(projects []Project) []Project {
	out, _ := normalizeAll(projects, uuid.NewString)
	return out
}

// normalizeAll also returns the ids of projects whose entries were given new
// ids, so the caller can write them back once.
func normalizeAll(projects []Project, newID func() string) ([]Project, []string) {
	out := make([]Project, 0, len(projects))
	var backfilled []string
	for _, p := range projects {
		if p.ID == "" {
			continue
		}
		n, assigned := normalize(p, newID)
		if assigned {
			backfilled = append(backfilled, n.ID)
		}
		out = append(out, n)
	}
	return out, backfilled
}

// ClampPercent limits v to [0, 100]. NaN becomes 0.
func ClampPercent(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}

func finiteOrZero(v float64) float64 {
	if !IsFinite(v) {
		return 0
	}
	return v
}
