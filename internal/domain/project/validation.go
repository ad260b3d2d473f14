package project

import (
	"fmt"
	"slices"
	"strings"
)

// ValidateDraft validates the fields required to create a project. When
// states is non-empty the draft's state must be one of them.
func ValidateDraft(d Draft, states []string) error {
	if strings.TrimSpace(d.Name) == "" {
		return invalid("projectName", "required")
	}
	if strings.TrimSpace(d.State) == "" {
		return invalid("state", "required")
	}
	if len(states) > 0 && !slices.Contains(states, d.State) {
		return invalid("state", fmt.Sprintf("unknown state %q", d.State))
	}
	if d.StartDate.IsZero() {
		return invalid("startDate", "required")
	}
	if !IsFinite(float64(d.Value)) {
		return invalid("projectValue", "must be a finite number")
	}
	if d.Value < 0 {
		return invalid("projectValue", "must not be negative")
	}
	if d.TargetDate != nil && !d.TargetDate.IsZero() && d.TargetDate.Before(d.StartDate.Time) {
		return invalid("tentativeCompletion", "must not precede start date")
	}
	if d.Status != "" && !d.Status.Valid() {
		return invalid("status", fmt.Sprintf("unknown status %q", d.Status))
	}
	if d.PercentComplete != nil && !(*d.PercentComplete >= 0 && *d.PercentComplete <= 100) {
		return invalid("percentageComplete", "must be between 0 and 100")
	}
	return nil
}

// ValidateProject validates an edited project before it is handed to Update.
func ValidateProject(p Project, states []string) error {
	if strings.TrimSpace(p.ID) == "" {
		return invalid("id", "required")
	}
	return ValidateDraft(Draft{
		Name:            p.Name,
		State:           p.State,
		StartDate:       p.StartDate,
		TargetDate:      p.TargetDate,
		Value:           Number(p.Value),
		Status:          p.Status,
		PercentComplete: p.PercentComplete,
	}, states)
}

// ValidateLabour validates a labour entry.
func ValidateLabour(l LabourEntry) error {
	if l.Date.IsZero() {
		return invalid("date", "required")
	}
	if l.Count < 1 {
		return invalid("numberOfLabours", "must be at least 1")
	}
	if !IsFinite(l.Rate) || l.Rate < 0 {
		return invalid("dailySalary", "must be a finite, non-negative number")
	}
	if !IsFinite(l.OvertimeHours) || l.OvertimeHours < 0 {
		return invalid("overtimeHours", "must not be negative")
	}
	return nil
}

// ValidateMaterial validates a material entry.
func ValidateMaterial(m MaterialEntry) error {
	if strings.TrimSpace(m.Name) == "" {
		return invalid("materialName", "required")
	}
	if !IsFinite(m.UnitCost) || m.UnitCost < 0 {
		return invalid("cost", "must be a finite, non-negative number")
	}
	if !IsFinite(m.Quantity) || m.Quantity <= 0 {
		return invalid("quantity", "must be greater than 0")
	}
	if m.PurchaseDate.IsZero() {
		return invalid("dateOfPurchase", "required")
	}
	return nil
}

func invalid(field, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidInput, field, reason)
}
