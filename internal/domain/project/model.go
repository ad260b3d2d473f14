package project

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Status is the lifecycle status stored on a project.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusOnHold    Status = "on-hold"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is one of the known lifecycle statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusCompleted, StatusOnHold, StatusCancelled:
		return true
	}
	return false
}

// Project is a tracked construction engagement with a budget, a schedule and
// two child ledgers. JSON names follow the stored document shape.
type Project struct {
	ID              string          `json:"id"`
	Name            string          `json:"projectName"`
	Description     string          `json:"description"`
	State           string          `json:"state"`
	Engineer        string          `json:"siteEngineer"`
	StartDate       Date            `json:"startDate"`
	TargetDate      *Date           `json:"tentativeCompletion,omitempty"`
	Value           float64         `json:"projectValue"`
	Status          Status          `json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       *time.Time      `json:"updatedAt,omitempty"`
	PercentComplete *float64        `json:"percentageComplete,omitempty"`
	Labours         []LabourEntry   `json:"labours"`
	Materials       []MaterialEntry `json:"materials"`
}

// UnmarshalJSON accepts numeric fields written either as numbers or as
// numeric strings, which older documents contain.
func (p *Project) UnmarshalJSON(data []byte) error {
	type alias Project
	aux := struct {
		*alias
		Value           Number  `json:"projectValue"`
		PercentComplete *Number `json:"percentageComplete,omitempty"`
	}{alias: (*alias)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	p.Value = float64(aux.Value)
	p.PercentComplete = nil
	if aux.PercentComplete != nil {
		v := float64(*aux.PercentComplete)
		p.PercentComplete = &v
	}
	return nil
}

// Clone returns a deep copy of the project.
func (p Project) Clone() Project {
	out := p
	if p.TargetDate != nil {
		d := *p.TargetDate
		out.TargetDate = &d
	}
	if p.UpdatedAt != nil {
		t := *p.UpdatedAt
		out.UpdatedAt = &t
	}
	if p.PercentComplete != nil {
		v := *p.PercentComplete
		out.PercentComplete = &v
	}
	if p.Labours != nil {
		out.Labours = append(make([]LabourEntry, 0, len(p.Labours)), p.Labours...)
	}
	if p.Materials != nil {
		out.Materials = append(make([]MaterialEntry, 0, len(p.Materials)), p.Materials...)
	}
	return out
}

// LabourEntry is a dated record of worker headcount and daily wage rate.
type LabourEntry struct {
	ID              string    `json:"id"`
	Date            Date      `json:"date"`
	Count           int       `json:"numberOfLabours"`
	Rate            float64   `json:"dailySalary"`
	Role            string    `json:"role,omitempty"`
	WorkDescription string    `json:"workDescription"`
	OvertimeHours   float64   `json:"overtimeHours,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// DailyCost is count × rate. It is never stored.
func (l LabourEntry) DailyCost() float64 {
	return float64(l.Count) * l.Rate
}

// UnmarshalJSON accepts string-typed numbers and the legacy "wages" field.
func (l *LabourEntry) UnmarshalJSON(data []byte) error {
	type alias LabourEntry
	aux := struct {
		*alias
		Count         Number  `json:"numberOfLabours"`
		Rate          *Number `json:"dailySalary"`
		Wages         *Number `json:"wages"`
		OvertimeHours Number  `json:"overtimeHours"`
	}{alias: (*alias)(l)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	count := float64(aux.Count)
	if count != math.Trunc(count) || count < math.MinInt32 || count > math.MaxInt32 {
		return fmt.Errorf("%w: numberOfLabours must be a whole number, got %v", ErrInvalidInput, count)
	}
	l.Count = int(count)
	l.OvertimeHours = float64(aux.OvertimeHours)
	switch {
	case aux.Rate != nil:
		l.Rate = float64(*aux.Rate)
	case aux.Wages != nil:
		l.Rate = float64(*aux.Wages)
	default:
		l.Rate = 0
	}
	return nil
}

// MaterialEntry is a dated record of a purchased material.
type MaterialEntry struct {
	ID            string    `json:"id"`
	Name          string    `json:"materialName"`
	UnitCost      float64   `json:"cost"`
	Quantity      float64   `json:"quantity"`
	PurchaseDate  Date      `json:"dateOfPurchase"`
	Supplier      string    `json:"supplier"`
	Category      string    `json:"category,omitempty"`
	Unit          string    `json:"unit,omitempty"`
	Specification string    `json:"specifications,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// LineCost is unit cost × quantity. It is never stored.
func (m MaterialEntry) LineCost() float64 {
	return m.UnitCost * m.Quantity
}

// UnmarshalJSON accepts string-typed numbers.
func (m *MaterialEntry) UnmarshalJSON(data []byte) error {
	type alias MaterialEntry
	aux := struct {
		*alias
		UnitCost Number `json:"cost"`
		Quantity Number `json:"quantity"`
	}{alias: (*alias)(m)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	m.UnitCost = float64(aux.UnitCost)
	m.Quantity = float64(aux.Quantity)
	return nil
}

// Draft holds the user-supplied fields of a project about to be created.
type Draft struct {
	Name            string   `json:"projectName"`
	Description     string   `json:"description"`
	State           string   `json:"state"`
	Engineer        string   `json:"siteEngineer"`
	StartDate       Date     `json:"startDate"`
	TargetDate      *Date    `json:"tentativeCompletion,omitempty"`
	Value           Number   `json:"projectValue"`
	Status          Status   `json:"status,omitempty"`
	PercentComplete *float64 `json:"percentageComplete,omitempty"`
}

// Number is a float that decodes from a JSON number, a numeric string, an
// empty string or null (the last two decode as zero). NaN and infinities are
// rejected since they cannot be encoded back to JSON.
type Number float64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*n = 0
		return nil
	}
	s = strings.TrimSpace(strings.Trim(s, `"`))
	if s == "" {
		*n = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid number %q: %w", s, err)
	}
	if !IsFinite(v) {
		return fmt.Errorf("%w: number %q is not finite", ErrInvalidInput, s)
	}
	*n = Number(v)
	return nil
}

// IsFinite reports whether v is neither NaN nor an infinity.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

const dateLayout = "2006-01-02"

// Date is a calendar date without a time of day, encoded as YYYY-MM-DD.
type Date struct {
	time.Time
}

// NewDate returns the date y-m-d in UTC.
func NewDate(y int, m time.Month, d int) Date {
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date, keeping t's own location for the
// day boundary.
func DateOf(t time.Time) Date {
	return NewDate(t.Date())
}

// ParseDate parses YYYY-MM-DD, falling back to RFC 3339 timestamps.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return Date{t}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q", s)
	}
	return DateOf(t.UTC()), nil
}

// MustDate parses s and panics on error. Intended for tests and constants.
func MustDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// String returns the date as YYYY-MM-DD, or "" for the zero date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// Ptr returns a pointer to a copy of d.
func (d Date) Ptr() *Date {
	return &d
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		if string(data) == "null" {
			*d = Date{}
			return nil
		}
		return fmt.Errorf("invalid date: %w", err)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
