package project

import (
	"cmp"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// SortKey orders a project listing.
type SortKey string

const (
	SortName       SortKey = "name"       // ascending, case-insensitive
	SortValue      SortKey = "value"      // descending
	SortDate       SortKey = "date"       // newest created first
	SortCompletion SortKey = "completion" // earliest target date first, unset last
)

// Query filters and orders a project listing. Empty fields match everything.
type Query struct {
	State  string  `json:"state,omitempty"`
	Status Status  `json:"status,omitempty"`
	Text   string  `json:"search,omitempty"`
	Sort   SortKey `json:"sortBy,omitempty"`
}

// Filter returns the projects matching q, sorted by q.Sort. The text search
// is a case-insensitive substring match on name, engineer and state.
func Filter(projects []Project, q Query) []Project {
	text := strings.ToLower(strings.TrimSpace(q.Text))
	out := lo.Filter(projects, func(p Project, _ int) bool {
		if q.State != "" && p.State != q.State {
			return false
		}
		if q.Status != "" && p.Status != q.Status {
			return false
		}
		if text == "" {
			return true
		}
		return strings.Contains(strings.ToLower(p.Name), text) ||
			strings.Contains(strings.ToLower(p.Engineer), text) ||
			strings.Contains(strings.ToLower(p.State), text)
	})
	Sort(out, q.Sort)
	return out
}

// Sort orders projects in place. An empty or unknown key keeps storage order.
func Sort(projects []Project, key SortKey) {
	switch key {
	case SortName:
		slices.SortStableFunc(projects, func(a, b Project) int {
			return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		})
	case SortValue:
		slices.SortStableFunc(projects, func(a, b Project) int {
			return cmp.Compare(b.Value, a.Value)
		})
	case SortDate:
		slices.SortStableFunc(projects, func(a, b Project) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
	case SortCompletion:
		slices.SortStableFunc(projects, func(a, b Project) int {
			switch {
			case a.TargetDate == nil && b.TargetDate == nil:
				return 0
			case a.TargetDate == nil:
				return 1
			case b.TargetDate == nil:
				return -1
			}
			return a.TargetDate.Compare(b.TargetDate.Time)
		})
	}
}

// ParseSortKey validates a sort key. The empty string is accepted.
func ParseSortKey(s string) (SortKey, bool) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case "", SortName, SortValue, SortDate, SortCompletion:
		return k, true
	}
	return "", false
}

// Query returns the matching projects from the current snapshot.
func (s *Store) Query(q Query) []Project {
	return Filter(s.Snapshot(), q)
}
