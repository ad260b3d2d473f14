package metrics

import (
	"fmt"
	"strings"
	"time"

	"github.com/rpggio/sitetrack/internal/domain/project"
)

// Classification is the derived status of a project.
type Classification string

const (
	ClassActive    Classification = "active"
	ClassCompleted Classification = "completed"
	ClassDelayed   Classification = "delayed"
)

// StatusPolicy selects how a project is classified.
type StatusPolicy int

const (
	// PolicyStoredStatus trusts the stored status: completed stays completed,
	// anything else past its target date is delayed.
	PolicyStoredStatus StatusPolicy = iota
	// PolicyDateOnly ignores the stored status: a past target date means
	// completed.
	PolicyDateOnly
)

func (p StatusPolicy) String() string {
	if p == PolicyDateOnly {
		return "date"
	}
	return "stored"
}

// ParseStatusPolicy parses "stored" or "date".
func ParseStatusPolicy(s string) (StatusPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "stored":
		return PolicyStoredStatus, nil
	case "date", "date-only":
		return PolicyDateOnly, nil
	}
	return PolicyStoredStatus, fmt.Errorf("unknown status policy %q", s)
}

// Classify derives the status of p at now under policy.
func Classify(now time.Time, p project.Project, policy StatusPolicy) Classification {
	past := p.TargetDate != nil && !p.TargetDate.IsZero() && p.TargetDate.Before(now)
	if policy == PolicyDateOnly {
		if past {
			return ClassCompleted
		}
		return ClassActive
	}
	switch {
	case p.Status == project.StatusCompleted:
		return ClassCompleted
	case past && p.Status != project.StatusCancelled:
		return ClassDelayed
	default:
		return ClassActive
	}
}
