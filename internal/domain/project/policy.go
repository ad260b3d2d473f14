package project

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// ConflictPolicy decides what Load does when the remote set disagrees with
// the in-memory one.
type ConflictPolicy int

const (
	// LastWriteWins silently replaces the in-memory set.
	LastWriteWins ConflictPolicy = iota
	// WarnOnDivergence replaces the set but reports the ids that differed.
	WarnOnDivergence
)

func (p ConflictPolicy) String() string {
	switch p {
	case WarnOnDivergence:
		return "warn"
	default:
		return "last-write-wins"
	}
}

// ParseConflictPolicy parses "last-write-wins" or "warn".
func ParseConflictPolicy(s string) (ConflictPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "last-write-wins", "lww":
		return LastWriteWins, nil
	case "warn":
		return WarnOnDivergence, nil
	}
	return LastWriteWins, fmt.Errorf("unknown conflict policy %q", s)
}

// Diverged returns the sorted ids of local projects that are missing from
// incoming or whose stored document differs from the incoming one.
func Diverged(local, incoming []Project) []string {
	byID := make(map[string]Project, len(incoming))
	for _, p := range incoming {
		byID[p.ID] = p
	}
	var ids []string
	for _, p := range local {
		other, ok := byID[p.ID]
		if !ok || !sameDocument(p, other) {
			ids = append(ids, p.ID)
		}
	}
	slices.Sort(ids)
	return ids
}

func sameDocument(a, b Project) bool {
	ab, err := json.Marshal(a)
	if err != nil {
		return false
	}
	bb, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return bytes.Equal(ab, bb)
}

func withoutUpdatedAt(p Project) Project {
	p.UpdatedAt = nil
	return p
}
