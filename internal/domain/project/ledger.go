package project

import (
	"context"

	"github.com/samber/lo"
)

type identified interface {
	entryID() string
}

func (l LabourEntry) entryID() string   { return l.ID }
func (m MaterialEntry) entryID() string { return m.ID }

// replaceEntry returns a copy of list with the entry sharing item's id
// replaced. The second result is false when no entry matched.
func replaceEntry[T identified](list []T, item T) ([]T, bool) {
	_, idx, ok := lo.FindIndexOf(list, func(e T) bool { return e.entryID() == item.entryID() })
	if !ok {
		return list, false
	}
	out := append([]T{}, list...)
	out[idx] = item
	return out, true
}

// removeEntry returns a copy of list without the entry with the given id.
func removeEntry[T identified](list []T, id string) ([]T, bool) {
	out := lo.Filter(list, func(e T, _ int) bool { return e.entryID() != id })
	return out, len(out) != len(list)
}

// AddLabour appends a labour entry to the project's ledger, assigning an id
// and creation time when missing.
func (s *Store) AddLabour(ctx context.Context, projectID string, entry LabourEntry) (*LabourEntry, SyncStatus, error) {
	if entry.ID == "" {
		entry.ID = s.newID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now().UTC()
	}
	proj, sync, err := s.Patch(ctx, projectID, func(p *Project) error {
		p.Labours = append(p.Labours, entry)
		return nil
	})
	if proj == nil {
		return nil, sync, err
	}
	return &entry, sync, err
}

// EditLabour replaces the labour entry with the same id and returns it as
// stored. A zero creation time keeps the existing one.
func (s *Store) EditLabour(ctx context.Context, projectID string, entry LabourEntry) (*LabourEntry, SyncStatus, error) {
	proj, sync, err := s.Patch(ctx, projectID, func(p *Project) error {
		if entry.CreatedAt.IsZero() {
			if old, found := lo.Find(p.Labours, func(e LabourEntry) bool { return e.ID == entry.ID }); found {
				entry.CreatedAt = old.CreatedAt
			}
		}
		labours, ok := replaceEntry(p.Labours, entry)
		if !ok {
			return ErrEntryNotFound
		}
		p.Labours = labours
		return nil
	})
	if proj == nil {
		return nil, sync, err
	}
	stored, _ := lo.Find(proj.Labours, func(e LabourEntry) bool { return e.ID == entry.ID })
	return &stored, sync, err
}

// RemoveLabour deletes a labour entry by id.
func (s *Store) RemoveLabour(ctx context.Context, projectID, entryID string) (SyncStatus, error) {
	_, sync, err := s.Patch(ctx, projectID, func(p *Project) error {
		labours, ok := removeEntry(p.Labours, entryID)
		if !ok {
			return ErrEntryNotFound
		}
		p.Labours = labours
		return nil
	})
	return sync, err
}

// AddMaterial appends a material entry to the project's ledger.
func (s *Store) AddMaterial(ctx context.Context, projectID string, entry MaterialEntry) (*MaterialEntry, SyncStatus, error) {
	if entry.ID == "" {
		entry.ID = s.newID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now().UTC()
	}
	proj, sync, err := s.Patch(ctx, projectID, func(p *Project) error {
		p.Materials = append(p.Materials, entry)
		return nil
	})
	if proj == nil {
		return nil, sync, err
	}
	return &entry, sync, err
}

// EditMaterial replaces the material entry with the same id and returns it
// as stored.
func (s *Store) EditMaterial(ctx context.Context, projectID string, entry MaterialEntry) (*MaterialEntry, SyncStatus, error) {
	proj, sync, err := s.Patch(ctx, projectID, func(p *Project) error {
		if entry.CreatedAt.IsZero() {
			if old, found := lo.Find(p.Materials, func(e MaterialEntry) bool { return e.ID == entry.ID }); found {
				entry.CreatedAt = old.CreatedAt
			}
		}
		materials, ok := replaceEntry(p.Materials, entry)
		if !ok {
			return ErrEntryNotFound
		}
		p.Materials = materials
		return nil
	})
	if proj == nil {
		return nil, sync, err
	}
	stored, _ := lo.Find(proj.Materials, func(e MaterialEntry) bool { return e.ID == entry.ID })
	return &stored, sync, err
}

// RemoveMaterial deletes a material entry by id.
func (s *Store) RemoveMaterial(ctx context.Context, projectID, entryID string) (SyncStatus, error) {
	_, sync, err := s.Patch(ctx, projectID, func(p *Project) error {
		materials, ok := removeEntry(p.Materials, entryID)
		if !ok {
			return ErrEntryNotFound
		}
		p.Materials = materials
		return nil
	})
	return sync, err
}
