package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// SyncStatus reports how far a mutation got beyond memory.
type SyncStatus string

const (
	// SyncSynced means memory, remote and cache all hold the change.
	SyncSynced SyncStatus = "synced"
	// SyncLocalOnly means the remote write failed; memory and cache hold the change.
	SyncLocalOnly SyncStatus = "local_only"
	// SyncSkipped means the target did not exist and nothing changed.
	SyncSkipped SyncStatus = "skipped"
)

// LoadSource names where Load took the snapshot from.
type LoadSource string

const (
	SourceRemote LoadSource = "remote"
	SourceCache  LoadSource = "cache"
	SourceEmpty  LoadSource = "empty"
)

// LoadResult describes a completed Load.
type LoadResult struct {
	Source   LoadSource `json:"source"`
	Count    int        `json:"count"`
	Diverged []string   `json:"diverged,omitempty"`
}

// Store is the single source of truth for the project set. Every mutation is
// applied to memory first, then written to the remote store, then mirrored to
// the local cache whatever the remote outcome was.
type Store struct {
	remote   RemoteStore
	cache    LocalCache
	logger   *slog.Logger
	notifier Notifier
	now      func() time.Time
	newID    func() string
	policy   ConflictPolicy

	mu            sync.RWMutex
	projects      []Project
	selectedID    string
	selectedState string
	loading       atomic.Bool
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithNotifier sets the collaborator that receives user-facing notices.
func WithNotifier(n Notifier) StoreOption {
	return func(s *Store) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides uuid generation for new projects and entries.
func WithIDGenerator(newID func() string) StoreOption {
	return func(s *Store) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// WithConflictPolicy sets how Load treats a remote set that differs from
// the in-memory one.
func WithConflictPolicy(p ConflictPolicy) StoreOption {
	return func(s *Store) {
		s.policy = p
	}
}

// NewStore creates a store over the given remote and cache. The snapshot
// starts empty until Load is called.
func NewStore(remote RemoteStore, cache LocalCache, opts ...StoreOption) *Store {
	s := &Store{
		remote:   remote,
		cache:    cache,
		logger:   slog.New(slog.DiscardHandler),
		notifier: nopNotifier{},
		now:      time.Now,
		newID:    uuid.NewString,
		policy:   LastWriteWins,
		projects: []Project{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Loading reports whether a Load is in progress.
func (s *Store) Loading() bool {
	return s.loading.Load()
}

// Load replaces the snapshot with the remote project set and mirrors it to
// the cache. When the remote fails the cache is used instead, and when the
// cache is also empty the snapshot becomes empty. Load only returns an error
// when the cache could not be rewritten after a successful remote read.
func (s *Store) Load(ctx context.Context) (LoadResult, error) {
	s.loading.Store(true)
	defer s.loading.Store(false)

	remote, err := s.remote.GetAll(ctx)
	if err == nil {
		projects, backfilled := normalizeAll(remote, s.newID)
		diverged := s.replace(projects, true)
		s.writeBack(ctx, projects, backfilled)
		result := LoadResult{Source: SourceRemote, Count: len(projects), Diverged: diverged}
		if len(diverged) > 0 {
			s.logger.Warn("remote project set overwrote local changes", "diverged", diverged)
			s.notify(ctx, NoticeWarning, fmt.Sprintf("%d project(s) differed from the cloud copy and were replaced", len(diverged)))
		}
		s.logger.Info("projects loaded", "source", result.Source, "count", result.Count)
		s.notify(ctx, NoticeSuccess, "Data loaded successfully")
		if err := s.writeCache(ctx, projects); err != nil {
			return result, err
		}
		return result, nil
	}

	s.logger.Warn("loading projects from remote failed, falling back to cache", "error", err)
	s.notify(ctx, NoticeWarning, "Using offline data")

	cached, ok, cerr := s.cache.Read(ctx)
	if cerr != nil {
		s.logger.Error("reading local cache failed", "error", cerr)
		ok = false
	}
	if !ok {
		cached = nil
	}
	projects, backfilled := normalizeAll(cached, s.newID)
	s.replace(projects, false)
	if len(backfilled) > 0 {
		// Keep the ids just assigned so the next fallback sees the same entries.
		_ = s.writeCache(ctx, projects)
	}

	result := LoadResult{Source: SourceCache, Count: len(projects)}
	if len(projects) == 0 {
		result.Source = SourceEmpty
	}
	s.logger.Info("projects loaded", "source", result.Source, "count", result.Count)
	return result, nil
}

// Create builds a project from the draft, appends it to memory, then
// attempts the remote write and rewrites the cache. The in-memory append is
// never rolled back.
func (s *Store) Create(ctx context.Context, d Draft) (*Project, SyncStatus, error) {
	status := d.Status
	if status == "" {
		status = StatusActive
	}
	proj, _ := normalize(Project{
		ID:              s.newID(),
		Name:            d.Name,
		Description:     d.Description,
		State:           d.State,
		Engineer:        d.Engineer,
		StartDate:       d.StartDate,
		TargetDate:      d.TargetDate,
		Value:           float64(d.Value),
		Status:          status,
		CreatedAt:       s.now().UTC(),
		PercentComplete: d.PercentComplete,
		Labours:         []LabourEntry{},
		Materials:       []MaterialEntry{},
	}, s.newID)

	s.mu.Lock()
	s.projects = append(s.projects, proj.Clone())
	s.mu.Unlock()

	sync := s.put(ctx, proj, "Project created successfully", "Project saved locally")
	if err := s.persist(ctx); err != nil {
		return &proj, sync, err
	}
	return &proj, sync, nil
}

// Update replaces the record with the same id using overwrite semantics.
// An id that is no longer present is a silent no-op.
func (s *Store) Update(ctx context.Context, proj Project) (SyncStatus, error) {
	_, sync, err := s.Patch(ctx, proj.ID, func(p *Project) error {
		*p = proj.Clone()
		return nil
	})
	if errors.Is(err, ErrProjectNotFound) {
		s.logger.Debug("update of unknown project ignored", "project_id", proj.ID)
		return SyncSkipped, nil
	}
	return sync, err
}

// Patch applies edit to the stored project and then writes the result to the
// remote store and the cache. The edit runs on a copy while the store is
// locked, so concurrent patches of one project are applied in turn and none
// is lost. An error from edit leaves the project unchanged and is returned
// as is; an unknown id returns ErrProjectNotFound.
func (s *Store) Patch(ctx context.Context, id string, edit func(*Project) error) (*Project, SyncStatus, error) {
	proj, err := s.mutate(id, edit)
	if err != nil {
		return nil, SyncSkipped, err
	}
	sync := s.put(ctx, proj, "Project updated successfully", "Updated locally")
	if err := s.persist(ctx); err != nil {
		return &proj, sync, err
	}
	return &proj, sync, nil
}

func (s *Store) mutate(id string, edit func(*Project) error) (Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return Project{}, ErrProjectNotFound
	}
	current := s.projects[idx]
	next := current.Clone()
	if err := edit(&next); err != nil {
		return Project{}, err
	}
	next, _ = normalize(next, s.newID)
	next.ID = current.ID
	if next.CreatedAt.IsZero() {
		next.CreatedAt = current.CreatedAt
	}
	if sameDocument(withoutUpdatedAt(current), withoutUpdatedAt(next)) {
		next.UpdatedAt = current.UpdatedAt
	} else {
		now := s.now().UTC()
		next.UpdatedAt = &now
	}
	s.projects[idx] = next.Clone()
	return next, nil
}

// Delete removes the project and, with it, every labour and material entry
// it owns. The caller is responsible for confirming the delete beforehand.
func (s *Store) Delete(ctx context.Context, id string) (SyncStatus, error) {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		s.logger.Debug("delete of unknown project ignored", "project_id", id)
		return SyncSkipped, nil
	}
	s.projects = slices.Delete(s.projects, idx, idx+1)
	if s.selectedID == id {
		s.selectedID = ""
	}
	s.mu.Unlock()

	sync := SyncSynced
	if err := s.remote.Delete(ctx, id); err != nil {
		s.logger.Warn("remote delete failed", "project_id", id, "error", err)
		s.notify(ctx, NoticeWarning, "Deleted locally")
		sync = SyncLocalOnly
	} else {
		s.notify(ctx, NoticeSuccess, "Project deleted successfully")
	}
	if err := s.persist(ctx); err != nil {
		return sync, err
	}
	return sync, nil
}

// SetLabours replaces the project's labour ledger. An unknown project is a
// silent no-op, as with Update.
func (s *Store) SetLabours(ctx context.Context, projectID string, labours []LabourEntry) (SyncStatus, error) {
	_, sync, err := s.Patch(ctx, projectID, func(p *Project) error {
		p.Labours = append([]LabourEntry{}, labours...)
		return nil
	})
	if errors.Is(err, ErrProjectNotFound) {
		return SyncSkipped, nil
	}
	return sync, err
}

// SetMaterials replaces the project's material ledger.
func (s *Store) SetMaterials(ctx context.Context, projectID string, materials []MaterialEntry) (SyncStatus, error) {
	_, sync, err := s.Patch(ctx, projectID, func(p *Project) error {
		p.Materials = append([]MaterialEntry{}, materials...)
		return nil
	})
	if errors.Is(err, ErrProjectNotFound) {
		return SyncSkipped, nil
	}
	return sync, err
}

// Snapshot returns a deep copy of the project set in storage order.
func (s *Store) Snapshot() []Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.projects)
}

// Get returns a copy of the project with the given id.
func (s *Store) Get(id string) (*Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return nil, false
	}
	p := s.projects[idx].Clone()
	return &p, true
}

// Select marks a project as the one being viewed.
func (s *Store) Select(id string) (*Project, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return nil, false
	}
	s.selectedID = id
	p := s.projects[idx].Clone()
	return &p, true
}

// Selected returns the current version of the selected project. Selection is
// held by id, so edits to the selected project are always reflected.
func (s *Store) Selected() (*Project, bool) {
	s.mu.RLock()
	id := s.selectedID
	s.mu.RUnlock()
	if id == "" {
		return nil, false
	}
	return s.Get(id)
}

// ClearSelection drops the selected project.
func (s *Store) ClearSelection() {
	s.mu.Lock()
	s.selectedID = ""
	s.mu.Unlock()
}

// SelectState records the region the user is browsing.
func (s *Store) SelectState(state string) {
	s.mu.Lock()
	s.selectedState = state
	s.mu.Unlock()
}

// SelectedState returns the region the user is browsing.
func (s *Store) SelectedState() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedState
}

func (s *Store) put(ctx context.Context, proj Project, okMsg, localMsg string) SyncStatus {
	if err := s.remote.Put(ctx, proj.ID, proj); err != nil {
		s.logger.Warn("remote write failed", "project_id", proj.ID, "error", err)
		s.notify(ctx, NoticeWarning, localMsg)
		return SyncLocalOnly
	}
	s.notify(ctx, NoticeSuccess, okMsg)
	return SyncSynced
}

// writeBack stores projects whose entries were just given ids, so later loads
// see stable ids. Failures are only logged; the next write of the project
// carries the ids anyway.
func (s *Store) writeBack(ctx context.Context, projects []Project, ids []string) {
	for _, id := range ids {
		idx := slices.IndexFunc(projects, func(p Project) bool { return p.ID == id })
		if idx < 0 {
			continue
		}
		if err := s.remote.Put(ctx, id, projects[idx]); err != nil {
			s.logger.Warn("writing back entry ids failed", "project_id", id, "error", err)
		}
	}
}

// persist mirrors the current snapshot to the cache.
func (s *Store) persist(ctx context.Context) error {
	return s.writeCache(ctx, s.Snapshot())
}

func (s *Store) writeCache(ctx context.Context, projects []Project) error {
	if err := s.cache.Write(ctx, projects); err != nil {
		s.logger.Error("writing local cache failed", "error", err)
		s.notify(ctx, NoticeError, "Could not save data on this device")
		return fmt.Errorf("%w: %w", ErrLocalCache, err)
	}
	return nil
}

// replace swaps the snapshot. When checkPolicy is set the conflict policy
// decides whether divergence from the current snapshot is reported.
func (s *Store) replace(projects []Project, checkPolicy bool) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var diverged []string
	if checkPolicy && s.policy == WarnOnDivergence {
		diverged = Diverged(s.projects, projects)
	}
	s.projects = cloneAll(projects)
	if s.selectedID != "" && s.indexOf(s.selectedID) < 0 {
		s.selectedID = ""
	}
	return diverged
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.projects, func(p Project) bool { return p.ID == id })
}

func (s *Store) notify(ctx context.Context, level NoticeLevel, msg string) {
	s.notifier.Notify(ctx, Notice{Level: level, Message: msg, At: s.now()})
}

func cloneAll(projects []Project) []Project {
	out := make([]Project, len(projects))
	for i, p := range projects {
		out[i] = p.Clone()
	}
	return out
}
