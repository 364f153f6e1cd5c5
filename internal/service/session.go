package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/vbonduro/lunchroulette/internal/domain"
)

// searcher is the subset of SelectionEngine that Session requires.
type searcher interface {
	Search(ctx context.Context, criteria domain.SearchCriteria) domain.SearchResult
}

// View is an immutable snapshot of a Session for rendering.
type View struct {
	Criteria    domain.SearchCriteria
	RadiusInput int
	Result      domain.SearchResult
}

// Loading reports whether the search control should be disabled.
func (v View) Loading() bool {
	return v.Result.State == domain.StateLoading
}

// Session holds the single user's search controls and the latest result. Only
// the newest search may write the result; older in-flight searches are
// canceled and their responses discarded.
type Session struct {
	mu          sync.Mutex
	engine      searcher
	criteria    domain.SearchCriteria
	radiusInput int
	result      domain.SearchResult
	seq         uint64
	cancel      context.CancelFunc
	logger      *slog.Logger
}

func NewSession(engine searcher, initial domain.SearchCriteria, logger *slog.Logger) *Session {
	initial = initial.WithRadius(initial.RadiusMeters)
	return &Session{
		engine:      engine,
		criteria:    initial,
		radiusInput: initial.RadiusMeters,
		result:      domain.Idle(),
		logger:      logger,
	}
}

// SetRadiusInput records the value being typed. It may be out of range until
// CommitRadius runs.
func (s *Session) SetRadiusInput(v int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.radiusInput = v
}

// CommitRadius clamps the typed value into range (the field lost focus) and
// returns the committed radius.
func (s *Session) CommitRadius() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commitRadiusLocked()
}

func (s *Session) commitRadiusLocked() int {
	s.criteria = s.criteria.WithRadius(s.radiusInput)
	s.radiusInput = s.criteria.RadiusMeters
	return s.criteria.RadiusMeters
}

// SetCuisine switches the filter. The displayed result is cleared immediately
// and any in-flight search is abandoned so a stale result never shows against
// the new filter.
func (s *Session) SetCuisine(c domain.Cuisine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.criteria = s.criteria.WithCuisine(c)
	s.abandonLocked()
	s.result = domain.Idle()
}

// Search runs a new search with the current criteria, superseding any search
// still in flight. It returns the result and whether it was applied; a search
// superseded while running is not applied. A search whose ctx is canceled by
// the caller leaves the session Idle.
func (s *Session) Search(ctx context.Context) (domain.SearchResult, bool) {
	s.mu.Lock()
	s.commitRadiusLocked()
	s.abandonLocked()
	s.seq++
	seq := s.seq
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.result = domain.Loading()
	criteria := s.criteria
	s.mu.Unlock()

	defer cancel()
	result := s.engine.Search(ctx, criteria)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq {
		s.logger.Debug("discarding superseded search result", "seq", seq, "latest", s.seq)
		return result, false
	}
	s.cancel = nil
	if ctx.Err() != nil && IsCanceled(result) {
		// The caller went away; nothing asked for this outcome.
		s.logger.Debug("search canceled by caller, resetting result", "seq", seq)
		s.result = domain.Idle()
		return result, true
	}
	s.result = result
	return result, true
}

// abandonLocked cancels the in-flight search, if any, and invalidates its
// sequence number.
func (s *Session) abandonLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.seq++
}

func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View{Criteria: s.criteria, RadiusInput: s.radiusInput, Result: s.result}
}
