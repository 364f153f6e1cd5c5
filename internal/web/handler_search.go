package web

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/vbonduro/lunchroulette/internal/domain"
	"github.com/vbonduro/lunchroulette/internal/service"
)

// pageData is what every template renders from.
type pageData struct {
	View      service.View
	Cuisines  []domain.Cuisine
	MinRadius int
	MaxRadius int
	// Map is the center the map shows; Marker is set once a place is chosen.
	Map    domain.GeoPoint
	Marker bool
	// OOB marks the controls for an out-of-band swap next to a result.
	OOB bool
}

func newPageData(v service.View) pageData {
	d := pageData{
		View:      v,
		Cuisines:  domain.Cuisines,
		MinRadius: domain.MinRadiusMeters,
		MaxRadius: domain.MaxRadiusMeters,
		Map:       v.Criteria.Center,
	}
	if v.Result.State == domain.StateSuccess {
		if g := v.Result.Place.Candidate.Geometry; g != (domain.GeoPoint{}) {
			d.Map = g
			d.Marker = true
		}
	}
	return d
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	if err := s.renderPage(w, newPageData(s.session.Snapshot()),
		"base.html", "pages/index.html", "partials/controls.html", "partials/result.html",
	); err != nil {
		s.logger.Error("render page failed", "error", err)
	}
}

// handleRadiusInput records keystrokes in the radius field. The value is kept
// as typed until the field loses focus.
func (s *Server) handleRadiusInput(w http.ResponseWriter, r *http.Request) {
	v, ok := parseRadius(r)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.session.SetRadiusInput(v)
	w.WriteHeader(http.StatusNoContent)
}

// handleRadiusCommit clamps the radius on blur and re-renders the controls so
// the field shows the clamped value.
func (s *Server) handleRadiusCommit(w http.ResponseWriter, r *http.Request) {
	if v, ok := parseRadius(r); ok {
		s.session.SetRadiusInput(v)
	}
	radius := s.session.CommitRadius()
	s.logger.Debug("radius committed", "radius", radius)

	if err := s.renderPartial(w, "partials/controls.html", newPageData(s.session.Snapshot())); err != nil {
		s.logger.Error("render partial failed", "error", err)
	}
}

func (s *Server) handleCuisine(w http.ResponseWriter, r *http.Request) {
	c, err := domain.ParseCuisine(r.FormValue("cuisine"))
	if err != nil {
		http.Error(w, "unknown cuisine", http.StatusBadRequest)
		return
	}
	s.session.SetCuisine(c)
	s.renderResult(w, s.session.Snapshot())
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if v, ok := parseRadius(r); ok {
		s.session.SetRadiusInput(v)
	}

	result, applied := s.session.Search(r.Context())
	if r.Context().Err() != nil && service.IsCanceled(result) {
		s.logger.Debug("search request canceled by client")
		return
	}
	if !applied {
		s.logger.Debug("search superseded", "state", result.State.String())
	}
	s.renderResult(w, s.session.Snapshot())
}

// handleResult serves the current result; pages rendered mid-search poll it
// until the search settles.
func (s *Server) handleResult(w http.ResponseWriter, _ *http.Request) {
	s.renderResult(w, s.session.Snapshot())
}

// renderResult writes the result partial followed by the controls as an
// out-of-band swap, so the search button always reflects the session state
// even if the controls were re-rendered while the search ran.
func (s *Server) renderResult(w http.ResponseWriter, v service.View) {
	data := newPageData(v)
	if err := s.renderPartial(w, "partials/result.html", data); err != nil {
		s.logger.Error("render partial failed", "error", err)
		return
	}
	data.OOB = true
	if err := s.renderPartial(w, "partials/controls.html", data); err != nil {
		s.logger.Error("render partial failed", "error", err)
	}
}

// parseRadius reads the "radius" form value. Empty or non-numeric input is
// ignored rather than rejected; the user may be mid-edit.
func parseRadius(r *http.Request) (int, bool) {
	raw := strings.TrimSpace(r.FormValue("radius"))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
