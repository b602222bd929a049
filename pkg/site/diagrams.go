package site

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// handleDiagram serves /diagrams/{id}.svg as an SVG document and
// /diagrams/{id} as an HTML fragment.
func (s *Site) handleDiagram(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	id, svg := strings.CutSuffix(name, ".svg")

	cp, ok := s.store.Catalog().Lookup(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	t := s.resolveTheme(r)

	res, err := s.renderDiagram(r.Context(), cp.Diagram, t)
	if err != nil {
		if r.Context().Err() != nil {
			return
		}
		s.logger.Error("render diagram", "id", id, "theme", t, "err", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Vary", "Cookie")
	switch {
	case !svg:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<div class="diagram-container" data-theme="` + t.String() + `">`))
		_, _ = w.Write(res.Markup)
		_, _ = w.Write([]byte(`</div>`))
	case res.Failed():
		s.logger.Warn("diagram failed", "id", id, "theme", t, "err", res.Err)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write(res.Markup)
	default:
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Header().Set("Cache-Control", "public, max-age=300")
		_, _ = w.Write(res.Markup)
	}
}
