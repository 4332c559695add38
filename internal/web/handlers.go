package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"time"

	"pingtrend/internal/chart"
	"pingtrend/internal/models"
	"pingtrend/internal/targets"
)

type pointDTO struct {
	Time   time.Time     `json:"time"`
	Status models.Status `json:"status"`
	RTT    *float64      `json:"rtt_ms"`
}

type seriesDTO struct {
	Name    string     `json:"name"`
	Address string     `json:"address"`
	Points  []pointDTO `json:"points"`
}

type samplesDTO struct {
	Ticks  []time.Time `json:"ticks"`
	Series []seriesDTO `json:"series"`
}

// handleIndex serves the page showing the chart and statistics
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	refresh := s.refresh
	if refresh <= 0 {
		refresh = 5 * time.Second
	}

	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, struct{ RefreshMillis int64 }{refresh.Milliseconds()}); err != nil {
		s.logger.Error("failed to render index", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// handleSamples handles /api/samples requests
func (s *Server) handleSamples(w http.ResponseWriter, r *http.Request) {
	snap := s.source.Snapshot()

	out := samplesDTO{
		Ticks:  snap.Ticks,
		Series: make([]seriesDTO, len(snap.Series)),
	}
	if out.Ticks == nil {
		out.Ticks = []time.Time{}
	}
	for i, sr := range snap.Series {
		dto := seriesDTO{
			Name:    sr.Target.Name,
			Address: sr.Target.Address,
			Points:  make([]pointDTO, len(sr.Points)),
		}
		for j, p := range sr.Points {
			dto.Points[j] = pointDTO{Time: p.Time, Status: p.Status}
			if p.OK() {
				ms := math.Round(float64(p.RTT)/float64(time.Microsecond)) / 1000
				dto.Points[j].RTT = &ms
			}
		}
		out.Series[i] = dto
	}

	writeJSON(w, out)
}

// handleStats handles /api/stats requests
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.source.Stats())
}

// handleTargets handles /api/targets requests
func (s *Server) handleTargets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.targets.Targets())
}

// handleAddTarget handles POST /api/targets with a {"name","address"} body
func (s *Server) handleAddTarget(w http.ResponseWriter, r *http.Request) {
	var t models.Target
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		http.Error(w, "invalid target: "+err.Error(), http.StatusBadRequest)
		return
	}

	normalized, err := targets.Normalize(t.Name, t.Address)
	if err == nil {
		err = s.targets.Add(normalized.Name, normalized.Address)
	}
	if err != nil {
		http.Error(w, err.Error(), targetErrorStatus(err))
		return
	}

	s.logger.Info("target added", "target", normalized.Name, "address", normalized.Address)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(normalized)
}

// handleRemoveTarget handles DELETE /api/targets/{name}
func (s *Server) handleRemoveTarget(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := s.targets.Remove(name); err != nil {
		http.Error(w, err.Error(), targetErrorStatus(err))
		return
	}

	s.logger.Info("target removed", "target", name)
	w.WriteHeader(http.StatusNoContent)
}

func targetErrorStatus(err error) int {
	switch {
	case errors.Is(err, targets.ErrListLocked), errors.Is(err, targets.ErrDuplicateTarget):
		return http.StatusConflict
	case errors.Is(err, targets.ErrUnknownTarget):
		return http.StatusNotFound
	case errors.Is(err, targets.ErrInvalidTarget):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// handleChart renders the current trend as png
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := chart.Render(&buf, s.source.Snapshot(), s.chart); err != nil {
		if errors.Is(err, chart.ErrNoData) {
			http.Error(w, "no samples yet", http.StatusServiceUnavailable)
			return
		}
		s.logger.Error("failed to render chart", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
