// Package httpadapter exposes the analyzer over HTTP.
package httpadapter

import (
	"embed"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"geotrace/internal/domain"
	"geotrace/internal/ports"
)

//go:embed static/index.html
var static embed.FS

const maxHistoryLimit = 500

type Server struct {
	analyzer ports.Analyzer
	limiter  *clientLimiter
}

func New(analyzer ports.Analyzer, ratePerSec float64, burst int) *Server {
	return &Server{
		analyzer: analyzer,
		limiter:  newClientLimiter(ratePerSec, burst),
	}
}

func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealthz)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(s.limiter.middleware)
		r.Post("/analyze", s.handleAnalyze)
		r.Get("/history", s.handleHistory)
		r.Delete("/history", s.handleClearHistory)
	})

	return r
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := static.ReadFile("static/index.html")
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type analyzeRequest struct {
	Domain string `json:"domain"`
}

// analyzeResponse flattens an AnalysisResult into the wire shape.
type analyzeResponse struct {
	ID            int64    `json:"id,omitempty"`
	Domain        string   `json:"domain"`
	IP            string   `json:"ip"`
	Country       string   `json:"country"`
	Region        string   `json:"region"`
	City          string   `json:"city"`
	Lat           *float64 `json:"lat,omitempty"`
	Lon           *float64 `json:"lon,omitempty"`
	ISP           string   `json:"isp"`
	Org           string   `json:"org"`
	AS            string   `json:"as"`
	ThreatLevel   string   `json:"threat_level"`
	ThreatScore   int      `json:"threat_score"`
	ThreatReasons []string `json:"threat_reasons"`
	CreatedAt     string   `json:"created_at,omitempty"`
}

func toResponse(res domain.AnalysisResult) analyzeResponse {
	return analyzeResponse{
		Domain:        res.Domain,
		IP:            res.IP,
		Country:       res.Geo.Country,
		Region:        res.Geo.Region,
		City:          res.Geo.City,
		Lat:           res.Geo.Lat,
		Lon:           res.Geo.Lon,
		ISP:           res.Geo.ISP,
		Org:           res.Geo.Org,
		AS:            res.Geo.ASN,
		ThreatLevel:   string(res.Threat.Level),
		ThreatScore:   res.Threat.Score,
		ThreatReasons: res.Threat.Reasons,
		CreatedAt:     res.CreatedAt.Format(time.RFC3339),
	}
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation", "request body must be JSON with a \"domain\" field")
		return
	}

	res, err := s.analyzer.Analyze(r.Context(), req.Domain)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(res))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation", "limit must be an integer")
			return
		}
		limit = n
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	records, err := s.analyzer.History(r.Context(), limit)
	if err != nil {
		log.Printf("history read failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal", "could not read history")
		return
	}

	out := make([]analyzeResponse, 0, len(records))
	for _, rec := range records {
		resp := toResponse(rec.AnalysisResult)
		resp.ID = rec.ID
		out = append(out, resp)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.analyzer.ClearHistory(r.Context()); err != nil {
		log.Printf("history clear failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal", "could not clear history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// writeFailure maps the pipeline's failure taxonomy onto distinct HTTP
// responses so callers can tell the categories apart.
func writeFailure(w http.ResponseWriter, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		writeError(w, http.StatusBadRequest, "validation", verr.Error())
		return
	}

	var rerr *domain.ResolutionError
	if errors.As(err, &rerr) {
		writeError(w, http.StatusBadRequest, "resolution", rerr.Error())
		return
	}

	var gerr *domain.GeoError
	if errors.As(err, &gerr) {
		switch gerr.Kind {
		case domain.GeoTimeout:
			writeError(w, http.StatusGatewayTimeout, "enrichment-timeout", gerr.Error())
		case domain.GeoServiceFailure:
			writeError(w, http.StatusBadRequest, "enrichment-failure", gerr.Error())
		default:
			writeError(w, http.StatusBadGateway, "enrichment-transport", gerr.Error())
		}
		return
	}

	log.Printf("analyze failed: %v", err)
	writeError(w, http.StatusInternalServerError, "internal", "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, category, msg string) {
	writeJSON(w, status, map[string]string{"error": msg, "category": category})
}
