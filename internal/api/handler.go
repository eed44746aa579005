package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/HenryLodge/viro-sub000/internal/config"
	"github.com/HenryLodge/viro-sub000/internal/geo"
	"github.com/HenryLodge/viro-sub000/internal/metrics"
	"github.com/HenryLodge/viro-sub000/internal/outbreak"
	"github.com/HenryLodge/viro-sub000/internal/patient"
	"github.com/HenryLodge/viro-sub000/internal/routing"
)

var validate = validator.New()

// GraphRequest is the body of POST /v1/graph
type GraphRequest struct {
	Patients []patient.Record `json:"patients"`
}

// RankRequest is the body of POST /v1/rank
type RankRequest struct {
	Lat       *float64           `json:"lat" validate:"required,gte=-90,lte=90"`
	Lng       *float64           `json:"lng" validate:"required,gte=-180,lte=180"`
	Tier      string             `json:"tier" validate:"omitempty,oneof=critical urgent routine self-care"`
	Hospitals []routing.Hospital `json:"hospitals" validate:"dive"`
	Top       int                `json:"top" validate:"gte=0"`
}

// RankResponse is the body returned by POST /v1/rank
type RankResponse struct {
	Hospitals []routing.RankedHospital `json:"hospitals"`
}

// Handler serves the graph and ranking pipelines over HTTP. It keeps no
// state between requests.
type Handler struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewHandler creates a new handler
func NewHandler(cfg *config.Config, logger *zap.Logger) *Handler {
	return &Handler{cfg: cfg, logger: logger}
}

// Routes registers the v1 routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/graph", h.Graph)
	r.Post("/rank", h.Rank)

	return r
}

// Graph runs the linkage pipeline over the posted patients
func (h *Handler) Graph(w http.ResponseWriter, r *http.Request) {
	var req GraphRequest
	if err := h.decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if len(req.Patients) > h.cfg.Server.MaxPatients {
		writeError(w, TooLarge(fmt.Sprintf("at most %d patients per request", h.cfg.Server.MaxPatients)))
		return
	}

	now := time.Now().UTC()
	nodes := make([]*patient.Node, 0, len(req.Patients))
	for i := range req.Patients {
		if err := req.Patients[i].Validate(); err != nil {
			writeError(w, Validation(fmt.Sprintf("patient %d is invalid", i), err))
			return
		}
		nodes = append(nodes, req.Patients[i].ToNode(now))
	}

	start := time.Now()
	res := outbreak.Run(nodes, h.cfg.Graph, h.cfg.Outbreak)
	elapsed := time.Since(start)
	metrics.RecordPipelineRun("api", elapsed, len(res.Edges), len(res.Clusters), len(res.ClusterAlerts))

	h.logger.Info("graph pipeline completed",
		zap.Int("patients", len(nodes)),
		zap.Int("edges", len(res.Edges)),
		zap.Int("clusters", len(res.Clusters)),
		zap.Int("alerts", len(res.ClusterAlerts)),
		zap.Duration("elapsed", elapsed),
	)
	writeJSON(w, http.StatusOK, res)
}

// Rank scores the posted hospitals for one patient location and tier
func (h *Handler) Rank(w http.ResponseWriter, r *http.Request) {
	var req RankRequest
	if err := h.decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if len(req.Hospitals) > h.cfg.Server.MaxHospitals {
		writeError(w, TooLarge(fmt.Sprintf("at most %d hospitals per request", h.cfg.Server.MaxHospitals)))
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, Validation("invalid rank request", err))
		return
	}

	tier := patient.Tier(req.Tier)
	ranked := routing.Rank(geo.Point{Lat: *req.Lat, Lng: *req.Lng}, tier, req.Hospitals, h.cfg.Routing)
	if req.Top > 0 {
		ranked = routing.Top(ranked, req.Top)
	}
	metrics.RecordRankRequest(req.Tier)

	h.logger.Debug("ranked hospitals",
		zap.String("tier", req.Tier),
		zap.Int("candidates", len(req.Hospitals)),
	)
	writeJSON(w, http.StatusOK, RankResponse{Hospitals: ranked})
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) *AppError {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.Server.MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return decodeError(err)
	}
	return nil
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, err *AppError) {
	writeJSON(w, err.HTTPStatus, map[string]any{
		"error":   err.Message,
		"code":    err.Code,
		"details": err.Details,
	})
}
