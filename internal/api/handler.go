// Package api exposes region search, cached lookups and snapshot health over
// HTTP.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/vetverify/internal/apperr"
	"github.com/sells-group/vetverify/internal/lookup"
	"github.com/sells-group/vetverify/internal/metrics"
	"github.com/sells-group/vetverify/internal/model"
	"github.com/sells-group/vetverify/internal/monitoring"
)

// searchFailedMessage is returned for every upstream search failure so raw
// upstream error text never reaches clients.
const searchFailedMessage = "no valid license found or parse error"

// Handler serves the lookup API.
type Handler struct {
	svc        *lookup.Service
	metrics    *metrics.Metrics
	collector  *monitoring.Collector
	staleAfter time.Duration
}

// Option customizes a Handler.
type Option func(*Handler)

// WithMetrics mounts the Prometheus exposition at /metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Handler) { h.metrics = m }
}

// WithStatus mounts snapshot freshness at /api/status.
func WithStatus(c *monitoring.Collector, staleAfter time.Duration) Option {
	return func(h *Handler) {
		h.collector = c
		h.staleAfter = staleAfter
	}
}

// NewHandler creates an API handler over svc.
func NewHandler(svc *lookup.Service, opts ...Option) *Handler {
	h := &Handler{svc: svc}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Register mounts the API routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/health", h.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/regions", h.handleRegions)
		r.Get("/status", h.handleStatus)
		r.Route("/regions/{region}", func(r chi.Router) {
			r.Get("/search", h.handleSearch)
			r.Get("/verify", h.handleVerify)
			r.Get("/blob", h.handleBlob)
		})
	})
	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics.Handler())
	}
}

// NewRouter wires the middleware stack and the API routes.
func NewRouter(h *Handler, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	h.Register(r)
	return r
}

// NewServer returns an http.Server for handler on addr.
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

type regionInfo struct {
	Name string `json:"name"`
	Code string `json:"code"`
	Kind string `json:"kind"`
}

type errorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleRegions(w http.ResponseWriter, _ *http.Request) {
	all := h.svc.Registry().All()
	out := make([]regionInfo, 0, len(all))
	for _, a := range all {
		out = append(out, regionInfo{Name: a.Name(), Code: a.Code(), Kind: string(a.Kind())})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	if h.collector == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "status reporting is disabled"})
		return
	}
	snap, err := h.collector.Collect(r.Context(), h.staleAfter)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "region")
	q := r.URL.Query()
	filter := model.Filter{
		FirstName:     q.Get("firstName"),
		LastName:      q.Get("lastName"),
		LicenseNumber: q.Get("licenseNumber"),
	}

	results, err := h.svc.Search(r.Context(), code, filter)
	if err != nil {
		if apperr.IsUnsupportedRegion(err) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		zap.L().Warn("search failed",
			zap.String("component", "api"),
			zap.String("code", code),
			zap.Error(err),
		)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: searchFailedMessage})
		return
	}
	if results == nil {
		results = []model.VerificationResult{}
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	resp := h.svc.Verify(r.Context(), chi.URLParam(r, "region"))
	writeJSON(w, resp.Status, resp)
}

func (h *Handler) handleBlob(w http.ResponseWriter, r *http.Request) {
	raw, err := h.svc.Blob(r.Context(), chi.URLParam(r, "region"))
	switch {
	case err == nil:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(raw)
	case apperr.IsUnsupportedRegion(err):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case apperr.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no cached snapshot"})
	default:
		zap.L().Warn("blob read failed", zap.String("component", "api"), zap.Error(err))
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "blob store unavailable"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// requestID propagates the caller's X-Request-Id or assigns a new UUID.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(middleware.RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(middleware.RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Debug("http request",
			zap.String("component", "api"),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
