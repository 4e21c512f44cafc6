package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/tenantdb/pkg/logger"
	"github.com/dmitrymomot/tenantdb/pkg/tenantdb"
)

// Service is the subset of *tenantdb.Service the API needs.
type Service interface {
	Query(ctx context.Context, tenantID, statement string, args ...any) ([]tenantdb.Row, error)
	Execute(ctx context.Context, tenantID, statement string, args ...any) error
	Detach(ctx context.Context, tenantID string) error
	IsAttached(tenantID string) bool
	GetStats(tenantID string) (tenantdb.TenantStats, error)
	ListTenants() tenantdb.TenantList
	Healthcheck() func(context.Context) error
}

// StatementRequest is the body of the query and execute endpoints.
type StatementRequest struct {
	SQL  string `json:"sql"`
	Args []any  `json:"args,omitempty"`
}

type api struct {
	svc Service
	cfg config
}

// NewRouter mounts the tenant endpoints:
//
//	GET    /health/live
//	GET    /health/ready
//	GET    /tenants
//	GET    /tenants/{tenantID}
//	DELETE /tenants/{tenantID}
//	POST   /tenants/{tenantID}/query
//	POST   /tenants/{tenantID}/execute
func NewRouter(svc Service, opts ...Option) http.Handler {
	cfg := config{logger: logger.Discard(), maxBodyBytes: 1 << 20}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.logger = cfg.logger.With(logger.Component("httpapi"))

	a := &api{svc: svc, cfg: cfg}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(accessLog(cfg.logger))
	r.Use(middleware.Recoverer)
	if cfg.requestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.requestTimeout))
	}

	r.Get("/health/live", a.live)
	r.Get("/health/ready", a.ready)

	r.Route("/tenants", func(r chi.Router) {
		r.Get("/", a.listTenants)
		r.Route("/{tenantID}", func(r chi.Router) {
			r.Get("/", a.tenantStats)
			r.Delete("/", a.detach)
			r.Post("/query", a.query)
			r.Post("/execute", a.execute)
		})
	})

	return r
}

func (a *api) live(w http.ResponseWriter, _ *http.Request) {
	writeData(w, map[string]string{"status": "alive"}, nil)
}

func (a *api) ready(w http.ResponseWriter, r *http.Request) {
	if err := a.svc.Healthcheck()(r.Context()); err != nil {
		a.cfg.logger.WarnContext(r.Context(), "readiness check failed", logger.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, Response{
			Code:  "NOT_READY",
			Error: &ErrorDetail{Code: "NOT_READY", Message: "engine is not ready"},
		})
		return
	}
	writeData(w, map[string]string{"status": "ready"}, nil)
}

func (a *api) listTenants(w http.ResponseWriter, _ *http.Request) {
	writeData(w, a.svc.ListTenants(), nil)
}

func (a *api) tenantStats(w http.ResponseWriter, r *http.Request) {
	st, err := a.svc.GetStats(chi.URLParam(r, "tenantID"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeData(w, st, nil)
}

func (a *api) detach(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	if err := a.svc.Detach(r.Context(), tenantID); err != nil {
		a.fail(w, r, err)
		return
	}
	writeData(w, map[string]any{"tenant_id": tenantID, "attached": a.svc.IsAttached(tenantID)}, nil)
}

func (a *api) query(w http.ResponseWriter, r *http.Request) {
	req, ok := a.decode(w, r)
	if !ok {
		return
	}
	tenantID := chi.URLParam(r, "tenantID")

	rows, err := a.svc.Query(r.Context(), tenantID, req.SQL, req.Args...)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeData(w, rows, map[string]any{"tenant_id": tenantID, "row_count": len(rows)})
}

func (a *api) execute(w http.ResponseWriter, r *http.Request) {
	req, ok := a.decode(w, r)
	if !ok {
		return
	}
	tenantID := chi.URLParam(r, "tenantID")

	if err := a.svc.Execute(r.Context(), tenantID, req.SQL, req.Args...); err != nil {
		a.fail(w, r, err)
		return
	}
	writeData(w, nil, map[string]any{"tenant_id": tenantID})
}

func (a *api) decode(w http.ResponseWriter, r *http.Request) (StatementRequest, bool) {
	var req StatementRequest

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, a.cfg.maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeBadRequest(w, fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit))
			return req, false
		}
		writeBadRequest(w, "malformed request body")
		return req, false
	}

	if strings.TrimSpace(req.SQL) == "" {
		writeBadRequest(w, "sql is required")
		return req, false
	}
	return req, true
}

func (a *api) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	a.cfg.logger.Log(r.Context(), level, "tenant request failed",
		logger.TenantID(chi.URLParam(r, "tenantID")),
		slog.Int("status", status),
		logger.Error(err),
	)
	writeError(w, err)
}
