package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hamed0406/sitecheck/internal/checker"
	"github.com/hamed0406/sitecheck/internal/domain"
	apimw "github.com/hamed0406/sitecheck/internal/httpapi/middleware"
	"github.com/hamed0406/sitecheck/internal/probe"
	"github.com/hamed0406/sitecheck/internal/repo"
)

const maxWait = 60 * time.Second

type Server struct {
	Logger  *zap.Logger
	Checker *checker.Checker
	Checks  repo.CheckStore
	Metrics http.Handler // served on /metrics when set
}

func NewServer(l *zap.Logger, c *checker.Checker, store repo.CheckStore) *Server {
	return &Server{Logger: l, Checker: c, Checks: store}
}

func (s *Server) Router(keys apimw.Keys, allowedOrigins []string, pubRPM, pubBurst, admRPM, admBurst int) http.Handler {
	r := chi.NewRouter()
	if len(allowedOrigins) == 0 {
		r.Use(cors.AllowAll().Handler)
	} else {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type", "X-API-Key"},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics)
	}

	r.Route("/api/checks", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(apimw.RateLimit(pubRPM, pubBurst), apimw.RequireAny(keys))
			r.Get("/", s.handleListChecks)
			r.Get("/{id}", s.handleGetCheck)
			r.Get("/{id}/wait", s.handleWaitCheck)
		})
		r.Group(func(r chi.Router) {
			r.Use(apimw.RateLimit(admRPM, admBurst), apimw.RequireAdmin(keys))
			r.Post("/", s.handleStartCheck)
			r.Delete("/{id}", s.handleCancelCheck)
		})
	})

	return r
}

type startPayload struct {
	URL string `json:"url"`
}

func (s *Server) handleStartCheck(w http.ResponseWriter, r *http.Request) {
	var p startPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil || strings.TrimSpace(p.URL) == "" {
		writeError(w, http.StatusBadRequest, "bad payload: url is required")
		return
	}

	h := s.Checker.Start(p.URL)
	if err := s.Checks.Put(r.Context(), h); err != nil {
		h.Cancel()
		s.Logger.Warn("check_store_error", zap.String("check_id", h.ID()), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not track check")
		return
	}

	w.Header().Set("Location", "/api/checks/"+h.ID())
	writeJSON(w, http.StatusAccepted, domain.CheckFromHandle(h))
}

func (s *Server) handleListChecks(w http.ResponseWriter, r *http.Request) {
	hs, err := s.Checks.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list error")
		return
	}
	out := make([]domain.Check, 0, len(hs))
	for _, h := range hs {
		out = append(out, domain.CheckFromHandle(h))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetCheck(w http.ResponseWriter, r *http.Request) {
	h, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, domain.CheckFromHandle(h))
}

// handleWaitCheck blocks until the check resolves, the optional ?timeout=
// passes (capped at maxWait) or the client goes away. A still-pending check
// answers 202.
func (s *Server) handleWaitCheck(w http.ResponseWriter, r *http.Request) {
	h, ok := s.lookup(w, r)
	if !ok {
		return
	}
	wait := maxWait
	if v := r.URL.Query().Get("timeout"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			writeError(w, http.StatusBadRequest, "bad timeout")
			return
		}
		wait = min(d, maxWait)
	}

	ctx, cancel := context.WithTimeout(r.Context(), wait)
	defer cancel()
	if _, err := h.AwaitContext(ctx); err != nil {
		writeJSON(w, http.StatusAccepted, domain.CheckFromHandle(h))
		return
	}
	writeJSON(w, http.StatusOK, domain.CheckFromHandle(h))
}

// handleCancelCheck is idempotent: cancelling a resolved check just returns it.
// With ?forget=true the check is also dropped from the store.
func (s *Server) handleCancelCheck(w http.ResponseWriter, r *http.Request) {
	h, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if h.Cancel() {
		s.Logger.Info("check_cancel_requested", zap.String("check_id", h.ID()))
	}
	if forget, _ := strconv.ParseBool(r.URL.Query().Get("forget")); forget {
		if err := s.Checks.Delete(r.Context(), h.ID()); err != nil {
			writeError(w, http.StatusInternalServerError, "delete error")
			return
		}
	}
	writeJSON(w, http.StatusOK, domain.CheckFromHandle(h))
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*checker.Handle, bool) {
	id := chi.URLParam(r, "id")
	h, err := s.Checks.Get(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "lookup error")
		return nil, false
	}
	if h == nil {
		writeError(w, http.StatusNotFound, "check not found")
		return nil, false
	}
	return h, true
}

// DNSObserver logs resolver diagnostics for checks that failed with an
// unknown host. The lookup runs on its own goroutine.
func DNSObserver(log *zap.Logger, r probe.Resolver) checker.Observer {
	return func(h *checker.Handle, res probe.CheckResult) {
		if res.Category != probe.CategoryUnknownHost {
			return
		}
		go func() {
			dns := probe.DiagnoseDNS(context.Background(), r, h.Address())
			log.Info("dns_check",
				zap.String("check_id", h.ID()),
				zap.String("domain", dns.Host),
				zap.String("class", dns.Class),
				zap.Int("ips", len(dns.IPs)),
				zap.Strings("nameservers", dns.Nameservers),
				zap.String("cname", dns.CNAME),
				zap.String("resolver_error", dns.ResolverError),
			)
		}()
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
