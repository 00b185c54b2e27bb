package httpapi

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/healthchecker/internal/domain"
	"github.com/hamed0406/healthchecker/internal/probe"
	"github.com/hamed0406/healthchecker/internal/repo"
)

type checkView struct {
	ServiceID  domain.ServiceID `json:"service_id"`
	Name       string           `json:"service_name"`
	URL        string           `json:"healthcheck_url"`
	Status     string           `json:"status"`
	HTTPStatus int              `json:"http_status,omitempty"`
	LatencyMS  float64          `json:"latency_ms"`
	Reason     string           `json:"reason,omitempty"`
	CheckedAt  time.Time        `json:"checked_at"`
	DNS        *probe.DNSStatus `json:"dns,omitempty"`
}

func toView(r domain.CheckResult) checkView {
	return checkView{
		ServiceID:  r.ServiceID,
		Name:       r.Name,
		URL:        r.URL,
		Status:     r.Result(),
		HTTPStatus: r.HTTPStatus,
		LatencyMS:  float64(r.Latency.Microseconds()) / 1000.0,
		Reason:     r.Reason,
		CheckedAt:  r.CheckedAt,
	}
}

func (s *Server) handleCheckService(w http.ResponseWriter, r *http.Request) {
	id, ok := serviceID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid service id")
		return
	}
	res, err := s.Collectors.CheckService(r.Context(), id)
	if errors.Is(err, repo.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Service not found")
		return
	}
	if err != nil {
		s.Logger.Error("adhoc_check_error", zap.Int64("service_id", int64(id)), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	v := toView(res)
	if !res.Up && s.DNS != nil {
		dns := s.DNS(r.Context(), res.URL)
		v.DNS = &dns
		s.Logger.Info("dns_check",
			zap.String("domain", dns.Domain),
			zap.String("class", dns.Class),
			zap.Strings("nameservers", dns.Nameservers),
			zap.String("cname", dns.CNAME),
			zap.String("resolver_error", dns.ResolverError),
		)
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleCheckAll(w http.ResponseWriter, r *http.Request) {
	results, err := s.Collectors.CheckAll(r.Context())
	if err != nil {
		s.Logger.Error("adhoc_check_all_error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch services")
		return
	}
	views := make([]checkView, 0, len(results))
	for _, res := range results {
		views = append(views, toView(res))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"services":      views,
		"total_checked": len(views),
	})
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	active := s.Collectors.Restart(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Collectors restarted",
		"active":  active,
	})
}

func (s *Server) handleCollectors(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Collectors.Status())
}
