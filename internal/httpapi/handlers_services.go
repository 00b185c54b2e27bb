package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hamed0406/healthchecker/internal/domain"
	"github.com/hamed0406/healthchecker/internal/repo"
)

const maxBody = 1 << 20

func serviceID(r *http.Request) (domain.ServiceID, bool) {
	n, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return domain.ServiceID(n), true
}

func (s *Server) handleListServices(w http.ResponseWriter, r *http.Request) {
	svcs, err := s.Services.List(r.Context())
	if err != nil {
		s.Logger.Error("list_services_error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch services")
		return
	}
	if svcs == nil {
		svcs = []domain.Service{}
	}
	writeJSON(w, http.StatusOK, svcs)
}

func (s *Server) handleCreateService(w http.ResponseWriter, r *http.Request) {
	var req createServiceRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad payload")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	svc := &domain.Service{
		Name:            req.Name,
		URL:             normalizeHTTPURL(req.URL),
		IntervalSeconds: req.IntervalSeconds,
	}
	if err := s.Services.Create(r.Context(), svc); err != nil {
		s.Logger.Error("create_service_error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to create service")
		return
	}
	active := s.Collectors.Restart(r.Context())

	s.Logger.Info("service_created",
		zap.Int64("service_id", int64(svc.ID)),
		zap.String("service_name", svc.Name),
		zap.String("url", svc.URL),
		zap.Int("active", active),
	)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Service created successfully",
		"id":      svc.ID,
		"service": svc,
	})
}

func (s *Server) handleUpdateService(w http.ResponseWriter, r *http.Request) {
	id, ok := serviceID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid service id")
		return
	}
	var p domain.ServicePatch
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "bad payload")
		return
	}
	if p.Name != nil {
		n := strings.TrimSpace(*p.Name)
		p.Name = &n
	}
	if err := validatePatch(p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if p.URL != nil {
		u := normalizeHTTPURL(*p.URL)
		p.URL = &u
	}

	svc, err := s.Services.Update(r.Context(), id, p)
	if errors.Is(err, repo.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Service not found")
		return
	}
	if err != nil {
		s.Logger.Error("update_service_error", zap.Int64("service_id", int64(id)), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to update service")
		return
	}
	active := s.Collectors.Restart(r.Context())

	s.Logger.Info("service_updated", zap.Int64("service_id", int64(id)), zap.Int("active", active))
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Service updated successfully",
		"service": svc,
	})
}

func (s *Server) handleDeleteService(w http.ResponseWriter, r *http.Request) {
	id, ok := serviceID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid service id")
		return
	}
	err := s.Services.Delete(r.Context(), id)
	if errors.Is(err, repo.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Service not found")
		return
	}
	if err != nil {
		s.Logger.Error("delete_service_error", zap.Int64("service_id", int64(id)), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to delete service")
		return
	}
	active := s.Collectors.Restart(r.Context())

	s.Logger.Info("service_deleted", zap.Int64("service_id", int64(id)), zap.Int("active", active))
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Service deleted successfully",
	})
}
