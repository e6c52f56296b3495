package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"regexp"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/serkansentuna34/serkan-ai-api/internal/clients"
)

var modelNamePattern = regexp.MustCompile(`^[a-zA-Z0-9._:-]+$`)

// proxyUpstream relays an upstream response body and status to the caller.
func (s *Server) proxyUpstream(w http.ResponseWriter, resp *http.Response, upstream string) {
	defer resp.Body.Close()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		s.logger.Warn("proxy upstream body", zap.String("upstream", upstream), zap.Error(err))
	}
}

func (s *Server) handleSystemHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	type serviceHealth struct {
		Name      string `json:"name"`
		Healthy   bool   `json:"healthy"`
		LatencyMS int64  `json:"latencyMs"`
	}

	check := func(name string, client *clients.ServiceClient, path string) serviceHealth {
		start := time.Now()
		resp, err := client.Get(ctx, path)
		health := serviceHealth{Name: name, LatencyMS: time.Since(start).Milliseconds()}
		if err != nil {
			return health
		}
		resp.Body.Close()
		health.Healthy = resp.StatusCode < http.StatusInternalServerError
		return health
	}

	services := []serviceHealth{
		check("model-runner", s.ai.ModelRunner, "/api/tags"),
		check("workflow", s.ai.Workflow, "/api/v1/workflows"),
		check("flow-builder", s.ai.FlowBuilder, "/health"),
	}
	writeJSON(w, http.StatusOK, map[string]any{"services": services})
}

func (s *Server) handleListModels(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ai.ModelRunner.Get(r.Context(), "/api/tags")
	if err != nil {
		s.logger.Error("list models", zap.Error(err))
		writeError(w, http.StatusBadGateway, "upstream_unavailable")
		return
	}
	s.proxyUpstream(w, resp, "model-runner")
}

func (s *Server) handlePullModel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil || !modelNamePattern.MatchString(req.Name) {
		writeError(w, http.StatusBadRequest, "invalid_model_name")
		return
	}
	body, _ := json.Marshal(map[string]any{"name": req.Name, "stream": false})
	resp, err := s.ai.ModelRunner.Do(r.Context(), http.MethodPost, "/api/pull", "application/json", bytes.NewReader(body))
	if err != nil {
		s.logger.Error("pull model", zap.String("model", req.Name), zap.Error(err))
		writeError(w, http.StatusBadGateway, "upstream_unavailable")
		return
	}
	s.proxyUpstream(w, resp, "model-runner")
}

func (s *Server) handleDeleteModel(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !modelNamePattern.MatchString(name) {
		writeError(w, http.StatusBadRequest, "invalid_model_name")
		return
	}
	body, _ := json.Marshal(map[string]string{"name": name})
	resp, err := s.ai.ModelRunner.Do(r.Context(), http.MethodDelete, "/api/delete", "application/json", bytes.NewReader(body))
	if err != nil {
		s.logger.Error("delete model", zap.String("model", name), zap.Error(err))
		writeError(w, http.StatusBadGateway, "upstream_unavailable")
		return
	}
	s.proxyUpstream(w, resp, "model-runner")
}

func (s *Server) handleShowModel(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !modelNamePattern.MatchString(name) {
		writeError(w, http.StatusBadRequest, "invalid_model_name")
		return
	}
	body, _ := json.Marshal(map[string]string{"name": name})
	resp, err := s.ai.ModelRunner.Do(r.Context(), http.MethodPost, "/api/show", "application/json", bytes.NewReader(body))
	if err != nil {
		s.logger.Error("show model", zap.String("model", name), zap.Error(err))
		writeError(w, http.StatusBadGateway, "upstream_unavailable")
		return
	}
	s.proxyUpstream(w, resp, "model-runner")
}

func (s *Server) handleListWorkflows(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ai.Workflow.Get(r.Context(), "/api/v1/workflows")
	if err != nil {
		s.logger.Error("list workflows", zap.Error(err))
		writeError(w, http.StatusBadGateway, "upstream_unavailable")
		return
	}
	s.proxyUpstream(w, resp, "workflow")
}

func (s *Server) workflowAction(w http.ResponseWriter, r *http.Request, method, pathSuffix string) {
	id := chi.URLParam(r, "workflowId")
	if !modelNamePattern.MatchString(id) {
		writeError(w, http.StatusBadRequest, "invalid_workflow_id")
		return
	}
	resp, err := s.ai.Workflow.Do(r.Context(), method, "/api/v1/workflows/"+id+pathSuffix, "", nil)
	if err != nil {
		s.logger.Error("workflow action", zap.String("workflow", id), zap.String("action", pathSuffix), zap.Error(err))
		writeError(w, http.StatusBadGateway, "upstream_unavailable")
		return
	}
	s.proxyUpstream(w, resp, "workflow")
}

func (s *Server) handleActivateWorkflow(w http.ResponseWriter, r *http.Request) {
	s.workflowAction(w, r, http.MethodPost, "/activate")
}

func (s *Server) handleDeactivateWorkflow(w http.ResponseWriter, r *http.Request) {
	s.workflowAction(w, r, http.MethodPost, "/deactivate")
}

func (s *Server) handleDeleteWorkflow(w http.ResponseWriter, r *http.Request) {
	s.workflowAction(w, r, http.MethodDelete, "")
}

func (s *Server) handleExportWorkflow(w http.ResponseWriter, r *http.Request) {
	s.workflowAction(w, r, http.MethodGet, "")
}

func (s *Server) handleListFlows(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ai.FlowBuilder.Get(r.Context(), "/api/v1/flows")
	if err != nil {
		s.logger.Error("list flows", zap.Error(err))
		writeError(w, http.StatusBadGateway, "upstream_unavailable")
		return
	}
	s.proxyUpstream(w, resp, "flow-builder")
}

func (s *Server) handleDeleteFlow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "flowId")
	if !modelNamePattern.MatchString(id) {
		writeError(w, http.StatusBadRequest, "invalid_flow_id")
		return
	}
	resp, err := s.ai.FlowBuilder.Do(r.Context(), http.MethodDelete, "/api/v1/flows/"+id, "", nil)
	if err != nil {
		s.logger.Error("delete flow", zap.String("flow", id), zap.Error(err))
		writeError(w, http.StatusBadGateway, "upstream_unavailable")
		return
	}
	s.proxyUpstream(w, resp, "flow-builder")
}
