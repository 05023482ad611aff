package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/harishkotra/SketchStack/pkg/buildinfo"
	"github.com/harishkotra/SketchStack/pkg/diagram"
	sserrors "github.com/harishkotra/SketchStack/pkg/errors"
	"github.com/harishkotra/SketchStack/pkg/integrations/mcp"
	"github.com/harishkotra/SketchStack/pkg/llm"
	"github.com/harishkotra/SketchStack/pkg/pipeline"
	"github.com/harishkotra/SketchStack/pkg/plan"
)

// diagramResponse is returned by generate and refine.
type diagramResponse struct {
	SessionID        string                `json:"sessionId"`
	ArchitecturePlan plan.ArchitecturePlan `json:"architecturePlan"`
	DiagramPlan      diagram.Plan          `json:"diagramPlan"`
	RenderedDocument string                `json:"renderedDocument"`
	// XML duplicates RenderedDocument for the web client.
	XML       string          `json:"xml"`
	Scene     json.RawMessage `json:"excalidrawJson,omitempty"`
	ShareURL  string          `json:"shareUrl"`
	DrawioURL string          `json:"drawioUrl"`
	ViewerURL string          `json:"viewerUrl"`
}

func newDiagramResponse(res *pipeline.Result) diagramResponse {
	return diagramResponse{
		SessionID:        res.SessionID,
		ArchitecturePlan: res.Plan,
		DiagramPlan:      res.Diagram,
		RenderedDocument: res.Document,
		XML:              res.Document,
		Scene:            res.SceneJSON,
		ShareURL:         res.ShareURL,
		DrawioURL:        res.ShareURL,
		ViewerURL:        res.ViewerURL,
	}
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req pipeline.GenerateRequest
	if err := decode(r, &req); err != nil {
		writeClientError(w, err)
		return
	}
	res, err := s.runner.Generate(r.Context(), req)
	if err != nil {
		s.pipelineError(w, r, "Failed to generate diagram", err)
		return
	}
	writeJSON(w, http.StatusOK, newDiagramResponse(res))
}

func (s *Server) handleRefine(w http.ResponseWriter, r *http.Request) {
	var req pipeline.RefineRequest
	if err := decode(r, &req); err != nil {
		writeClientError(w, err)
		return
	}
	res, err := s.runner.Refine(r.Context(), req)
	if err != nil {
		s.pipelineError(w, r, "Failed to refine diagram", err)
		return
	}
	writeJSON(w, http.StatusOK, newDiagramResponse(res))
}

func (s *Server) pipelineError(w http.ResponseWriter, r *http.Request, title string, err error) {
	if isClientError(err) {
		writeClientError(w, err)
		return
	}
	logger(r.Context(), s.logger).Error(title, "code", codeOf(err), "err", err)
	writeFailure(w, title, err)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess, err := s.runner.Session(r.Context(), r.URL.Query().Get("sessionId"))
	if err != nil {
		s.pipelineError(w, r, "Failed to export diagram", err)
		return
	}
	out, err := pipeline.Export(r.Context(), sess, chi.URLParam(r, "format"), s.runner.Options.Layout.Orientation)
	if err != nil {
		s.pipelineError(w, r, "Failed to export diagram", err)
		return
	}
	if out.Link != nil {
		writeJSON(w, http.StatusOK, out.Link)
		return
	}
	w.Header().Set("Content-Type", out.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", out.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out.Body)
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.presets.List())
}

func (s *Server) handlePreset(w http.ResponseWriter, r *http.Request) {
	p, ok := s.presets.Get(chi.URLParam(r, "name"))
	if !ok {
		writeError(w, http.StatusNotFound, sserrors.ErrCodePresetNotFound, "Preset not found", "")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type configResponse struct {
	ArchitectureStyles []plan.ArchitectureStyle `json:"architectureStyles"`
	CloudProviders     []plan.Provider          `json:"cloudProviders"`
	Layers             []diagram.Layer          `json:"layers"`
	DefaultModel       string                   `json:"defaultModel"`
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, configResponse{
		ArchitectureStyles: plan.ArchitectureStyles,
		CloudProviders:     plan.Providers,
		Layers:             diagram.Layers,
		DefaultModel:       s.cfg.Ollama.Model,
	})
}

// healthProbeTimeout bounds the upstream check made by /health.
const healthProbeTimeout = 3 * time.Second

type ollamaHealth struct {
	Reachable      bool   `json:"reachable"`
	Model          string `json:"model"`
	ModelInstalled bool   `json:"modelInstalled"`
	Error          string `json:"error,omitempty"`
}

// handleHealth always answers 200 while the process is up. When the model
// client can list models, the reply also reports whether Ollama answers and
// has the configured model, and status turns "degraded" if not.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"status": "ok",
		"build":  buildinfo.Get(),
	}

	if lister, ok := s.runner.LLM.(llm.ModelLister); ok {
		ctx, cancel := context.WithTimeout(r.Context(), healthProbeTimeout)
		defer cancel()

		h := ollamaHealth{Model: s.cfg.Ollama.Model}
		names, err := lister.Models(ctx)
		switch {
		case errors.Is(err, llm.ErrModelsUnsupported):
			writeJSON(w, http.StatusOK, body)
			return
		case err != nil:
			h.Error = sserrors.UserMessage(err)
			logger(r.Context(), s.logger).Warn("ollama health check failed", "err", err)
		default:
			h.Reachable = true
			h.ModelInstalled = llm.HasModel(names, h.Model)
		}
		if !h.Reachable || !h.ModelInstalled {
			body["status"] = "degraded"
		}
		body["ollama"] = h
	}
	writeJSON(w, http.StatusOK, body)
}

// toolCallRequest is the JSON-RPC envelope the web client forwards.
type toolCallRequest struct {
	Method string `json:"method"`
	Params struct {
		Name      string         `json:"name"`
		Arguments map[string]any `json:"arguments"`
	} `json:"params"`
}

func (s *Server) handleToolCall(w http.ResponseWriter, r *http.Request) {
	var req toolCallRequest
	if err := decode(r, &req); err != nil {
		writeClientError(w, err)
		return
	}
	if req.Method != "tools/call" {
		writeClientError(w, sserrors.New(sserrors.ErrCodeInvalidInput, "unsupported method %q", req.Method))
		return
	}
	if req.Params.Name == "" {
		writeClientError(w, sserrors.New(sserrors.ErrCodeInvalidInput, "params.name is required"))
		return
	}
	if s.drawio == nil {
		writeClientError(w, errNotConfigured("draw.io"))
		return
	}
	res, err := s.drawio.Call(r.Context(), req.Params.Name, req.Params.Arguments)
	if err != nil {
		logger(r.Context(), s.logger).Error("tool call failed", "tool", req.Params.Name, "err", err)
		code := codeOf(err)
		writeError(w, sserrors.HTTPStatus(code), code, "Tool call failed", sserrors.UserMessage(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": res})
}

type sessionRequest struct {
	SessionID string `json:"sessionId"`
	Lightbox  bool   `json:"lightbox,omitempty"`
	Dark      string `json:"dark,omitempty"`
}

func (s *Server) handleOpenInDrawio(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := decode(r, &req); err != nil {
		writeClientError(w, err)
		return
	}
	sess, err := s.runner.Session(r.Context(), req.SessionID)
	if err != nil {
		s.pipelineError(w, r, "Failed to open in draw.io", err)
		return
	}
	if s.drawio == nil {
		writeClientError(w, errNotConfigured("draw.io"))
		return
	}
	res, err := s.drawio.OpenXML(r.Context(), sess.Document, mcp.OpenOptions{Lightbox: req.Lightbox, Dark: req.Dark})
	if err != nil {
		logger(r.Context(), s.logger).Error("open in draw.io failed", "session", sess.ID, "err", err)
		writeFailure(w, "Failed to open in draw.io", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "result": res})
}

func (s *Server) handleExcalidrawShare(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := decode(r, &req); err != nil {
		writeClientError(w, err)
		return
	}
	sess, err := s.runner.Session(r.Context(), req.SessionID)
	if err != nil {
		s.pipelineError(w, r, "Failed to share diagram", err)
		return
	}
	if len(sess.Scene) == 0 {
		writeError(w, http.StatusNotFound, sserrors.ErrCodeSessionNotFound, "Session or Excalidraw data not found", "")
		return
	}
	if s.excalidraw == nil {
		writeClientError(w, errNotConfigured("Excalidraw"))
		return
	}
	url, err := s.excalidraw.Share(r.Context(), sess.Scene)
	if err != nil {
		logger(r.Context(), s.logger).Error("excalidraw share failed", "session", sess.ID, "err", err)
		writeFailure(w, "Failed to share diagram", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func errNotConfigured(name string) error {
	return sserrors.New(sserrors.ErrCodeUpstreamUnavailable, "%s MCP server is not configured", name)
}
