package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"

	"go.uber.org/zap"

	"riskengine/risk"
)

type pageHandler struct {
	deps  Deps
	pages *pageRenderer
}

// registerPageHandlers 注册页面与静态资源路由
func registerPageHandlers(mux *http.ServeMux, deps Deps, pages *pageRenderer) {
	h := &pageHandler{deps: deps, pages: pages}
	mux.HandleFunc("GET /{$}", h.handleGet)
	mux.HandleFunc("POST /{$}", h.handlePost)

	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))
}

func (h *pageHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	profile := risk.DefaultProfile()
	settings := h.deps.Defaults
	result, err := evaluate(r.Context(), h.deps, profile, settings, nil)
	h.render(w, r, profile, settings, result, err)
}

func (h *pageHandler) handlePost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	profile, settings, parseErr := ParseForm(r.PostForm, h.deps.Defaults)
	result, err := evaluate(r.Context(), h.deps, profile, settings, parseErr)
	h.render(w, r, profile, settings, result, err)
}

func (h *pageHandler) render(w http.ResponseWriter, r *http.Request, profile risk.Profile, settings risk.Settings, result resultView, evalErr error) {
	status := http.StatusOK
	if evalErr != nil {
		var verr risk.ValidationError
		if errors.As(evalErr, &verr) {
			status = http.StatusUnprocessableEntity
		} else {
			status = http.StatusInternalServerError
		}
	}

	var buf bytes.Buffer
	if err := h.pages.renderPage(&buf, newPageView(h.deps, profile, settings, result)); err != nil {
		h.deps.Logger.Error("render page",
			zap.String("request_id", GetRequestID(r.Context())),
			zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// RegisterAPIHandlers 注册运维接口（无评分接口）
func RegisterAPIHandlers(mux *http.ServeMux, deps Deps) {
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "ok",
			"model":  deps.Assessor.ModelInfo(),
			"uptime": deps.Metrics.GetUptime().String(),
			"system": deps.Metrics.GetSystemStats(),
		})
	})
	mux.HandleFunc("GET /api/metrics", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		w.Write([]byte(deps.Metrics.ExportPrometheus()))
	})
}
