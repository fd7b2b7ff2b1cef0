package web

import (
	"embed"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"mime/multipart"
	"net"
	"net/http"
	"strings"
	"time"

	"scene-prompt-studio/internal/attachment"
	"scene-prompt-studio/internal/config"
	"scene-prompt-studio/internal/generation"
	"scene-prompt-studio/internal/metrics"
	"scene-prompt-studio/internal/prompt"
	"scene-prompt-studio/internal/ratelimit"
)

//go:embed static/*
var staticFS embed.FS

const maxUploadBytes = 25 << 20

type apiError struct {
	Error string `json:"error"`
}

type defaultsResponse struct {
	config.FormDefaults
	AspectRatios []prompt.NamedOption `json:"aspect_ratios"`
}

type scriptResponse struct {
	Script  string          `json:"script"`
	Metrics metrics.Metrics `json:"metrics"`
}

type Options struct {
	Controller *generation.Controller
	Defaults   config.FormDefaults
	Limiter    *ratelimit.Keyed
	Logger     *slog.Logger
}

// Server is the single-page studio. It drives one shared controller.
type Server struct {
	ctrl     *generation.Controller
	defaults config.FormDefaults
	limiter  *ratelimit.Keyed
	logger   *slog.Logger
	metrics  metrics.Memo
}

func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	ctrl := opts.Controller
	if ctrl == nil {
		ctrl = generation.NewController(generation.ControllerOptions{Logger: logger})
	}

	return &Server{
		ctrl:     ctrl,
		defaults: opts.Defaults,
		limiter:  opts.Limiter,
		logger:   logger,
	}
}

func (s *Server) Handler() (http.Handler, error) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/generate", s.handleGenerate)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/metrics", s.handleMetrics)
	mux.HandleFunc("/api/script", s.handleScript)
	mux.HandleFunc("/api/defaults", s.handleDefaults)

	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, err
	}
	mux.Handle("/", http.FileServer(http.FS(staticSub)))

	return withLogging(mux, s.logger), nil
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, apiError{Error: "method not allowed"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid multipart form"})
		return
	}

	aspect := s.defaults.AspectRatio
	if raw := strings.TrimSpace(r.FormValue("aspect_ratio")); raw != "" {
		parsed, err := prompt.ParseAspectRatio(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, apiError{Error: err.Error()})
			return
		}
		aspect = parsed
	}

	req := generation.Request{
		Script:        r.FormValue("script"),
		SceneCount:    r.FormValue("scene_count"),
		Niche:         r.FormValue("niche"),
		StyleKeywords: r.FormValue("style_keywords"),
		AspectRatio:   aspect,
	}

	styleImage, err := formFile(r, "style_image")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "failed to read style image"})
		return
	}
	if styleImage != nil {
		req.StyleImage = styleImage
	}

	if _, loading := s.ctrl.Status().(generation.Loading); loading {
		writeJSON(w, http.StatusConflict, generation.ViewOf(s.ctrl.Status()))
		return
	}
	if s.limiter != nil && !s.limiter.Allow("ip:"+clientIP(r)) {
		writeJSON(w, http.StatusTooManyRequests, apiError{Error: "too many generations, try again in a minute"})
		return
	}
	if !s.ctrl.Trigger(r.Context(), req) {
		writeJSON(w, http.StatusConflict, generation.ViewOf(s.ctrl.Status()))
		return
	}

	writeJSON(w, http.StatusAccepted, generation.ViewOf(s.ctrl.Status()))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, apiError{Error: "method not allowed"})
		return
	}
	writeJSON(w, http.StatusOK, generation.ViewOf(s.ctrl.Status()))
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, apiError{Error: "method not allowed"})
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid form"})
		return
	}
	writeJSON(w, http.StatusOK, s.metrics.Derive(r.PostFormValue("script")))
}

func (s *Server) handleScript(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, apiError{Error: "method not allowed"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid multipart form"})
		return
	}

	file, err := formFile(r, "file")
	if err != nil || file == nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "missing file"})
		return
	}

	text, err := attachment.ReadScript(r.Context(), file)
	if err != nil {
		var unsupported *attachment.UnsupportedFileTypeError
		if errors.As(err, &unsupported) {
			writeJSON(w, http.StatusUnsupportedMediaType, apiError{Error: attachment.UnsupportedFileTypeNotice})
			return
		}
		s.logger.ErrorContext(r.Context(), "script upload failed", "err", err)
		writeJSON(w, http.StatusBadRequest, apiError{Error: "failed to read script file"})
		return
	}

	writeJSON(w, http.StatusOK, scriptResponse{Script: text, Metrics: metrics.Derive(text)})
}

func (s *Server) handleDefaults(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, apiError{Error: "method not allowed"})
		return
	}
	writeJSON(w, http.StatusOK, defaultsResponse{
		FormDefaults: s.defaults,
		AspectRatios: prompt.AspectRatios(),
	})
}

// formFile reads an optional upload into memory. A missing field yields nil.
func formFile(r *http.Request, field string) (*attachment.Blob, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	return &attachment.Blob{
		FileName: header.Filename,
		Type:     uploadMimeType(header, data),
		Data:     data,
	}, nil
}

func uploadMimeType(header *multipart.FileHeader, data []byte) string {
	mimeType := strings.TrimSpace(header.Header.Get("Content-Type"))
	if strings.Contains(mimeType, ";") {
		mimeType = strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0])
	}
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}
	if strings.Contains(mimeType, ";") {
		mimeType = strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0])
	}
	return mimeType
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func withLogging(next http.Handler, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Info("http", "method", r.Method, "path", r.URL.Path, "dur_ms", time.Since(start).Milliseconds())
	})
}
