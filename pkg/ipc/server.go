package ipc

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/bitter/pkg/buildinfo"
	"github.com/matzehuels/bitter/pkg/compositor"
	"github.com/matzehuels/bitter/pkg/errors"
	"github.com/matzehuels/bitter/pkg/headless"
)

// Server serves the control API for one compositor loop.
type Server struct {
	loop    *compositor.Loop
	backend *headless.Backend
	logger  *log.Logger
	router  chi.Router
}

// NewServer builds the router. backend creates displays and client surfaces
// requested over the API; it is only used from the loop goroutine.
func NewServer(loop *compositor.Loop, backend *headless.Backend, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{loop: loop, backend: backend, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SetHeader("Server", buildinfo.Product()))
	r.Use(s.logRequests)

	r.Get("/snapshot", s.getSnapshot)
	r.Post("/frame", s.postFrame)

	r.Route("/outputs", func(r chi.Router) {
		r.Get("/", s.listOutputs)
		r.Post("/", s.createOutput)
		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", s.getOutput)
			r.Delete("/", s.deleteOutput)
			r.Get("/tree", s.getTree)
			r.Get("/frame.png", s.getFramePNG)
		})
	})

	r.Route("/surfaces", func(r chi.Router) {
		r.Post("/", s.createSurface)
		r.Delete("/{id}", s.deleteSurface)
	})

	s.router = r
	return s
}

// Handler returns the API handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Info("ipc listening", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("ipc request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

type errorResponse struct {
	Error string      `json:"error"`
	Code  errors.Code `json:"code,omitempty"`
}

func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidScene, errors.ErrCodeInvalidConfig:
		return http.StatusBadRequest
	case errors.ErrCodeUnsupportedRole:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeFrameBusy:
		return http.StatusConflict
	case errors.ErrCodeRenderTarget:
		return http.StatusBadGateway
	}
	if stderrors.Is(err, compositor.ErrLoopStopped) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("ipc request failed", "err", err)
	}
	writeJSON(w, status, errorResponse{Error: errors.UserMessage(err), Code: errors.GetCode(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}
