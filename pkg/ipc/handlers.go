package ipc

import (
	"bytes"
	"image/color"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/bitter/pkg/compositor"
	"github.com/matzehuels/bitter/pkg/config"
	"github.com/matzehuels/bitter/pkg/errors"
	"github.com/matzehuels/bitter/pkg/headless"
	"github.com/matzehuels/bitter/pkg/partition"
	"github.com/matzehuels/bitter/pkg/snapshot"
	"github.com/matzehuels/bitter/pkg/surface"
	"github.com/matzehuels/bitter/pkg/treeviz"
)

func (s *Server) getSnapshot(w http.ResponseWriter, r *http.Request) {
	var snap snapshot.Snapshot
	err := s.loop.Do(r.Context(), func(srv *compositor.Server) error {
		snap = snapshot.Take(srv)
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) listOutputs(w http.ResponseWriter, r *http.Request) {
	var outputs []snapshot.Output
	err := s.loop.Do(r.Context(), func(srv *compositor.Server) error {
		outputs = snapshot.Take(srv).Outputs
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outputs)
}

func (s *Server) getOutput(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var out snapshot.Output
	err := s.loop.Do(r.Context(), func(srv *compositor.Server) error {
		o, ok := snapshot.TakeOutput(srv, name)
		if !ok {
			return errors.New(errors.ErrCodeNotFound, "output %q", name)
		}
		out = o
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type outputRequest struct {
	Name   string  `json:"name"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Scale  float64 `json:"scale"`
}

func (s *Server) createOutput(w http.ResponseWriter, r *http.Request) {
	var req outputRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := errors.ValidateName("output", req.Name); err != nil {
		s.writeError(w, err)
		return
	}
	if err := errors.ValidateDimensions("output", req.Width, req.Height); err != nil {
		s.writeError(w, err)
		return
	}

	var out snapshot.Output
	err := s.loop.Do(r.Context(), func(srv *compositor.Server) error {
		if _, exists := srv.Output(req.Name); exists {
			return errors.New(errors.ErrCodeInvalidInput, "output %q already exists", req.Name)
		}
		d, ok := s.backend.Display(req.Name)
		if ok {
			d.SetMode(req.Width, req.Height)
			d.SetScale(req.Scale)
		} else {
			d = s.backend.NewDisplay(req.Name, req.Width, req.Height, req.Scale)
		}
		srv.NewOutput(r.Context(), d)
		out, _ = snapshot.TakeOutput(srv, req.Name)
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) deleteOutput(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	err := s.loop.Do(r.Context(), func(srv *compositor.Server) error {
		return srv.DestroyOutput(r.Context(), name)
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getTree(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var dot string
	err := s.loop.Do(r.Context(), func(srv *compositor.Server) error {
		out, ok := srv.Output(name)
		if !ok {
			return errors.New(errors.ErrCodeNotFound, "output %q", name)
		}
		dot = treeviz.ToDOT(out.Root(), treeviz.Options{Label: memberTitle, Box: out.Box()})
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "svg" {
		svg, err := treeviz.RenderSVG(r.Context(), dot)
		if err != nil {
			s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "render tree"))
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Write(svg)
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz")
	w.Write([]byte(dot))
}

func (s *Server) getFramePNG(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var buf bytes.Buffer
	err := s.loop.Do(r.Context(), func(srv *compositor.Server) error {
		out, ok := srv.Output(name)
		if !ok {
			return errors.New(errors.ErrCodeNotFound, "output %q", name)
		}
		d, ok := out.Display().(*headless.Display)
		if !ok || d.Frame() == nil {
			return errors.New(errors.ErrCodeNotFound, "no frame committed on %q", name)
		}
		return d.EncodePNG(&buf)
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(buf.Bytes())
}

var defaultSurfaceColor = color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}

type surfaceRequest struct {
	Title   string `json:"title"`
	Role    string `json:"role"`
	Color   string `json:"color"`
	Inset   int    `json:"inset"`
	Unready bool   `json:"unready"`
}

type surfaceResponse struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Output string `json:"output,omitempty"`
}

func (s *Server) createSurface(w http.ResponseWriter, r *http.Request) {
	var req surfaceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	role, err := surface.ParseRole(req.Role)
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "role"))
		return
	}
	opts := headless.SurfaceOptions{Title: req.Title, Role: role, Inset: req.Inset, Unready: req.Unready}
	opts.Color = defaultSurfaceColor
	if req.Color != "" {
		c, err := config.ParseColor(req.Color)
		if err != nil {
			s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "color"))
			return
		}
		opts.Color = c
	}

	var resp surfaceResponse
	err = s.loop.Do(r.Context(), func(srv *compositor.Server) error {
		surf, err := srv.NewSurface(r.Context(), headless.NewSurface(opts))
		if err != nil {
			return err
		}
		resp = surfaceResponse{ID: surf.ID(), Title: surf.Title()}
		if out, ok := srv.OutputOf(surf); ok {
			resp.Output = out.Name()
		}
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) deleteSurface(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.loop.Do(r.Context(), func(srv *compositor.Server) error {
		return srv.DestroySurface(r.Context(), id)
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type frameResult struct {
	Output     string `json:"output"`
	Tiles      int    `json:"tiles"`
	Drawn      int    `json:"drawn"`
	Skipped    int    `json:"skipped"`
	Configured int    `json:"configured"`
	Error      string `json:"error,omitempty"`
}

func (s *Server) postFrame(w http.ResponseWriter, r *http.Request) {
	var results []frameResult
	err := s.loop.Do(r.Context(), func(srv *compositor.Server) error {
		now := time.Now()
		for _, out := range srv.Outputs() {
			res := frameResult{Output: out.Name()}
			if out.RequestFrame() {
				st, err := srv.Render(r.Context(), out, now)
				res.Tiles, res.Drawn, res.Skipped, res.Configured = st.Tiles, st.Drawn, st.Skipped, st.Configured
				if err != nil {
					res.Error = errors.UserMessage(err)
				}
			}
			results = append(results, res)
		}
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	if results == nil {
		results = []frameResult{}
	}
	writeJSON(w, http.StatusOK, results)
}

func memberTitle(m partition.Member) string {
	if s, ok := m.(surface.Surface); ok {
		return s.Title()
	}
	return "?"
}
