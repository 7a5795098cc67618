package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/tbruckner/warpviz/pkg/buildinfo"
	"github.com/tbruckner/warpviz/pkg/checker"
	"github.com/tbruckner/warpviz/pkg/colormap"
	"github.com/tbruckner/warpviz/pkg/errors"
	"github.com/tbruckner/warpviz/pkg/pipeline"
	"github.com/tbruckner/warpviz/pkg/volume"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"version": buildinfo.Version,
		"commit":  buildinfo.Commit,
		"date":    buildinfo.Date,
	})
}

func (s *Server) handleStages(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, pipeline.Graph())
}

// handleColormap generates a color table from query parameters.
// All parameters are optional: dim, bright, downsample. Omitted parameters
// take the same defaults as the CLI.
func (s *Server) handleColormap(w http.ResponseWriter, r *http.Request) {
	opts := colormap.Options{
		Bright:     pipeline.DefaultBright,
		Downsample: pipeline.DefaultDownsample,
	}
	var err error
	if v := r.URL.Query().Get("dim"); v != "" {
		if opts.Dim, err = strconv.Atoi(v); err != nil {
			s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "dim: %v", err))
			return
		}
	}
	if v := r.URL.Query().Get("bright"); v != "" {
		if opts.Bright, err = strconv.ParseFloat(v, 64); err != nil {
			s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "bright: %v", err))
			return
		}
	}
	if v := r.URL.Query().Get("downsample"); v != "" {
		if opts.Downsample, err = strconv.Atoi(v); err != nil {
			s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "downsample: %v", err))
			return
		}
	}

	table, err := colormap.Generate(opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, table)
}

// checkerboardRequest is the body for POST /v1/checkerboard.
// Axis and mode are given as strings ("axial", "multi") for readability.
type checkerboardRequest struct {
	Label    string `json:"label"`
	Output   string `json:"output"`
	GridSize int    `json:"grid_size,omitempty"`
	Axis     string `json:"axis,omitempty"`
	Mode     string `json:"mode,omitempty"`
	Colors   int    `json:"colors,omitempty"`
}

type checkerboardResponse struct {
	Path string `json:"path"`
	Dims [3]int `json:"dims"`
}

func (s *Server) handleCheckerboard(w http.ResponseWriter, r *http.Request) {
	var req checkerboardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeDecode, err, "parse request body"))
		return
	}
	if req.Label == "" || req.Output == "" {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "label and output are required"))
		return
	}

	opts := checker.Options{
		GridSize: req.GridSize,
		Colors:   req.Colors,
	}
	if req.Axis != "" {
		axis, err := volume.ParseAxis(req.Axis)
		if err != nil {
			s.writeError(w, err)
			return
		}
		opts.Axis = axis
	}
	if req.Mode != "" {
		mode, err := checker.ParseMode(req.Mode)
		if err != nil {
			s.writeError(w, err)
			return
		}
		opts.Mode = mode
	}
	if opts.GridSize == 0 {
		opts.GridSize = pipeline.DefaultGridSize
	}
	if opts.Mode == "" {
		opts.Mode = checker.ModeBinary
	}
	if opts.Mode == checker.ModeMulti && opts.Colors == 0 {
		opts.Colors = pipeline.DefaultColors
	}

	label, err := volume.Load(req.Label)
	if err != nil {
		s.writeError(w, err)
		return
	}
	board, err := checker.Generate(label, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := board.Save(req.Output); err != nil {
		s.writeError(w, err)
		return
	}

	nx, ny, nz := board.Dims()
	s.writeJSON(w, http.StatusOK, checkerboardResponse{
		Path: req.Output,
		Dims: [3]int{nx, ny, nz},
	})
}

// handleRun executes the complete pipeline.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeDecode, err, "parse request body"))
		return
	}

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}
