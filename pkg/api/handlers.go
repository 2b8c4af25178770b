package api

import (
	"encoding/json"
	"net/http"

	"github.com/matzehuels/tooltree/pkg/core/treemap"
	"github.com/matzehuels/tooltree/pkg/errors"
	"github.com/matzehuels/tooltree/pkg/pipeline"
)

// Request is the body of the POST endpoints. Exactly one of Records and CSV
// must be set.
type Request struct {
	// Records is a JSON array of flat objects.
	Records json.RawMessage `json:"records,omitempty"`

	// CSV is a CSV table with a header row.
	CSV string `json:"csv,omitempty"`

	Options pipeline.Options `json:"options"`
}

// TreemapResponse is returned by POST /api/treemap.
type TreemapResponse struct {
	RunID   string               `json:"run_id"`
	Cached  bool                 `json:"cached"`
	Data    *treemap.Data        `json:"data"`
	Levels  []treemap.LevelStats `json:"levels"`
	Summary treemap.Summary      `json:"summary"`
}

// contentTypes maps figure formats to response content types.
var contentTypes = map[string]string{
	pipeline.FormatJSON:   "application/json",
	pipeline.FormatPlotly: "application/json",
	pipeline.FormatHTML:   "text/html; charset=utf-8",
	pipeline.FormatDOT:    "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatSVG:    "image/svg+xml",
	pipeline.FormatPNG:    "image/png",
	pipeline.FormatPDF:    "application/pdf",
}

func (s *Server) handleTreemap(w http.ResponseWriter, r *http.Request) {
	req, in, ok := s.decode(w, r)
	if !ok {
		return
	}
	built, hit, err := s.runner.BuildWithCacheInfo(r.Context(), in, req.Options)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	resp := TreemapResponse{
		RunID:   runID(r),
		Cached:  hit,
		Data:    built.Data,
		Levels:  built.Levels,
		Summary: treemap.Summarize(built.Data),
	}
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.Encode(resp)
}

// handleFigure renders the treemap in the format given by the "format"
// query parameter, plotly JSON by default.
func (s *Server) handleFigure(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatPlotly
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		s.fail(w, r, err)
		return
	}
	req, in, ok := s.decode(w, r)
	if !ok {
		return
	}
	opts := req.Options
	opts.Formats = []string{format}
	result, err := s.runner.ExecuteInput(r.Context(), in, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("X-Run-ID", result.RunID)
	w.Write(result.Artifacts[format])
}

// decode reads the request body and loads its table. It writes the error
// response itself and reports false on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request) (Request, pipeline.Input, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.fail(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return req, pipeline.Input{}, false
	}
	// Server-side paths are never read on behalf of a client.
	req.Options.Input = ""
	req.Options.Logger = s.log.With("request", runID(r))

	var (
		in  pipeline.Input
		err error
	)
	switch {
	case len(req.Records) > 0 && req.CSV != "":
		err = errors.New(errors.ErrCodeInvalidInput, "records and csv are mutually exclusive")
	case len(req.Records) > 0:
		in, err = pipeline.LoadBytes(req.Records, "json")
	case req.CSV != "":
		in, err = pipeline.LoadBytes([]byte(req.CSV), "csv")
	default:
		err = errors.New(errors.ErrCodeInvalidInput, "records or csv is required")
	}
	if err != nil {
		s.fail(w, r, err)
		return req, in, false
	}
	return req, in, true
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", "request", runID(r), "error", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error": errors.UserMessage(err),
		"code":  string(errors.GetCode(err)),
	})
}

// statusFor maps error codes to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.IsClientError(err):
		return http.StatusBadRequest
	case errors.Is(err, errors.ErrCodeUnsupported):
		return http.StatusNotImplemented
	case errors.Is(err, errors.ErrCodeNotFound), errors.Is(err, errors.ErrCodeFileNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
