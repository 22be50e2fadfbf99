package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/FocuswithJustin/usjconv/core/convert"
	usjerrors "github.com/FocuswithJustin/usjconv/core/errors"
	"github.com/FocuswithJustin/usjconv/core/formats"
	"github.com/FocuswithJustin/usjconv/core/usj"
	"github.com/FocuswithJustin/usjconv/internal/fileutil"
	"github.com/FocuswithJustin/usjconv/internal/logging"
)

// Response headers set on successful conversions.
const (
	HeaderDigest       = "X-USJ-Digest"
	HeaderRunID        = "X-Run-ID"
	HeaderSourceFormat = "X-Source-Format"
	HeaderIssues       = "X-Validation-Issues"
	HeaderCache        = "X-Cache"
)

// APIResponse is the standard API response wrapper.
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
	Meta    *APIMeta  `json:"meta,omitempty"`
}

// APIError represents an API error.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIMeta contains response metadata.
type APIMeta struct {
	Total     int    `json:"total,omitempty"`
	Timestamp string `json:"timestamp"`
}

// HealthInfo is the health check response.
type HealthInfo struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
	Formats int    `json:"formats"`
}

// ValidateResult is the /api/validate response.
type ValidateResult struct {
	Format string   `json:"format"`
	Valid  bool     `json:"valid"`
	Issues []string `json:"issues"`
	Digest string   `json:"digest"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]any{
		"name":    "usjconv",
		"version": Version,
		"endpoints": []string{
			"GET /health",
			"GET /api/formats",
			"POST /api/convert?from=&to=&name=&sids=&validate=&pretty=&normalize=",
			"POST /api/validate?from=&name=",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, HealthInfo{
		Status:  "healthy",
		Version: Version,
		Uptime:  time.Since(s.started).Round(time.Second).String(),
		Formats: len(formats.List()),
	})
}

func (s *Server) handleFormats(w http.ResponseWriter, r *http.Request) {
	list := formats.List()
	manifests := make([]*formats.Manifest, len(list))
	for i, f := range list {
		manifests[i] = f.Manifest
	}
	respondList(w, manifests, len(manifests))
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	data, ok := s.readBody(w, r)
	if !ok {
		return
	}
	opts, err := s.convertOptions(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", err.Error())
		return
	}

	res, hit, err := s.convert(r, data, opts)
	if err != nil {
		respondConvertError(w, r, err)
		return
	}

	mediaType := "application/octet-stream"
	if f, err := formats.Get(res.To); err == nil && f.Manifest.MediaType != "" {
		mediaType = f.Manifest.MediaType
	}
	h := w.Header()
	h.Set("Content-Type", mediaType)
	h.Set(HeaderDigest, res.Digest)
	h.Set(HeaderRunID, res.RunID)
	h.Set(HeaderSourceFormat, res.From)
	h.Set(HeaderIssues, strconv.Itoa(len(res.Issues)))
	if s.results != nil {
		status := "miss"
		if hit {
			status = "hit"
		}
		h.Set(HeaderCache, status)
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(res.Output); err != nil {
		logging.WarnContext(r.Context(), "failed to write response", "error", err.Error())
	}
}

// convert runs the pipeline, serving repeated requests for the same body
// and options from the result cache.
func (s *Server) convert(r *http.Request, data []byte, opts convert.Options) (*convert.Result, bool, error) {
	if s.results == nil {
		res, err := convert.Convert(r.Context(), data, opts)
		return res, false, err
	}
	key := fmt.Sprintf("%s|%+v", usj.HashBytes(data), opts)
	if res, ok := s.results.Get(key); ok {
		logging.DebugContext(r.Context(), "conversion cache hit", "run_id", res.RunID)
		return res, true, nil
	}
	res, err := convert.Convert(r.Context(), data, opts)
	if err != nil {
		return nil, false, err
	}
	s.results.Set(key, res)
	return res, false, nil
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	data, ok := s.readBody(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	src, err := convert.Source(q.Get("from"), q.Get("name"), data)
	if err != nil {
		respondConvertError(w, r, err)
		return
	}
	doc, err := convert.Decode(r.Context(), src, data, convert.Options{})
	if err != nil {
		respondConvertError(w, r, err)
		return
	}
	digest, err := usj.Digest(doc)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	issues := usj.Validate(doc)
	respond(w, http.StatusOK, ValidateResult{
		Format: src.ID(),
		Valid:  len(issues) == 0,
		Issues: convert.IssueStrings(issues),
		Digest: digest,
	})
}

// readBody reads the size-limited request body, inflating xz or gzip
// uploads. On failure it writes the error response and returns false.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE",
				fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit))
			return nil, false
		}
		respondError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return nil, false
	}
	if len(data) == 0 {
		respondError(w, http.StatusBadRequest, "EMPTY_BODY", "Request body is empty")
		return nil, false
	}
	data, err = fileutil.DecompressLimit(data, s.cfg.MaxBodyBytes)
	if errors.Is(err, fileutil.ErrTooLarge) {
		respondError(w, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE",
			fmt.Sprintf("Decompressed request body exceeds %d bytes", s.cfg.MaxBodyBytes))
		return nil, false
	}
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return nil, false
	}
	return data, true
}

func (s *Server) convertOptions(r *http.Request) (convert.Options, error) {
	q := r.URL.Query()
	opts := convert.Options{
		From:       q.Get("from"),
		To:         q.Get("to"),
		Name:       q.Get("name"),
		AssignSIDs: s.defaults.AssignSIDs,
		Validate:   s.defaults.Validate,
		Pretty:     s.defaults.Pretty,
		Normalize:  s.defaults.Normalize,
	}
	for key, dst := range map[string]*bool{
		"sids":      &opts.AssignSIDs,
		"validate":  &opts.Validate,
		"pretty":    &opts.Pretty,
		"normalize": &opts.Normalize,
	} {
		v := q.Get(key)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, fmt.Errorf("%s: %q is not a boolean", key, v)
		}
		*dst = b
	}
	return opts, nil
}

// respondConvertError maps a pipeline error to a status and error code.
func respondConvertError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, usjerrors.ErrNotFound):
		respondError(w, http.StatusBadRequest, "UNKNOWN_FORMAT", err.Error())
	case errors.Is(err, usjerrors.ErrUnsupported):
		respondError(w, http.StatusUnprocessableEntity, "UNSUPPORTED", err.Error())
	case errors.Is(err, usjerrors.ErrUnknownMarker),
		errors.Is(err, usjerrors.ErrMalformedEncoding),
		errors.Is(err, usjerrors.ErrInvalidInput):
		respondError(w, http.StatusUnprocessableEntity, "INVALID_DOCUMENT", err.Error())
	default:
		logging.ErrorContext(r.Context(), "conversion failed", "path", r.URL.Path, "error", err.Error())
		respondError(w, http.StatusInternalServerError, "CONVERSION_FAILED", err.Error())
	}
}

func respond(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, APIResponse{
		Success: true,
		Data:    data,
		Meta:    &APIMeta{Timestamp: time.Now().UTC().Format(time.RFC3339)},
	})
}

func respondList(w http.ResponseWriter, data any, total int) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
		Meta: &APIMeta{
			Total:     total,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: message},
		Meta:    &APIMeta{Timestamp: time.Now().UTC().Format(time.RFC3339)},
	})
}

func writeJSON(w http.ResponseWriter, status int, response APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}
