package server

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/U-Jay-git/ResumeRise/internal/analysis"
	"github.com/U-Jay-git/ResumeRise/internal/document"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"
)

//go:embed schemas/match_request.json
var matchRequestSchema string

const maxJSONBody = 2 << 20

type matchRequest struct {
	ResumeText string `json:"resume_text"`
	JobText    string `json:"job_text"`
	Breakdown  *bool  `json:"breakdown,omitempty"`
}

type errorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to ResumeRise Skill Matcher API"})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleMatchSkills(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	if !json.Valid(body) {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result, err := s.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "request validation failed", Details: details})
		return
	}

	var req matchRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	breakdown, err := breakdownParam(r, req.Breakdown)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := s.analyzer.Analyze(r.Context(), analysis.Request{
		ResumeText: req.ResumeText,
		JobText:    req.JobText,
		Breakdown:  breakdown,
	})
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUploadResume(w http.ResponseWriter, r *http.Request) {
	limit := s.cfg.MaxUploadMB << 20
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(limit); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d MB", s.cfg.MaxUploadMB))
			return
		}
		writeError(w, http.StatusBadRequest, "expected a multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	jobValues, ok := r.MultipartForm.Value["job_text"]
	if !ok || len(jobValues) == 0 {
		writeError(w, http.StatusBadRequest, "job_text is required")
		return
	}

	file, header, err := r.FormFile("resume_file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "resume_file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read resume_file")
		return
	}

	resumeText, err := document.Extract(header.Filename, data)
	if errors.Is(err, document.ErrNoText) {
		s.logger.Warn("resume has no text, scoring it as empty",
			zap.String("request_id", RequestID(r.Context())),
			zap.String("filename", header.Filename),
		)
		err = nil
	}
	if err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, document.ErrUnsupportedType) {
			status = http.StatusUnsupportedMediaType
		}
		s.logger.Warn("extracting resume text",
			zap.String("request_id", RequestID(r.Context())),
			zap.String("filename", header.Filename),
			zap.Error(err),
		)
		writeError(w, status, err.Error())
		return
	}

	breakdown, err := breakdownParam(r, nil)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := s.analyzer.Analyze(r.Context(), analysis.Request{
		ResumeText: resumeText,
		JobText:    jobValues[0],
		Breakdown:  breakdown,
	})
	writeJSON(w, http.StatusOK, resp)
}

// breakdownParam resolves the breakdown switch from the query string, which
// wins over the body value.
func breakdownParam(r *http.Request, fromBody *bool) (*bool, error) {
	raw := r.URL.Query().Get("breakdown")
	if raw == "" {
		return fromBody, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid breakdown value %q", raw)
	}
	return &v, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
