package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/atlas/autoapply/internal/answers"
	"github.com/atlas/autoapply/internal/autoapply"
	"github.com/atlas/autoapply/internal/db"
	"github.com/atlas/autoapply/internal/types"
)

// maxRequestBytes caps JSON request bodies.
const maxRequestBytes = 1 << 20

// ApplyRequest is the body of POST /v1/apply.
type ApplyRequest struct {
	UserID        string                `json:"user_id,omitempty" validate:"omitempty,uuid"`
	JobURL        string                `json:"job_url" validate:"required,url"`
	OpportunityID string                `json:"opportunity_id,omitempty"`
	Profile       *types.UserProfile    `json:"profile" validate:"required"`
	Answers       types.FreeTextAnswers `json:"answers,omitempty"`
}

// BatchRequest is the body of POST /v1/apply/batch.
type BatchRequest struct {
	UserID  string             `json:"user_id,omitempty" validate:"omitempty,uuid"`
	Jobs    []types.JobTarget  `json:"jobs" validate:"required,min=1,dive"`
	Profile *types.UserProfile `json:"profile" validate:"required"`
}

// BatchRow is the per-job line of a batch response.
type BatchRow struct {
	JobURL        string            `json:"job_url"`
	OpportunityID string            `json:"opportunity_id,omitempty"`
	Status        types.ApplyStatus `json:"status"`
	FieldsFilled  int               `json:"fields_filled"`
	Error         string            `json:"error,omitempty"`
}

// BatchResponse is the body returned by POST /v1/apply/batch.
type BatchResponse struct {
	Summary  autoapply.Summary `json:"summary"`
	Results  []BatchRow        `json:"results"`
	Recorded int               `json:"recorded"`
}

// AnswersRequest is the body of POST /v1/answers.
type AnswersRequest struct {
	JobURL         string             `json:"job_url" validate:"required,url"`
	JobDescription string             `json:"job_description,omitempty"`
	Profile        *types.UserProfile `json:"profile" validate:"required"`
	Questions      []string           `json:"questions,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	var req ApplyRequest
	if !s.decode(w, r, &req) {
		return
	}

	result := s.deps.Applier.ApplyToJob(r.Context(), req.JobURL, req.Profile, req.Answers)

	recorded := s.record(r, req.UserID, []db.Outcome{{OpportunityID: req.OpportunityID, Result: result}})
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"result":   result,
		"recorded": recorded,
	})
}

func (s *Server) handleApplyBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if !s.decode(w, r, &req) {
		return
	}
	if len(req.Jobs) > s.cfg.MaxBatchJobs {
		s.errorFrom(w, &ErrValidation{
			Field:   "jobs",
			Message: "at most " + strconv.Itoa(s.cfg.MaxBatchJobs) + " jobs per batch",
		})
		return
	}

	log := s.logger.With(zap.Int("jobs", len(req.Jobs)))
	results := s.deps.Applier.ApplyToMultipleJobs(r.Context(), req.Jobs, req.Profile,
		func(completed, total int, res *types.ApplyResult) {
			log.Info("batch progress",
				zap.Int("completed", completed),
				zap.Int("total", total),
				zap.String("job_url", res.JobURL),
				zap.String("status", string(res.Status)))
		})

	rows := make([]BatchRow, len(results))
	outcomes := make([]db.Outcome, 0, len(results))
	for i, res := range results {
		row := BatchRow{JobURL: res.JobURL, Status: res.Status, Error: res.Error}
		if i < len(req.Jobs) {
			row.OpportunityID = req.Jobs[i].OpportunityID
		}
		if res.FillResult != nil {
			row.FieldsFilled = res.FillResult.FieldsFilled
		}
		rows[i] = row
		outcomes = append(outcomes, db.Outcome{OpportunityID: row.OpportunityID, Result: res})
	}

	s.jsonResponse(w, http.StatusOK, BatchResponse{
		Summary:  autoapply.Summarize(results),
		Results:  rows,
		Recorded: s.record(r, req.UserID, outcomes),
	})
}

func (s *Server) handleAnswers(w http.ResponseWriter, r *http.Request) {
	if s.deps.Generator == nil {
		s.errorFrom(w, &ErrUnavailable{Feature: "answer generation"})
		return
	}
	var req AnswersRequest
	if !s.decode(w, r, &req) {
		return
	}

	description := strings.TrimSpace(req.JobDescription)
	if description == "" && s.deps.Describe != nil {
		text, err := s.deps.Describe(r.Context(), req.JobURL)
		if err != nil {
			s.logger.Warn("failed to fetch job description", zap.String("job_url", req.JobURL), zap.Error(err))
		} else {
			description = text
		}
	}

	generated, err := s.deps.Generator.Generate(r.Context(), answers.GenerateRequest{
		JobURL:         req.JobURL,
		JobDescription: description,
		Profile:        req.Profile,
		Questions:      req.Questions,
	})
	if err != nil {
		s.logger.Error("answer generation failed", zap.Error(err))
		s.errorResponse(w, http.StatusBadGateway, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"answers": generated})
}

func (s *Server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	if s.deps.Store == nil {
		s.errorFrom(w, &ErrUnavailable{Feature: "application history"})
		return
	}
	userID, err := uuid.Parse(chi.URLParam(r, "user_id"))
	if err != nil {
		s.errorFrom(w, &ErrValidation{Field: "user_id", Message: "must be a UUID"})
		return
	}
	limit := db.DefaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.errorFrom(w, &ErrValidation{Field: "limit", Message: "must be a positive integer"})
			return
		}
		limit = n
	}

	apps, err := s.deps.Store.ListApplications(r.Context(), userID, limit)
	if err != nil {
		s.logger.Error("failed to list applications", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "failed to list applications")
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"applications": apps,
		"count":        len(apps),
	})
}

// decode reads and validates a JSON body, writing a 400 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(dst); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		s.errorFrom(w, err)
		return false
	}
	return true
}

// record persists outcomes when a store is configured and userID is set.
// Storage failures are logged; the application already happened.
func (s *Server) record(r *http.Request, userID string, outcomes []db.Outcome) int {
	if s.deps.Store == nil || userID == "" {
		return 0
	}
	id, err := uuid.Parse(userID)
	if err != nil {
		return 0
	}
	n, err := s.deps.Store.RecordResults(r.Context(), id, outcomes)
	if err != nil {
		s.logger.Error("failed to record applications", zap.String("user_id", userID), zap.Error(err))
		return 0
	}
	return n
}
