// Package httpx exposes the print broker over a JSON HTTP API.
package httpx

import (
	"net/http"

	"github.com/target/printbroker-api/internal/domain/model"
	apperrors "github.com/target/printbroker-api/internal/errors"
	"github.com/target/printbroker-api/internal/service"
)

const (
	defaultJobListLimit = 50
	maxJobListLimit     = 500
)

// JobHandlers provides HTTP handlers for job creation and lookup.
type JobHandlers struct {
	Svc *service.JobService
}

// CreateJob handles POST /api/jobs.
func (h *JobHandlers) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req model.CreateJobRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	res, err := h.Svc.Create(r.Context(), &req)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, res)
}

type batchRequest struct {
	Jobs []*model.CreateJobRequest `json:"jobs"`
}

type batchResponse struct {
	Jobs []*model.CreateJobResult `json:"jobs"`
}

// CreateBatch handles POST /api/jobs/batch. The whole batch commits or none of it does.
func (h *JobHandlers) CreateBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	res, err := h.Svc.CreateBatch(r.Context(), req.Jobs)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, batchResponse{Jobs: res})
}

// GetJob handles GET /api/jobs/{id}.
func (h *JobHandlers) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.Svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, job)
}

type listResponse[T any] struct {
	Items  []T `json:"items"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ListJobs handles GET /api/jobs with optional pathway, status and customer_id filters.
func (h *JobHandlers) ListJobs(w http.ResponseWriter, r *http.Request) {
	opts, err := parseJobListOptions(r)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}

	jobs, err := h.Svc.List(r.Context(), opts)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	if jobs == nil {
		jobs = []*model.Job{}
	}
	WriteJSON(w, http.StatusOK, listResponse[*model.Job]{Items: jobs, Limit: opts.Limit, Offset: opts.Offset})
}

func parseJobListOptions(r *http.Request) (model.JobListOptions, error) {
	limit, offset := ParseLimitOffset(r, defaultJobListLimit, maxJobListLimit)
	opts := model.JobListOptions{Limit: limit, Offset: offset, CustomerID: queryPtr(r, "customer_id")}

	if v := queryPtr(r, "pathway"); v != nil {
		p := model.Pathway(*v)
		if !p.Valid() {
			return opts, apperrors.ValidationField("pathway", "pathway must be one of: P1, P2, P3")
		}
		opts.Pathway = &p
	}
	if v := queryPtr(r, "status"); v != nil {
		s := model.JobStatus(*v)
		if !s.Valid() {
			return opts, apperrors.ValidationField("status", "status must be one of: ACTIVE, PAID, CANCELLED")
		}
		opts.Status = &s
	}
	return opts, nil
}

// CostOrderEligibility handles GET /api/jobs/{id}/cost-order-eligibility.
func (h *JobHandlers) CostOrderEligibility(w http.ResponseWriter, r *http.Request) {
	res, err := h.Svc.CostOrderEligibility(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, res)
}
