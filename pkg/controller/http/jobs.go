package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"

	"github.com/duedil-lab/diligent/pkg/domain/model"
	"github.com/duedil-lab/diligent/pkg/domain/types"
	"github.com/duedil-lab/diligent/pkg/usecase"
	"github.com/duedil-lab/diligent/pkg/utils/errutil"
)

type submitJobRequest struct {
	CompanyName      string   `json:"company_name"`
	CompanySite      string   `json:"company_site,omitempty"`
	JurisdictionHint string   `json:"jurisdiction_hint,omitempty"`
	ReportLanguage   string   `json:"report_language,omitempty"`
	TimeWindowMonths int      `json:"time_window_months,omitempty"`
	PlanID           string   `json:"plan_id,omitempty"`
	AddOns           []string `json:"add_ons,omitempty"`
}

type submitJobResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

type jobStatusResponse struct {
	JobID       string             `json:"job_id"`
	Status      string             `json:"status"`
	CompanyName string             `json:"company_name"`
	UpdatedAt   time.Time          `json:"updated_at"`
	Result      *jobResultResponse `json:"result,omitempty"`
	ErrorDetail string             `json:"error_detail,omitempty"`
}

type jobResultResponse struct {
	Report          string   `json:"report"`
	DocumentVersion string   `json:"document_version"`
	UnresolvedGaps  []string `json:"unresolved_gaps,omitempty"`
}

func submitJobHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req submitJobRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
			return
		}

		job, err := uc.Job.Submit(r.Context(), &usecase.SubmitRequest{
			CompanyName:      req.CompanyName,
			CompanySite:      req.CompanySite,
			JurisdictionHint: req.JurisdictionHint,
			ReportLanguage:   req.ReportLanguage,
			TimeWindowMonths: req.TimeWindowMonths,
			PlanID:           req.PlanID,
			AddOns:           req.AddOns,
		})
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, submitStatusCode(err))
			return
		}

		writeJSON(w, r, http.StatusAccepted, submitJobResponse{
			JobID:  job.ID.String(),
			Status: job.Status.String(),
		})
	}
}

func getJobHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobID := types.JobID(chi.URLParam(r, "jobID"))

		job, err := uc.Job.Get(r.Context(), jobID)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, usecase.ErrJobNotFound) {
				status = http.StatusNotFound
			}
			errutil.HandleHTTP(r.Context(), w, err, status)
			return
		}

		resp := jobStatusResponse{
			JobID:       job.ID.String(),
			Status:      job.Status.String(),
			CompanyName: job.CompanyName,
			UpdatedAt:   job.UpdatedAt,
			ErrorDetail: job.ErrorDetail,
		}
		if job.Result != nil {
			resp.Result = &jobResultResponse{
				Report:          job.Result.Report,
				DocumentVersion: job.Result.DocumentVersion.String(),
				UnresolvedGaps:  job.Result.UnresolvedGaps,
			}
		}

		writeJSON(w, r, http.StatusOK, resp)
	}
}

func plansHandler(uc *usecase.UseCases) http.HandlerFunc {
	type response struct {
		Plans []model.Plan `json:"plans"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, response{Plans: uc.Plans()})
	}
}

func submitStatusCode(err error) int {
	switch {
	case errors.Is(err, usecase.ErrInvalidRequest), errors.Is(err, usecase.ErrUnknownPlan):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrCompanyBusy):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data) //nolint:errcheck // header already committed
}
