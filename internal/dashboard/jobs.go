package dashboard

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/placeboard/placeboard/internal/models"
	"github.com/placeboard/placeboard/internal/request"
)

const jobsPath = "/api/jobs"

// JobFilter narrows List; zero fields match everything
type JobFilter struct {
	Status    string
	CompanyID string
}

// JobInput creates a posting
type JobInput struct {
	CompanyID      string     `json:"company_id"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	Location       string     `json:"location,omitempty"`
	EmploymentType string     `json:"employment_type,omitempty"`
	SalaryMin      int        `json:"salary_min,omitempty"`
	SalaryMax      int        `json:"salary_max,omitempty"`
	Openings       int        `json:"openings,omitempty"`
	Deadline       *time.Time `json:"deadline,omitempty"`
}

// JobPatch changes only the non-nil fields
type JobPatch struct {
	Title          *string    `json:"title,omitempty"`
	Description    *string    `json:"description,omitempty"`
	Location       *string    `json:"location,omitempty"`
	EmploymentType *string    `json:"employment_type,omitempty"`
	SalaryMin      *int       `json:"salary_min,omitempty"`
	SalaryMax      *int       `json:"salary_max,omitempty"`
	Openings       *int       `json:"openings,omitempty"`
	Deadline       *time.Time `json:"deadline,omitempty"`
}

type JobService struct{ area }

func (s *JobService) List(ctx context.Context, f JobFilter) ([]models.Job, error) {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if f.CompanyID != "" {
		q.Set("company_id", f.CompanyID)
	}
	return request.Do[[]models.Job](ctx, s.exec, request.Config{URL: withQuery(jobsPath, q)})
}

func (s *JobService) Get(ctx context.Context, id string) (*models.Job, error) {
	return request.Do[*models.Job](ctx, s.exec, request.Config{URL: resourcePath(jobsPath, id)})
}

func (s *JobService) Create(ctx context.Context, in JobInput) (*models.Job, error) {
	return request.Do[*models.Job](ctx, s.exec, request.Config{
		Method: http.MethodPost,
		URL:    jobsPath,
		Body:   in,
	})
}

func (s *JobService) Update(ctx context.Context, id string, patch JobPatch) (*models.Job, error) {
	return request.Do[*models.Job](ctx, s.exec, request.Config{
		Method: http.MethodPatch,
		URL:    resourcePath(jobsPath, id),
		Body:   patch,
	})
}

// Close stops a posting from accepting applications
func (s *JobService) Close(ctx context.Context, id string) (*models.Job, error) {
	return request.Do[*models.Job](ctx, s.exec, request.Config{
		Method: http.MethodPost,
		URL:    resourcePath(jobsPath, id, "close"),
	})
}

func (s *JobService) Delete(ctx context.Context, id string) error {
	_, err := s.exec.Execute(ctx, request.Config{Method: http.MethodDelete, URL: resourcePath(jobsPath, id)})
	return err
}
