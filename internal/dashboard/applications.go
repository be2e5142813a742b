package dashboard

import (
	"context"
	"net/http"
	"net/url"

	"github.com/placeboard/placeboard/internal/models"
	"github.com/placeboard/placeboard/internal/request"
)

const applicationsPath = "/api/applications"

// ApplicationFilter narrows List; zero fields match everything
type ApplicationFilter struct {
	JobID  string
	Status string
}

// ApplicationInput records an application on a student's behalf
type ApplicationInput struct {
	JobID        string  `json:"job_id"`
	StudentName  string  `json:"student_name"`
	StudentEmail string  `json:"student_email"`
	Department   string  `json:"department,omitempty"`
	CGPA         float64 `json:"cgpa,omitempty"`
	ResumeURL    string  `json:"resume_url,omitempty"`
}

type ApplicationService struct{ area }

func (s *ApplicationService) List(ctx context.Context, f ApplicationFilter) ([]models.Application, error) {
	q := url.Values{}
	if f.JobID != "" {
		q.Set("job_id", f.JobID)
	}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	return request.Do[[]models.Application](ctx, s.exec, request.Config{URL: withQuery(applicationsPath, q)})
}

func (s *ApplicationService) Create(ctx context.Context, in ApplicationInput) (*models.Application, error) {
	return request.Do[*models.Application](ctx, s.exec, request.Config{
		Method: http.MethodPost,
		URL:    applicationsPath,
		Body:   in,
	})
}

// UpdateStatus moves an application through the pipeline. Rejected and
// withdrawn applications cannot change again.
func (s *ApplicationService) UpdateStatus(ctx context.Context, id, status string) (*models.Application, error) {
	return request.Do[*models.Application](ctx, s.exec, request.Config{
		Method: http.MethodPatch,
		URL:    resourcePath(applicationsPath, id, "status"),
		Body:   map[string]string{"status": status},
	})
}
