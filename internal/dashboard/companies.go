package dashboard

import (
	"context"
	"net/http"
	"net/url"

	"github.com/placeboard/placeboard/internal/models"
	"github.com/placeboard/placeboard/internal/request"
)

const companiesPath = "/api/companies"

// CompanyInput creates a company
type CompanyInput struct {
	Name         string `json:"name"`
	Industry     string `json:"industry,omitempty"`
	Website      string `json:"website,omitempty"`
	Location     string `json:"location,omitempty"`
	ContactEmail string `json:"contact_email,omitempty"`
	Description  string `json:"description,omitempty"`
}

// CompanyPatch changes only the non-nil fields
type CompanyPatch struct {
	Name         *string `json:"name,omitempty"`
	Industry     *string `json:"industry,omitempty"`
	Website      *string `json:"website,omitempty"`
	Location     *string `json:"location,omitempty"`
	ContactEmail *string `json:"contact_email,omitempty"`
	Description  *string `json:"description,omitempty"`
}

type CompanyService struct{ area }

// List returns companies whose name contains search (all when empty)
func (s *CompanyService) List(ctx context.Context, search string) ([]models.Company, error) {
	q := url.Values{}
	if search != "" {
		q.Set("q", search)
	}
	return request.Do[[]models.Company](ctx, s.exec, request.Config{URL: withQuery(companiesPath, q)})
}

// Get returns a company with its jobs
func (s *CompanyService) Get(ctx context.Context, id string) (*models.Company, error) {
	return request.Do[*models.Company](ctx, s.exec, request.Config{URL: resourcePath(companiesPath, id)})
}

func (s *CompanyService) Create(ctx context.Context, in CompanyInput) (*models.Company, error) {
	return request.Do[*models.Company](ctx, s.exec, request.Config{
		Method: http.MethodPost,
		URL:    companiesPath,
		Body:   in,
	})
}

func (s *CompanyService) Update(ctx context.Context, id string, patch CompanyPatch) (*models.Company, error) {
	return request.Do[*models.Company](ctx, s.exec, request.Config{
		Method: http.MethodPatch,
		URL:    resourcePath(companiesPath, id),
		Body:   patch,
	})
}

// Delete removes a company; the server refuses while it has open jobs
func (s *CompanyService) Delete(ctx context.Context, id string) error {
	_, err := s.exec.Execute(ctx, request.Config{Method: http.MethodDelete, URL: resourcePath(companiesPath, id)})
	return err
}
