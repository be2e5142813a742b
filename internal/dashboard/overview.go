package dashboard

import (
	"context"

	"github.com/placeboard/placeboard/internal/models"
	"github.com/placeboard/placeboard/internal/request"
)

type OverviewService struct{ area }

// Summary returns the counts shown on the landing page
func (s *OverviewService) Summary(ctx context.Context) (*models.Summary, error) {
	return request.Do[*models.Summary](ctx, s.exec, request.Config{URL: "/api/dashboard/summary"})
}
