package mockapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/placeboard/placeboard/internal/models"
)

func (s *Server) getSummary(c *gin.Context) {
	caller, _ := callerFrom(c)

	summary := models.Summary{ApplicationsByStatus: map[string]int64{}}
	for _, status := range models.ApplicationStatuses {
		summary.ApplicationsByStatus[status] = 0
	}

	counts := []struct {
		dst   *int64
		model any
		where string
		args  []any
	}{
		{&summary.Companies, &models.Company{}, "", nil},
		{&summary.OpenJobs, &models.Job{}, "status = ?", []any{models.JobOpen}},
		{&summary.TotalApplications, &models.Application{}, "", nil},
		{&summary.UnreadNotifications, &models.Notification{}, "user_id = ? AND read_at IS NULL", []any{caller.UserID}},
		{&summary.OpenTickets, &models.Ticket{}, "status IN ?", []any{[]string{models.TicketOpen, models.TicketPending}}},
	}
	for _, cnt := range counts {
		query := s.db.Model(cnt.model)
		if cnt.where != "" {
			query = query.Where(cnt.where, cnt.args...)
		}
		if err := query.Count(cnt.dst).Error; err != nil {
			s.internalError(c, err, "Failed to build summary")
			return
		}
	}

	var byStatus []struct {
		Status string
		Total  int64
	}
	if err := s.db.Model(&models.Application{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&byStatus).Error; err != nil {
		s.internalError(c, err, "Failed to build summary")
		return
	}
	for _, row := range byStatus {
		summary.ApplicationsByStatus[row.Status] = row.Total
	}

	c.JSON(http.StatusOK, summary)
}
