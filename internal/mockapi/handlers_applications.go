package mockapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/placeboard/placeboard/internal/models"
)

// ApplicationRequest records a student's application
type ApplicationRequest struct {
	JobID        string  `json:"job_id" binding:"required"`
	StudentName  string  `json:"student_name" binding:"required"`
	StudentEmail string  `json:"student_email" binding:"required,email"`
	Department   string  `json:"department"`
	CGPA         float64 `json:"cgpa" binding:"gte=0,lte=10"`
	ResumeURL    string  `json:"resume_url" binding:"omitempty,url"`
}

// StatusRequest moves an application through the pipeline
type StatusRequest struct {
	Status string `json:"status" binding:"required,appstatus"`
}

var errAlreadyApplied = errors.New("already applied")

func (s *Server) listApplications(c *gin.Context) {
	query := s.db.Preload("Job").Order("created_at DESC")
	if jobID := c.Query("job_id"); jobID != "" {
		query = query.Where("job_id = ?", jobID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	caller, _ := callerFrom(c)
	if caller.Role == models.RoleRecruiter {
		companyID := ""
		if caller.CompanyID != nil {
			companyID = *caller.CompanyID
		}
		query = query.Where("job_id IN (?)", s.db.Model(&models.Job{}).Select("id").Where("company_id = ?", companyID))
	}

	applications := []models.Application{}
	if err := query.Find(&applications).Error; err != nil {
		s.internalError(c, err, "Failed to list applications")
		return
	}
	c.JSON(http.StatusOK, applications)
}

func (s *Server) createApplication(c *gin.Context) {
	var req ApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithMessage(c, s.logger, http.StatusBadRequest, err, validationMessage(err))
		return
	}

	var job models.Job
	if err := models.FindByID(s.db, req.JobID, &job); err != nil {
		abortWithMessage(c, s.logger, http.StatusBadRequest, err, "Job not found")
		return
	}
	if job.Status != models.JobOpen || job.Expired(s.now()) {
		abortWithMessage(c, s.logger, http.StatusConflict, errors.New("job closed"), "This job is no longer accepting applications")
		return
	}

	application := models.Application{
		JobID:        job.ID,
		StudentName:  req.StudentName,
		StudentEmail: strings.ToLower(req.StudentEmail),
		Department:   req.Department,
		CGPA:         req.CGPA,
		ResumeURL:    req.ResumeURL,
		Status:       models.ApplicationApplied,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Application{}).
			Where("job_id = ? AND student_email = ?", job.ID, application.StudentEmail).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errAlreadyApplied
		}

		if err := tx.Create(&application).Error; err != nil {
			return err
		}

		return notifyJobWatchers(tx, &job, "application",
			"New application",
			fmt.Sprintf("%s applied to %s", application.StudentName, job.Title))
	})
	if errors.Is(err, errAlreadyApplied) {
		abortWithMessage(c, s.logger, http.StatusConflict, err, "Student already applied to this job")
		return
	}
	if err != nil {
		s.internalError(c, err, "Failed to create application")
		return
	}

	c.JSON(http.StatusCreated, application)
}

func (s *Server) updateApplicationStatus(c *gin.Context) {
	var application models.Application
	if s.notFound(c, models.FindByIDWithPreload(s.db, c.Param("id"), &application, "Job"), "Application not found") {
		return
	}

	caller, _ := callerFrom(c)
	if application.Job != nil && !canManageCompany(caller, application.Job.CompanyID) {
		abortWithMessage(c, s.logger, http.StatusForbidden, errors.New("foreign company"), "You can only manage applications to your own company's jobs")
		return
	}

	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithMessage(c, s.logger, http.StatusBadRequest, err, validationMessage(err))
		return
	}

	if !application.CanMoveTo(req.Status) {
		abortWithMessage(c, s.logger, http.StatusConflict, errors.New("final status"),
			fmt.Sprintf("Application is %s and can no longer change status", application.Status))
		return
	}

	application.Status = req.Status
	if err := s.db.Model(&application).Update("status", req.Status).Error; err != nil {
		s.internalError(c, err, "Failed to update application")
		return
	}
	c.JSON(http.StatusOK, application)
}

// notifyJobWatchers notifies staff and the posting company's recruiters
func notifyJobWatchers(tx *gorm.DB, job *models.Job, kind, title, body string) error {
	var users []models.User
	err := tx.Where("role IN ?", []string{models.RoleAdmin, models.RolePlacementOfficer}).
		Or("role = ? AND company_id = ?", models.RoleRecruiter, job.CompanyID).
		Find(&users).Error
	if err != nil {
		return err
	}
	if len(users) == 0 {
		return nil
	}

	notifications := make([]models.Notification, 0, len(users))
	for _, u := range users {
		notifications = append(notifications, models.Notification{
			UserID: u.ID,
			Title:  title,
			Body:   body,
			Kind:   kind,
		})
	}
	return tx.Create(&notifications).Error
}
