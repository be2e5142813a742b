package mockapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/placeboard/placeboard/internal/models"
)

// JobRequest creates a job posting
type JobRequest struct {
	CompanyID      string     `json:"company_id" binding:"required"`
	Title          string     `json:"title" binding:"required"`
	Description    string     `json:"description"`
	Location       string     `json:"location"`
	EmploymentType string     `json:"employment_type" binding:"omitempty,oneof=full_time internship contract"`
	SalaryMin      int        `json:"salary_min" binding:"gte=0"`
	SalaryMax      int        `json:"salary_max" binding:"gte=0"`
	Openings       int        `json:"openings" binding:"gte=0"`
	Deadline       *time.Time `json:"deadline"`
}

// JobUpdate patches a job; nil fields are left alone
type JobUpdate struct {
	Title          *string    `json:"title" binding:"omitempty,min=1"`
	Description    *string    `json:"description"`
	Location       *string    `json:"location"`
	EmploymentType *string    `json:"employment_type" binding:"omitempty,oneof=full_time internship contract"`
	SalaryMin      *int       `json:"salary_min" binding:"omitempty,gte=0"`
	SalaryMax      *int       `json:"salary_max" binding:"omitempty,gte=0"`
	Openings       *int       `json:"openings" binding:"omitempty,gte=0"`
	Deadline       *time.Time `json:"deadline"`
}

// canManageCompany reports whether the caller may change that company's jobs
func canManageCompany(caller *Caller, companyID string) bool {
	switch caller.Role {
	case models.RoleAdmin, models.RolePlacementOfficer:
		return true
	case models.RoleRecruiter:
		return caller.CompanyID != nil && *caller.CompanyID == companyID
	default:
		return false
	}
}

func (s *Server) listJobs(c *gin.Context) {
	query := s.db.Preload("Company").Order("created_at DESC")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if companyID := c.Query("company_id"); companyID != "" {
		query = query.Where("company_id = ?", companyID)
	}

	jobs := []models.Job{}
	if err := query.Find(&jobs).Error; err != nil {
		s.internalError(c, err, "Failed to list jobs")
		return
	}
	c.JSON(http.StatusOK, jobs)
}

func (s *Server) getJob(c *gin.Context) {
	var job models.Job
	if s.notFound(c, models.FindByIDWithPreload(s.db, c.Param("id"), &job, "Company"), "Job not found") {
		return
	}
	c.JSON(http.StatusOK, job)
}

func (s *Server) createJob(c *gin.Context) {
	var req JobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithMessage(c, s.logger, http.StatusBadRequest, err, validationMessage(err))
		return
	}

	caller, _ := callerFrom(c)
	if !canManageCompany(caller, req.CompanyID) {
		abortWithMessage(c, s.logger, http.StatusForbidden, errors.New("foreign company"), "You can only post jobs for your own company")
		return
	}

	var company models.Company
	if err := models.FindByID(s.db, req.CompanyID, &company); err != nil {
		abortWithMessage(c, s.logger, http.StatusBadRequest, err, "Company not found")
		return
	}

	if msg := s.checkJobFields(req.SalaryMin, req.SalaryMax, req.Deadline); msg != "" {
		abortWithMessage(c, s.logger, http.StatusBadRequest, errors.New("invalid job"), msg)
		return
	}

	if req.EmploymentType == "" {
		req.EmploymentType = models.EmploymentFullTime
	}
	if req.Openings == 0 {
		req.Openings = 1
	}

	job := models.Job{
		CompanyID:      req.CompanyID,
		Title:          req.Title,
		Description:    req.Description,
		Location:       req.Location,
		EmploymentType: req.EmploymentType,
		SalaryMin:      req.SalaryMin,
		SalaryMax:      req.SalaryMax,
		Openings:       req.Openings,
		Deadline:       req.Deadline,
		Status:         models.JobOpen,
	}
	if err := s.db.Create(&job).Error; err != nil {
		s.internalError(c, err, "Failed to create job")
		return
	}
	job.Company = &company

	c.JSON(http.StatusCreated, job)
}

func (s *Server) updateJob(c *gin.Context) {
	var job models.Job
	if s.notFound(c, models.FindByID(s.db, c.Param("id"), &job), "Job not found") {
		return
	}

	caller, _ := callerFrom(c)
	if !canManageCompany(caller, job.CompanyID) {
		abortWithMessage(c, s.logger, http.StatusForbidden, errors.New("foreign company"), "You can only edit your own company's jobs")
		return
	}

	var req JobUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithMessage(c, s.logger, http.StatusBadRequest, err, validationMessage(err))
		return
	}

	setIf(&job.Title, req.Title)
	setIf(&job.Description, req.Description)
	setIf(&job.Location, req.Location)
	setIf(&job.EmploymentType, req.EmploymentType)
	setIf(&job.SalaryMin, req.SalaryMin)
	setIf(&job.SalaryMax, req.SalaryMax)
	setIf(&job.Openings, req.Openings)
	if req.Deadline != nil {
		job.Deadline = req.Deadline
	}

	if msg := s.checkJobFields(job.SalaryMin, job.SalaryMax, req.Deadline); msg != "" {
		abortWithMessage(c, s.logger, http.StatusBadRequest, errors.New("invalid job"), msg)
		return
	}

	if err := s.db.Save(&job).Error; err != nil {
		s.internalError(c, err, "Failed to update job")
		return
	}
	c.JSON(http.StatusOK, job)
}

func (s *Server) closeJob(c *gin.Context) {
	var job models.Job
	if s.notFound(c, models.FindByID(s.db, c.Param("id"), &job), "Job not found") {
		return
	}

	caller, _ := callerFrom(c)
	if !canManageCompany(caller, job.CompanyID) {
		abortWithMessage(c, s.logger, http.StatusForbidden, errors.New("foreign company"), "You can only close your own company's jobs")
		return
	}

	if job.Status != models.JobClosed {
		job.Status = models.JobClosed
		if err := s.db.Save(&job).Error; err != nil {
			s.internalError(c, err, "Failed to close job")
			return
		}
	}
	c.JSON(http.StatusOK, job)
}

func (s *Server) deleteJob(c *gin.Context) {
	var job models.Job
	if s.notFound(c, models.FindByID(s.db, c.Param("id"), &job), "Job not found") {
		return
	}

	if err := s.db.Delete(&job).Error; err != nil {
		s.internalError(c, err, "Failed to delete job")
		return
	}
	c.Status(http.StatusNoContent)
}

// checkJobFields returns a user-facing message for inconsistent values.
// deadline is only checked when it is being set.
func (s *Server) checkJobFields(salaryMin, salaryMax int, deadline *time.Time) string {
	if salaryMax > 0 && salaryMin > salaryMax {
		return "Minimum salary cannot exceed maximum salary"
	}
	if deadline != nil && !deadline.After(s.now()) {
		return "Deadline must be in the future"
	}
	return ""
}
