package mockapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/placeboard/placeboard/internal/models"
)

// CompanyRequest creates a company
type CompanyRequest struct {
	Name         string `json:"name" binding:"required"`
	Industry     string `json:"industry"`
	Website      string `json:"website" binding:"omitempty,url"`
	Location     string `json:"location"`
	ContactEmail string `json:"contact_email" binding:"omitempty,email"`
	Description  string `json:"description"`
}

// CompanyUpdate patches a company; nil fields are left alone
type CompanyUpdate struct {
	Name         *string `json:"name" binding:"omitempty,min=1"`
	Industry     *string `json:"industry"`
	Website      *string `json:"website" binding:"omitempty,url"`
	Location     *string `json:"location"`
	ContactEmail *string `json:"contact_email" binding:"omitempty,email"`
	Description  *string `json:"description"`
}

func (s *Server) listCompanies(c *gin.Context) {
	query := s.db.Order("name ASC")
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(q)+"%")
	}

	companies := []models.Company{}
	if err := query.Find(&companies).Error; err != nil {
		s.internalError(c, err, "Failed to list companies")
		return
	}
	c.JSON(http.StatusOK, companies)
}

func (s *Server) getCompany(c *gin.Context) {
	var company models.Company
	err := models.FindByIDWithPreload(s.db, c.Param("id"), &company, "Jobs")
	if s.notFound(c, err, "Company not found") {
		return
	}
	c.JSON(http.StatusOK, company)
}

func (s *Server) createCompany(c *gin.Context) {
	var req CompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithMessage(c, s.logger, http.StatusBadRequest, err, validationMessage(err))
		return
	}

	var count int64
	if err := s.db.Model(&models.Company{}).Where("name = ?", req.Name).Count(&count).Error; err != nil {
		s.internalError(c, err, "Failed to create company")
		return
	}
	if count > 0 {
		abortWithMessage(c, s.logger, http.StatusConflict, errors.New("duplicate company"), "A company with this name already exists")
		return
	}

	company := models.Company{
		Name:         req.Name,
		Industry:     req.Industry,
		Website:      req.Website,
		Location:     req.Location,
		ContactEmail: req.ContactEmail,
		Description:  req.Description,
	}
	if err := s.db.Create(&company).Error; err != nil {
		s.internalError(c, err, "Failed to create company")
		return
	}
	c.JSON(http.StatusCreated, company)
}

func (s *Server) updateCompany(c *gin.Context) {
	var company models.Company
	if s.notFound(c, models.FindByID(s.db, c.Param("id"), &company), "Company not found") {
		return
	}

	var req CompanyUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithMessage(c, s.logger, http.StatusBadRequest, err, validationMessage(err))
		return
	}

	setIf(&company.Name, req.Name)
	setIf(&company.Industry, req.Industry)
	setIf(&company.Website, req.Website)
	setIf(&company.Location, req.Location)
	setIf(&company.ContactEmail, req.ContactEmail)
	setIf(&company.Description, req.Description)

	if err := s.db.Save(&company).Error; err != nil {
		s.internalError(c, err, "Failed to update company")
		return
	}
	c.JSON(http.StatusOK, company)
}

func (s *Server) deleteCompany(c *gin.Context) {
	var company models.Company
	if s.notFound(c, models.FindByID(s.db, c.Param("id"), &company), "Company not found") {
		return
	}

	var openJobs int64
	if err := s.db.Model(&models.Job{}).Where("company_id = ? AND status = ?", company.ID, models.JobOpen).Count(&openJobs).Error; err != nil {
		s.internalError(c, err, "Failed to delete company")
		return
	}
	if openJobs > 0 {
		abortWithMessage(c, s.logger, http.StatusConflict, errors.New("company has open jobs"), "Company has open jobs; close them first")
		return
	}

	if err := s.db.Delete(&company).Error; err != nil {
		s.internalError(c, err, "Failed to delete company")
		return
	}
	c.Status(http.StatusNoContent)
}

// notFound writes 404 for a missing record and 500 for other errors. It
// reports whether a response was written.
func (s *Server) notFound(c *gin.Context, err error, message string) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		abortWithMessage(c, s.logger, http.StatusNotFound, err, message)
		return true
	}
	s.internalError(c, err, "Internal server error")
	return true
}

func (s *Server) internalError(c *gin.Context, err error, message string) {
	s.logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg(message)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": message})
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
