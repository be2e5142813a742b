package mockapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/placeboard/placeboard/internal/models"
)

// TicketRequest opens a support ticket
type TicketRequest struct {
	Subject     string `json:"subject" binding:"required"`
	Description string `json:"description"`
	Priority    string `json:"priority" binding:"omitempty,oneof=low medium high"`
}

// ReplyRequest adds a message to a ticket thread
type ReplyRequest struct {
	Body string `json:"body" binding:"required"`
}

// TicketStatusRequest changes a ticket's status
type TicketStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=open pending resolved closed"`
}

func (s *Server) ticketScope(c *gin.Context) *gorm.DB {
	caller, _ := callerFrom(c)
	query := s.db
	if caller.Role == models.RoleRecruiter {
		query = query.Where("created_by_id = ?", caller.UserID)
	}
	return query
}

func (s *Server) listTickets(c *gin.Context) {
	query := s.ticketScope(c).Order("updated_at DESC")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	tickets := []models.Ticket{}
	if err := query.Find(&tickets).Error; err != nil {
		s.internalError(c, err, "Failed to list tickets")
		return
	}
	c.JSON(http.StatusOK, tickets)
}

func (s *Server) getTicket(c *gin.Context) {
	var ticket models.Ticket
	err := s.ticketScope(c).
		Preload("Messages", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("id = ?", c.Param("id")).
		First(&ticket).Error
	if s.notFound(c, err, "Ticket not found") {
		return
	}
	c.JSON(http.StatusOK, ticket)
}

func (s *Server) createTicket(c *gin.Context) {
	var req TicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithMessage(c, s.logger, http.StatusBadRequest, err, validationMessage(err))
		return
	}
	if req.Priority == "" {
		req.Priority = models.PriorityMedium
	}

	caller, _ := callerFrom(c)
	ticket := models.Ticket{
		Subject:     req.Subject,
		Description: req.Description,
		Status:      models.TicketOpen,
		Priority:    req.Priority,
		CreatedByID: caller.UserID,
	}
	if err := s.db.Create(&ticket).Error; err != nil {
		s.internalError(c, err, "Failed to create ticket")
		return
	}
	c.JSON(http.StatusCreated, ticket)
}

func (s *Server) replyTicket(c *gin.Context) {
	var ticket models.Ticket
	if s.notFound(c, s.ticketScope(c).Where("id = ?", c.Param("id")).First(&ticket).Error, "Ticket not found") {
		return
	}

	if ticket.Status == models.TicketClosed {
		abortWithMessage(c, s.logger, http.StatusConflict, errors.New("ticket closed"), "Ticket is closed")
		return
	}

	var req ReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithMessage(c, s.logger, http.StatusBadRequest, err, validationMessage(err))
		return
	}

	caller, _ := callerFrom(c)
	message := models.TicketMessage{
		TicketID:   ticket.ID,
		AuthorID:   caller.UserID,
		AuthorName: caller.Name,
		Body:       req.Body,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&message).Error; err != nil {
			return err
		}

		// A reply from someone other than the reporter waits on the reporter
		status := models.TicketOpen
		if caller.UserID != ticket.CreatedByID {
			status = models.TicketPending
		}
		if err := tx.Model(&ticket).Update("status", status).Error; err != nil {
			return err
		}

		if caller.UserID == ticket.CreatedByID {
			return nil
		}
		return tx.Create(&models.Notification{
			UserID: ticket.CreatedByID,
			Title:  "New reply on your ticket",
			Body:   ticket.Subject,
			Kind:   "ticket",
		}).Error
	})
	if err != nil {
		s.internalError(c, err, "Failed to reply to ticket")
		return
	}
	c.JSON(http.StatusCreated, message)
}

func (s *Server) updateTicketStatus(c *gin.Context) {
	var ticket models.Ticket
	if s.notFound(c, s.ticketScope(c).Where("id = ?", c.Param("id")).First(&ticket).Error, "Ticket not found") {
		return
	}

	var req TicketStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithMessage(c, s.logger, http.StatusBadRequest, err, validationMessage(err))
		return
	}

	ticket.Status = req.Status
	if err := s.db.Model(&ticket).Update("status", req.Status).Error; err != nil {
		s.internalError(c, err, "Failed to update ticket")
		return
	}
	c.JSON(http.StatusOK, ticket)
}
