package mockapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/placeboard/placeboard/internal/models"
)

func (s *Server) listNotifications(c *gin.Context) {
	caller, _ := callerFrom(c)

	query := s.db.Where("user_id = ?", caller.UserID).Order("created_at DESC")
	if c.Query("unread") == "true" {
		query = query.Where("read_at IS NULL")
	}

	notifications := []models.Notification{}
	if err := query.Find(&notifications).Error; err != nil {
		s.internalError(c, err, "Failed to list notifications")
		return
	}
	c.JSON(http.StatusOK, notifications)
}

func (s *Server) unreadCount(c *gin.Context) {
	caller, _ := callerFrom(c)

	var count int64
	if err := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", caller.UserID).
		Count(&count).Error; err != nil {
		s.internalError(c, err, "Failed to count notifications")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (s *Server) markRead(c *gin.Context) {
	caller, _ := callerFrom(c)

	var notification models.Notification
	err := s.db.Where("id = ? AND user_id = ?", c.Param("id"), caller.UserID).First(&notification).Error
	if s.notFound(c, err, "Notification not found") {
		return
	}

	if notification.ReadAt == nil {
		now := s.now()
		notification.ReadAt = &now
		if err := s.db.Model(&notification).Update("read_at", now).Error; err != nil {
			s.internalError(c, err, "Failed to update notification")
			return
		}
	}
	c.JSON(http.StatusOK, notification)
}

func (s *Server) markAllRead(c *gin.Context) {
	caller, _ := callerFrom(c)

	result := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", caller.UserID).
		Update("read_at", s.now())
	if result.Error != nil {
		s.internalError(c, result.Error, "Failed to update notifications")
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": result.RowsAffected})
}
