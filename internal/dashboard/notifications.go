package dashboard

import (
	"context"
	"net/http"

	"github.com/placeboard/placeboard/internal/models"
	"github.com/placeboard/placeboard/internal/request"
)

const notificationsPath = "/api/notifications"

type NotificationService struct{ area }

// List returns the caller's notifications, newest first
func (s *NotificationService) List(ctx context.Context, unreadOnly bool) ([]models.Notification, error) {
	path := notificationsPath
	if unreadOnly {
		path += "?unread=true"
	}
	return request.Do[[]models.Notification](ctx, s.exec, request.Config{URL: path})
}

func (s *NotificationService) MarkRead(ctx context.Context, id string) (*models.Notification, error) {
	return request.Do[*models.Notification](ctx, s.exec, request.Config{
		Method: http.MethodPost,
		URL:    resourcePath(notificationsPath, id, "read"),
	})
}

// MarkAllRead returns how many notifications changed
func (s *NotificationService) MarkAllRead(ctx context.Context) (int64, error) {
	resp, err := request.Do[struct {
		Updated int64 `json:"updated"`
	}](ctx, s.exec, request.Config{Method: http.MethodPost, URL: notificationsPath + "/read-all"})
	return resp.Updated, err
}

func (s *NotificationService) UnreadCount(ctx context.Context) (int64, error) {
	resp, err := request.Do[struct {
		Count int64 `json:"count"`
	}](ctx, s.exec, request.Config{URL: notificationsPath + "/unread-count"})
	return resp.Count, err
}
