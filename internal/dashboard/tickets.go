package dashboard

import (
	"context"
	"net/http"
	"net/url"

	"github.com/placeboard/placeboard/internal/models"
	"github.com/placeboard/placeboard/internal/request"
)

const ticketsPath = "/api/tickets"

// TicketInput opens a ticket; Priority defaults to medium on the server
type TicketInput struct {
	Subject     string `json:"subject"`
	Description string `json:"description,omitempty"`
	Priority    string `json:"priority,omitempty"`
}

type TicketService struct{ area }

func (s *TicketService) List(ctx context.Context, status string) ([]models.Ticket, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	return request.Do[[]models.Ticket](ctx, s.exec, request.Config{URL: withQuery(ticketsPath, q)})
}

// Get returns a ticket with its message thread, oldest message first
func (s *TicketService) Get(ctx context.Context, id string) (*models.Ticket, error) {
	return request.Do[*models.Ticket](ctx, s.exec, request.Config{URL: resourcePath(ticketsPath, id)})
}

func (s *TicketService) Create(ctx context.Context, in TicketInput) (*models.Ticket, error) {
	return request.Do[*models.Ticket](ctx, s.exec, request.Config{
		Method: http.MethodPost,
		URL:    ticketsPath,
		Body:   in,
	})
}

func (s *TicketService) Reply(ctx context.Context, id, body string) (*models.TicketMessage, error) {
	return request.Do[*models.TicketMessage](ctx, s.exec, request.Config{
		Method: http.MethodPost,
		URL:    resourcePath(ticketsPath, id, "messages"),
		Body:   map[string]string{"body": body},
	})
}

func (s *TicketService) SetStatus(ctx context.Context, id, status string) (*models.Ticket, error) {
	return request.Do[*models.Ticket](ctx, s.exec, request.Config{
		Method: http.MethodPatch,
		URL:    resourcePath(ticketsPath, id, "status"),
		Body:   map[string]string{"status": status},
	})
}
