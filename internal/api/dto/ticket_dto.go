package dto

import (
	"time"

	"github.com/spec-kit/asset-desk/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	TicketID    string   `json:"ticketId"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	UserID      string   `json:"userId"`
	UserName    string   `json:"userName"`
	Risk        string   `json:"risk"`
	State       string   `json:"state"`
	Comment     string   `json:"comment"`
	Images      []string `json:"images"`
	TicketTime  *Date    `json:"ticketTime"`
}

// PatchTicketRequest carries the triage fields an administrator may change.
type PatchTicketRequest struct {
	Risk    *string `json:"risk"`
	State   *string `json:"state"`
	Comment *string `json:"comment"`
}

// TicketResponse is the public ticket shape.
type TicketResponse struct {
	ID             string             `json:"id"`
	TicketID       string             `json:"ticketId"`
	Title          domain.TicketTitle `json:"title"`
	Description    string             `json:"description"`
	UserID         string             `json:"userId"`
	UserName       string             `json:"userName"`
	Risk           domain.TicketRisk  `json:"risk"`
	State          domain.TicketState `json:"state"`
	Comment        string             `json:"comment,omitempty"`
	Images         []string           `json:"images"`
	TicketTime     time.Time          `json:"ticketTime"`
	ResolucionTime *time.Time         `json:"resolucionTime,omitempty"`
	CreatedAt      time.Time          `json:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt"`
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(t *domain.Ticket) TicketResponse {
	images := t.Images
	if images == nil {
		images = []string{}
	}
	return TicketResponse{
		ID:             t.ID,
		TicketID:       t.TicketID,
		Title:          t.Title,
		Description:    t.Description,
		UserID:         t.UserID,
		UserName:       t.UserName,
		Risk:           t.Risk,
		State:          t.State,
		Comment:        t.Comment,
		Images:         images,
		TicketTime:     t.TicketTime,
		ResolucionTime: t.ResolucionTime,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

// NewTicketResponses maps a slice of tickets.
func NewTicketResponses(tickets []domain.Ticket) []TicketResponse {
	out := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		out = append(out, NewTicketResponse(&tickets[i]))
	}
	return out
}
