package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/asset-desk/internal/domain"
	"github.com/spec-kit/asset-desk/internal/events"
	"github.com/spec-kit/asset-desk/internal/repository"
	apperrors "github.com/spec-kit/asset-desk/pkg/util/errorutil"
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	policy     TransitionPolicy
	dispatcher events.Dispatcher
	now        func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	Policy     TransitionPolicy
	Dispatcher events.Dispatcher
	Clock      func() time.Time
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	TicketID    string
	Title       string
	Description string
	UserID      string
	UserName    string
	Risk        string
	State       string
	Comment     string
	Images      []string
	TicketTime  *time.Time
}

// TicketPatchInput carries the optional triage fields.
type TicketPatchInput struct {
	Risk    *string
	State   *string
	Comment *string
}

// TicketQuery describes ticket listing filters.
type TicketQuery struct {
	State  *string
	Title  *string
	UserID *string
	Limit  int
	Skip   int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		policy:     deps.Policy,
		dispatcher: deps.Dispatcher,
		now:        clock,
	}
}

// CreateTicket validates and persists a new ticket. A non-admin actor always
// files tickets under their own identity, and an initial state other than
// recibido must be reachable from recibido under the transition policy.
func (s *TicketService) CreateTicket(ctx context.Context, actor domain.Actor, input TicketCreateInput) (*domain.Ticket, error) {
	if !actor.IsAdmin() {
		if input.UserID != "" && input.UserID != actor.ID {
			return nil, apperrors.NewForbidden("tickets can only be filed for yourself")
		}
		input.UserID = actor.ID
		if strings.TrimSpace(input.UserName) == "" {
			input.UserName = actor.Name
		}
	}

	ticket := &domain.Ticket{
		TicketID:    strings.TrimSpace(input.TicketID),
		Title:       domain.TicketTitle(strings.TrimSpace(input.Title)),
		Description: strings.TrimSpace(input.Description),
		UserID:      strings.TrimSpace(input.UserID),
		UserName:    strings.TrimSpace(input.UserName),
		Risk:        domain.TicketRisk(strings.TrimSpace(input.Risk)),
		State:       domain.TicketState(strings.TrimSpace(input.State)),
		Comment:     strings.TrimSpace(input.Comment),
		Images:      domain.SanitizeImages(input.Images),
	}

	var missing []string
	if ticket.TicketID == "" {
		missing = append(missing, "ticketId")
	}
	if ticket.Title == "" {
		missing = append(missing, "title")
	}
	if ticket.Description == "" {
		missing = append(missing, "description")
	}
	if ticket.UserID == "" {
		missing = append(missing, "userId")
	}
	if ticket.UserName == "" {
		missing = append(missing, "userName")
	}
	if len(missing) > 0 {
		return nil, apperrors.NewMissingFields(missing)
	}

	if !ticket.Title.Valid() {
		return nil, apperrors.NewValidationError("invalid title", map[string]any{"title": ticket.Title, "allowed": domain.TicketTitles})
	}
	if ticket.Risk == "" {
		ticket.Risk = domain.TicketRiskLow
	}
	if !ticket.Risk.Valid() {
		return nil, apperrors.NewValidationError("invalid risk", map[string]any{"risk": ticket.Risk})
	}
	if ticket.State == "" {
		ticket.State = domain.TicketStateReceived
	}
	if !ticket.State.Valid() {
		return nil, apperrors.NewValidationError("invalid state", map[string]any{"state": ticket.State})
	}
	if !actor.IsAdmin() && !s.policy.Allows(domain.TicketStateReceived, ticket.State) {
		return nil, apperrors.NewConflict("initial state not allowed", map[string]any{
			"from":   domain.TicketStateReceived,
			"to":     ticket.State,
			"policy": s.policy.Name(),
		})
	}

	now := s.now()
	ticket.TicketTime = now
	if input.TicketTime != nil && !input.TicketTime.IsZero() {
		ticket.TicketTime = *input.TicketTime
	}
	if ticket.State == domain.TicketStateResolved {
		ticket.ResolucionTime = &now
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, mapRepoError(err, "ticket", map[string]any{"ticketId": ticket.TicketID})
	}

	s.publishEvent(ctx, events.Event{
		Type:      events.EventTicketCreated,
		SubjectID: ticket.TicketID,
		Actor:     events.ActorFrom(actor),
		Payload: events.TicketCreatedPayload{
			Title:    ticket.Title,
			Risk:     ticket.Risk,
			UserID:   ticket.UserID,
			UserName: ticket.UserName,
		},
	})
	return ticket, nil
}

// PatchTicket applies an administrator's triage changes. Setting resuelto
// stamps resolucionTime; any other state clears it.
func (s *TicketService) PatchTicket(ctx context.Context, actor domain.Actor, ticketID string, input TicketPatchInput) (*domain.Ticket, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("only administrators can update tickets")
	}
	if input.Risk == nil && input.State == nil && input.Comment == nil {
		return nil, apperrors.NewValidationError("nothing to update", map[string]any{"allowed": []string{"risk", "state", "comment"}})
	}

	patch := repository.TicketPatch{Comment: input.Comment}
	if input.Risk != nil {
		risk := domain.TicketRisk(strings.TrimSpace(*input.Risk))
		if !risk.Valid() {
			return nil, apperrors.NewValidationError("invalid risk", map[string]any{"risk": risk})
		}
		patch.Risk = &risk
	}
	var next domain.TicketState
	if input.State != nil {
		next = domain.TicketState(strings.TrimSpace(*input.State))
		if !next.Valid() {
			return nil, apperrors.NewValidationError("invalid state", map[string]any{"state": next})
		}
		patch.State = &next
	}

	current, err := s.tickets.GetByTicketID(ctx, ticketID)
	if err != nil {
		return nil, mapRepoError(err, "ticket", map[string]any{"ticketId": ticketID})
	}

	if patch.State != nil {
		if !s.policy.Allows(current.State, next) {
			return nil, apperrors.NewConflict("state transition not allowed", map[string]any{
				"from":   current.State,
				"to":     next,
				"policy": s.policy.Name(),
			})
		}
		if next == domain.TicketStateResolved {
			now := s.now()
			patch.ResolucionTime = &now
		}
		expected := current.State
		patch.ExpectedState = &expected
	}

	updated, err := s.tickets.Patch(ctx, ticketID, patch)
	if err != nil {
		return nil, mapRepoError(err, "ticket", map[string]any{"ticketId": ticketID})
	}

	s.publishEvent(ctx, events.Event{
		Type:      events.EventTicketUpdated,
		SubjectID: ticketID,
		Actor:     events.ActorFrom(actor),
		Payload: events.TicketUpdatedPayload{
			OldState: current.State,
			NewState: updated.State,
			Risk:     updated.Risk,
			Comment:  updated.Comment,
		},
	})
	return updated, nil
}

// GetTicket fetches a ticket. Non-admin actors may only read their own.
func (s *TicketService) GetTicket(ctx context.Context, actor domain.Actor, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByTicketID(ctx, ticketID)
	if err != nil {
		return nil, mapRepoError(err, "ticket", map[string]any{"ticketId": ticketID})
	}
	if !actor.IsAdmin() && ticket.UserID != actor.ID {
		return nil, apperrors.NewForbidden("access denied")
	}
	return ticket, nil
}

// ListTickets returns a page of tickets, newest first, and the total match
// count. Non-admin actors are scoped to their own tickets.
func (s *TicketService) ListTickets(ctx context.Context, actor domain.Actor, query TicketQuery) ([]domain.Ticket, int, error) {
	page, err := NormalizePage(query.Limit, query.Skip)
	if err != nil {
		return nil, 0, err
	}
	if query.State != nil && *query.State != "" && !domain.TicketState(*query.State).Valid() {
		return nil, 0, apperrors.NewValidationError("invalid state filter", map[string]any{"state": *query.State})
	}
	if query.Title != nil && *query.Title != "" && !domain.TicketTitle(*query.Title).Valid() {
		return nil, 0, apperrors.NewValidationError("invalid title filter", map[string]any{"title": *query.Title})
	}

	filter := repository.TicketFilter{
		State:  query.State,
		Title:  query.Title,
		UserID: query.UserID,
		Limit:  page.Limit,
		Skip:   page.Skip,
	}
	if !actor.IsAdmin() {
		own := actor.ID
		filter.UserID = &own
	}

	tickets, total, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, 0, mapRepoError(err, "ticket", nil)
	}
	return tickets, total, nil
}

// ListPending returns unresolved tickets, oldest first.
func (s *TicketService) ListPending(ctx context.Context) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListPending(ctx, PendingTicketsLimit)
	if err != nil {
		return nil, mapRepoError(err, "ticket", nil)
	}
	return tickets, nil
}

// DeleteTicket hard-deletes a ticket.
func (s *TicketService) DeleteTicket(ctx context.Context, actor domain.Actor, ticketID string) error {
	if !actor.IsAdmin() {
		return apperrors.NewForbidden("only administrators can delete tickets")
	}
	if err := s.tickets.Delete(ctx, ticketID); err != nil {
		return mapRepoError(err, "ticket", map[string]any{"ticketId": ticketID})
	}
	s.publishEvent(ctx, events.Event{
		Type:      events.EventTicketDeleted,
		SubjectID: ticketID,
		Actor:     events.ActorFrom(actor),
	})
	return nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	publish(ctx, s.dispatcher, s.now, event)
}

func publish(ctx context.Context, dispatcher events.Dispatcher, now func() time.Time, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = now()
	}
	_ = dispatcher.Publish(ctx, event)
}
