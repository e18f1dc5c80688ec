package repotest

import (
	"context"
	"sort"
	"time"

	"github.com/spec-kit/asset-desk/internal/domain"
	"github.com/spec-kit/asset-desk/internal/repository"
)

type ticketRepo struct{ s *Store }

func (r ticketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.tickets[ticket.TicketID]; exists {
		return duplicate()
	}
	ticket.ID, ticket.CreatedAt = r.s.nextLocked("ticket")
	ticket.UpdatedAt = ticket.CreatedAt
	if ticket.Images == nil {
		ticket.Images = []string{}
	}
	r.s.tickets[ticket.TicketID] = copyTicket(*ticket)
	return nil
}

func (r ticketRepo) GetByTicketID(_ context.Context, ticketID string) (*domain.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ticket, ok := r.s.tickets[ticketID]
	if !ok {
		return nil, notFound()
	}
	copied := copyTicket(ticket)
	return &copied, nil
}

func (r ticketRepo) Patch(_ context.Context, ticketID string, patch repository.TicketPatch) (*domain.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ticket, ok := r.s.tickets[ticketID]
	if !ok {
		return nil, notFound()
	}
	if patch.ExpectedState != nil && ticket.State != *patch.ExpectedState {
		return nil, stale()
	}
	if patch.Risk != nil {
		ticket.Risk = *patch.Risk
	}
	if patch.Comment != nil {
		ticket.Comment = *patch.Comment
	}
	if patch.State != nil {
		ticket.State = *patch.State
		ticket.ResolucionTime = patch.ResolucionTime
	}
	_, ticket.UpdatedAt = r.s.nextLocked("tick")
	r.s.tickets[ticketID] = ticket
	copied := copyTicket(ticket)
	return &copied, nil
}

func (r ticketRepo) Delete(_ context.Context, ticketID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tickets[ticketID]; !ok {
		return notFound()
	}
	delete(r.s.tickets, ticketID)
	return nil
}

func (r ticketRepo) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	matched := []domain.Ticket{}
	for _, ticket := range r.s.tickets {
		if !matchesExact(string(ticket.State), filter.State) ||
			!matchesExact(string(ticket.Title), filter.Title) ||
			!matchesExact(ticket.UserID, filter.UserID) {
			continue
		}
		matched = append(matched, copyTicket(ticket))
	}
	sortByCreatedDesc(matched,
		func(t domain.Ticket) time.Time { return t.TicketTime },
		func(t domain.Ticket) string { return t.ID })
	return page(matched, filter.Limit, filter.Skip), len(matched), nil
}

func (r ticketRepo) ListPending(_ context.Context, limit int) ([]domain.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	pending := []domain.Ticket{}
	for _, ticket := range r.s.tickets {
		if ticket.State != domain.TicketStateResolved {
			pending = append(pending, copyTicket(ticket))
		}
	}
	sort.SliceStable(pending, func(i, j int) bool {
		if !pending[i].TicketTime.Equal(pending[j].TicketTime) {
			return pending[i].TicketTime.Before(pending[j].TicketTime)
		}
		return pending[i].ID < pending[j].ID
	})
	return page(pending, limit, 0), nil
}
