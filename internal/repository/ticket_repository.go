package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/spec-kit/asset-desk/internal/domain"
	"github.com/spec-kit/asset-desk/internal/persistence"
)

// TicketFilter captures ticket search parameters.
type TicketFilter struct {
	State  *string
	Title  *string
	UserID *string
	Limit  int
	Skip   int
}

// TicketPatch carries the triage fields an administrator may change. A nil
// State leaves both state and resolucion_time untouched. ExpectedState, when
// set, guards the write against a concurrent transition.
type TicketPatch struct {
	Risk           *domain.TicketRisk
	State          *domain.TicketState
	Comment        *string
	ResolucionTime *time.Time
	ExpectedState  *domain.TicketState
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByTicketID(ctx context.Context, ticketID string) (*domain.Ticket, error)
	Patch(ctx context.Context, ticketID string, patch TicketPatch) (*domain.Ticket, error)
	Delete(ctx context.Context, ticketID string) error
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, int, error)
	ListPending(ctx context.Context, limit int) ([]domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, ticket_id, title, description, user_id, user_name, risk, state,
               comment, images, ticket_time, resolucion_time, created_at, updated_at`

func (r *ticketRepository) db(ctx context.Context) persistence.DBTX {
	return persistence.Conn(ctx, r.pool)
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (ticket_id, title, description, user_id, user_name, risk, state, comment, images, ticket_time, resolucion_time)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING id, created_at, updated_at`
	images := ticket.Images
	if images == nil {
		images = []string{}
	}
	err := r.db(ctx).QueryRow(ctx, query,
		ticket.TicketID,
		ticket.Title,
		ticket.Description,
		ticket.UserID,
		ticket.UserName,
		ticket.Risk,
		ticket.State,
		ticket.Comment,
		images,
		ticket.TicketTime,
		ticket.ResolucionTime,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
	return translate(err)
}

func (r *ticketRepository) GetByTicketID(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE ticket_id=$1`
	ticket, err := scanTicket(r.db(ctx).QueryRow(ctx, query, ticketID))
	if err != nil {
		return nil, translate(err)
	}
	return ticket, nil
}

func (r *ticketRepository) Patch(ctx context.Context, ticketID string, patch TicketPatch) (*domain.Ticket, error) {
	query := `
        UPDATE tickets SET
            risk = COALESCE($2, risk),
            state = COALESCE($3, state),
            comment = COALESCE($4, comment),
            resolucion_time = CASE WHEN $3::text IS NULL THEN resolucion_time ELSE $5::timestamptz END,
            updated_at = NOW()
        WHERE ticket_id = $1 AND ($6::text IS NULL OR state = $6)
        RETURNING ` + ticketColumns
	ticket, err := scanTicket(r.db(ctx).QueryRow(ctx, query,
		ticketID,
		patch.Risk,
		patch.State,
		patch.Comment,
		patch.ResolucionTime,
		patch.ExpectedState,
	))
	if err == nil {
		return ticket, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) || patch.ExpectedState == nil {
		return nil, translate(err)
	}

	var exists bool
	if err := r.db(ctx).QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM tickets WHERE ticket_id=$1)`, ticketID).Scan(&exists); err != nil {
		return nil, translate(err)
	}
	if exists {
		return nil, errors.WithStack(ErrStale)
	}
	return nil, errors.WithStack(ErrNotFound)
}

func (r *ticketRepository) Delete(ctx context.Context, ticketID string) error {
	cmd, err := r.db(ctx).Exec(ctx, `DELETE FROM tickets WHERE ticket_id=$1`, ticketID)
	if err != nil {
		return translate(err)
	}
	if cmd.RowsAffected() == 0 {
		return errors.WithStack(ErrNotFound)
	}
	return nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, int, error) {
	var where whereBuilder
	where.equals("state", filter.State)
	where.equals("title", filter.Title)
	where.equals("user_id", filter.UserID)

	var total int
	if err := r.db(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM tickets`+where.sql(), where.args...).Scan(&total); err != nil {
		return nil, 0, translate(err)
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets%s ORDER BY ticket_time DESC, id%s`,
		ticketColumns, where.sql(), pageClause(filter.Limit, filter.Skip))
	rows, err := r.db(ctx).Query(ctx, query, where.args...)
	if err != nil {
		return nil, 0, translate(err)
	}
	defer rows.Close()

	tickets, err := scanTickets(rows)
	if err != nil {
		return nil, 0, translate(err)
	}
	return tickets, total, nil
}

func (r *ticketRepository) ListPending(ctx context.Context, limit int) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE state <> $1 ORDER BY ticket_time ASC, id` + pageClause(limit, 0)
	rows, err := r.db(ctx).Query(ctx, query, domain.TicketStateResolved)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	tickets, err := scanTickets(rows)
	if err != nil {
		return nil, translate(err)
	}
	return tickets, nil
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.TicketID,
		&ticket.Title,
		&ticket.Description,
		&ticket.UserID,
		&ticket.UserName,
		&ticket.Risk,
		&ticket.State,
		&ticket.Comment,
		&ticket.Images,
		&ticket.TicketTime,
		&ticket.ResolucionTime,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	result := []domain.Ticket{}
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}
