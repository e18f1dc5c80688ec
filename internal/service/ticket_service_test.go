package service

import (
	"context"
	"testing"

	"github.com/spec-kit/asset-desk/internal/domain"
	"github.com/spec-kit/asset-desk/internal/events"
	apperrors "github.com/spec-kit/asset-desk/pkg/util/errorutil"
)

func sapTicket(id string) TicketCreateInput {
	return TicketCreateInput{TicketID: id, Title: "SAP", Description: "x", UserID: "u1", UserName: "User"}
}

func TestCreateTicketDefaults(t *testing.T) {
	env := newTestEnv(t)

	ticket, err := env.tickets.CreateTicket(context.Background(), user, sapTicket("T1"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ticket.State != domain.TicketStateReceived {
		t.Fatalf("expected recibido, got %q", ticket.State)
	}
	if ticket.Risk != domain.TicketRiskLow {
		t.Fatalf("expected bajo, got %q", ticket.Risk)
	}
	if ticket.ResolucionTime != nil {
		t.Fatalf("resolucionTime must be absent on creation")
	}
	if got := env.dispatcher.types(); len(got) != 1 || got[0] != events.EventTicketCreated {
		t.Fatalf("unexpected events %v", got)
	}
}

func TestResolveAndReopenTicket(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.tickets.CreateTicket(ctx, user, sapTicket("T1"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	resolved, err := env.tickets.PatchTicket(ctx, admin, "T1", TicketPatchInput{State: str("resuelto")})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.ResolucionTime == nil {
		t.Fatalf("expected resolucionTime to be set")
	}
	if resolved.ResolucionTime.Before(created.TicketTime) {
		t.Fatalf("resolucionTime %s precedes ticketTime %s", resolved.ResolucionTime, created.TicketTime)
	}

	reopened, err := env.tickets.PatchTicket(ctx, admin, "T1", TicketPatchInput{State: str("enProceso")})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if reopened.ResolucionTime != nil {
		t.Fatalf("reopening must clear resolucionTime")
	}
	if reopened.State != domain.TicketStateInProgress {
		t.Fatalf("unexpected state %q", reopened.State)
	}
}

func TestPatchWithoutStateKeepsResolution(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	if _, err := env.tickets.CreateTicket(ctx, user, sapTicket("T1")); err != nil {
		t.Fatalf("create: %v", err)
	}
	resolved, err := env.tickets.PatchTicket(ctx, admin, "T1", TicketPatchInput{State: str("resuelto")})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	commented, err := env.tickets.PatchTicket(ctx, admin, "T1", TicketPatchInput{Comment: str("done"), Risk: str("alto")})
	if err != nil {
		t.Fatalf("comment: %v", err)
	}
	if commented.ResolucionTime == nil || !commented.ResolucionTime.Equal(*resolved.ResolucionTime) {
		t.Fatalf("a patch without state must leave resolucionTime alone")
	}
	if commented.Comment != "done" || commented.Risk != domain.TicketRiskHigh {
		t.Fatalf("unexpected ticket %+v", commented)
	}
}

func TestCreateResolvedTicketStampsResolution(t *testing.T) {
	env := newTestEnv(t)
	input := sapTicket("T9")
	input.State = "resuelto"

	ticket, err := env.tickets.CreateTicket(context.Background(), admin, input)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ticket.ResolucionTime == nil {
		t.Fatalf("expected resolucionTime for a ticket created resolved")
	}
}

func TestDuplicateTicketID(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.tickets.CreateTicket(ctx, user, sapTicket("T1")); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := env.tickets.CreateTicket(ctx, user, sapTicket("T1"))
	expectCode(t, err, apperrors.CodeDuplicateKey)

	tickets, total, err := env.tickets.ListTickets(ctx, admin, TicketQuery{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(tickets) != 1 {
		t.Fatalf("expected exactly one stored ticket, got %d", total)
	}
}

func TestCreateTicketValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	unknown := sapTicket("T1")
	unknown.Title = "Unknown"
	_, err := env.tickets.CreateTicket(ctx, user, unknown)
	expectCode(t, err, apperrors.CodeValidation)

	if _, err := env.tickets.GetTicket(ctx, admin, "T1"); !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Fatalf("rejected ticket must not be persisted, got %v", err)
	}

	missing := TicketCreateInput{TicketID: "T2", Title: "SAP", UserID: "u1", UserName: "User"}
	_, err = env.tickets.CreateTicket(ctx, user, missing)
	expectCode(t, err, apperrors.CodeValidation)

	badRisk := sapTicket("T3")
	badRisk.Risk = "critico"
	_, err = env.tickets.CreateTicket(ctx, user, badRisk)
	expectCode(t, err, apperrors.CodeValidation)
}

func TestCreateTicketForAnotherUserIsForbidden(t *testing.T) {
	env := newTestEnv(t)
	input := sapTicket("T1")
	input.UserID = "someone-else"

	_, err := env.tickets.CreateTicket(context.Background(), user, input)
	expectCode(t, err, apperrors.CodeForbidden)
}

func TestCreateTicketKeepsImages(t *testing.T) {
	env := newTestEnv(t)
	input := sapTicket("T1")
	input.Images = []string{"data:image/png;base64,AAA", "javascript:alert(1)"}

	ticket, err := env.tickets.CreateTicket(context.Background(), user, input)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(ticket.Images) != 1 {
		t.Fatalf("expected only the data:image url, got %v", ticket.Images)
	}
}

func TestPatchTicketRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	if _, err := env.tickets.CreateTicket(ctx, user, sapTicket("T1")); err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err := env.tickets.PatchTicket(ctx, admin, "T1", TicketPatchInput{})
	expectCode(t, err, apperrors.CodeValidation)

	_, err = env.tickets.PatchTicket(ctx, admin, "T1", TicketPatchInput{State: str("cerrado")})
	expectCode(t, err, apperrors.CodeValidation)

	_, err = env.tickets.PatchTicket(ctx, user, "T1", TicketPatchInput{State: str("resuelto")})
	expectCode(t, err, apperrors.CodeForbidden)

	_, err = env.tickets.PatchTicket(ctx, admin, "missing", TicketPatchInput{State: str("resuelto")})
	expectCode(t, err, apperrors.CodeNotFound)
}

func TestStrictPolicyRejectsSkippingStates(t *testing.T) {
	env := newTestEnv(t, withPolicy(PolicyStrict))
	ctx := context.Background()
	if _, err := env.tickets.CreateTicket(ctx, user, sapTicket("T1")); err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err := env.tickets.PatchTicket(ctx, admin, "T1", TicketPatchInput{State: str("resuelto")})
	expectCode(t, err, apperrors.CodeConflict)

	ticket, err := env.tickets.GetTicket(ctx, admin, "T1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ticket.State != domain.TicketStateReceived || ticket.ResolucionTime != nil {
		t.Fatalf("rejected transition must not change the ticket: %+v", ticket)
	}

	for _, state := range []string{"enProceso", "conDificultades", "resuelto", "enProceso"} {
		if _, err := env.tickets.PatchTicket(ctx, admin, "T1", TicketPatchInput{State: str(state)}); err != nil {
			t.Fatalf("transition to %s: %v", state, err)
		}
	}
}

func TestTicketVisibility(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	other := domain.Actor{ID: "u2", Name: "Other", Role: domain.ActorRoleUser}

	if _, err := env.tickets.CreateTicket(ctx, user, sapTicket("T1")); err != nil {
		t.Fatalf("create: %v", err)
	}
	otherTicket := sapTicket("T2")
	otherTicket.UserID, otherTicket.UserName = "u2", "Other"
	if _, err := env.tickets.CreateTicket(ctx, other, otherTicket); err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err := env.tickets.GetTicket(ctx, other, "T1")
	expectCode(t, err, apperrors.CodeForbidden)

	tickets, total, err := env.tickets.ListTickets(ctx, user, TicketQuery{UserID: str("u2")})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || tickets[0].TicketID != "T1" {
		t.Fatalf("non-admin listing must be scoped to own tickets, got %+v", tickets)
	}

	all, total, err := env.tickets.ListTickets(ctx, admin, TicketQuery{})
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if total != 2 || all[0].TicketID != "T2" {
		t.Fatalf("expected newest first, got %+v", all)
	}
}

func TestListTicketsFiltersAndPaging(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for i, title := range []string{"SAP", "Impresoras", "SAP"} {
		input := sapTicket(string(rune('A' + i)))
		input.Title = title
		input.TicketTime = date(2025, 1, i+1)
		if _, err := env.tickets.CreateTicket(ctx, admin, input); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	tickets, total, err := env.tickets.ListTickets(ctx, admin, TicketQuery{Title: str("SAP"), Limit: 1})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || len(tickets) != 1 || tickets[0].TicketID != "C" {
		t.Fatalf("unexpected page %+v (total %d)", tickets, total)
	}

	_, _, err = env.tickets.ListTickets(ctx, admin, TicketQuery{Skip: -1})
	expectCode(t, err, apperrors.CodeValidation)

	_, _, err = env.tickets.ListTickets(ctx, admin, TicketQuery{State: str("abierto")})
	expectCode(t, err, apperrors.CodeValidation)
}

func TestListPendingOldestFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for i, id := range []string{"new", "old", "done"} {
		input := sapTicket(id)
		input.TicketTime = date(2025, 1, 3-i)
		if _, err := env.tickets.CreateTicket(ctx, admin, input); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if _, err := env.tickets.PatchTicket(ctx, admin, "done", TicketPatchInput{State: str("resuelto")}); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	pending, err := env.tickets.ListPending(ctx)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 2 || pending[0].TicketID != "old" || pending[1].TicketID != "new" {
		t.Fatalf("unexpected pending order %+v", pending)
	}
}

func TestDeleteTicket(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	if _, err := env.tickets.CreateTicket(ctx, user, sapTicket("T1")); err != nil {
		t.Fatalf("create: %v", err)
	}

	expectCode(t, env.tickets.DeleteTicket(ctx, user, "T1"), apperrors.CodeForbidden)
	if err := env.tickets.DeleteTicket(ctx, admin, "T1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	expectCode(t, env.tickets.DeleteTicket(ctx, admin, "T1"), apperrors.CodeNotFound)
}


func TestStrictPolicyGuardsInitialStateForUsers(t *testing.T) {
	env := newTestEnv(t, withPolicy(PolicyStrict))
	ctx := context.Background()

	for _, state := range []string{"resuelto", "conDificultades"} {
		input := sapTicket("T-" + state)
		input.State = state
		_, err := env.tickets.CreateTicket(ctx, user, input)
		expectCode(t, err, apperrors.CodeConflict)
		if _, err := env.tickets.GetTicket(ctx, admin, input.TicketID); !apperrors.HasCode(err, apperrors.CodeNotFound) {
			t.Fatalf("rejected ticket %s must not be stored, got %v", state, err)
		}
	}

	input := sapTicket("T-proceso")
	input.State = "enProceso"
	if _, err := env.tickets.CreateTicket(ctx, user, input); err != nil {
		t.Fatalf("recibido -> enProceso is allowed: %v", err)
	}

	imported := sapTicket("T-imported")
	imported.State = "resuelto"
	ticket, err := env.tickets.CreateTicket(ctx, admin, imported)
	if err != nil {
		t.Fatalf("admins may record resolved tickets: %v", err)
	}
	if ticket.ResolucionTime == nil {
		t.Fatalf("resolved ticket needs resolucionTime")
	}
}

func TestPermissivePolicyAcceptsAnyInitialState(t *testing.T) {
	env := newTestEnv(t)
	input := sapTicket("T1")
	input.State = "conDificultades"
	if _, err := env.tickets.CreateTicket(context.Background(), user, input); err != nil {
		t.Fatalf("create: %v", err)
	}
}
