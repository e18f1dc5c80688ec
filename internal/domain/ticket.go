package domain

import (
	"strings"
	"time"
)

// TicketTitle is the fixed support category of a ticket.
type TicketTitle string

const (
	TicketTitleSAP      TicketTitle = "SAP"
	TicketTitlePrinters TicketTitle = "Impresoras"
	TicketTitleAccounts TicketTitle = "Cuentas"
	TicketTitleExpenses TicketTitle = "Rinde Gastos"
	TicketTitleField    TicketTitle = "Terreno"
	TicketTitleOther    TicketTitle = "Otros"
)

// TicketTitles lists every accepted category.
var TicketTitles = []TicketTitle{
	TicketTitleSAP,
	TicketTitlePrinters,
	TicketTitleAccounts,
	TicketTitleExpenses,
	TicketTitleField,
	TicketTitleOther,
}

// Valid reports whether t is one of the fixed categories.
func (t TicketTitle) Valid() bool {
	for _, candidate := range TicketTitles {
		if candidate == t {
			return true
		}
	}
	return false
}

// TicketRisk enumerates triage risk.
type TicketRisk string

const (
	TicketRiskHigh   TicketRisk = "alto"
	TicketRiskMedium TicketRisk = "medio"
	TicketRiskLow    TicketRisk = "bajo"
)

// Valid reports whether r is a known risk level.
func (r TicketRisk) Valid() bool {
	switch r {
	case TicketRiskHigh, TicketRiskMedium, TicketRiskLow:
		return true
	}
	return false
}

// TicketState enumerates lifecycle states for tickets.
type TicketState string

const (
	TicketStateReceived     TicketState = "recibido"
	TicketStateInProgress   TicketState = "enProceso"
	TicketStateResolved     TicketState = "resuelto"
	TicketStateWithProblems TicketState = "conDificultades"
)

// TicketStates lists every lifecycle state.
var TicketStates = []TicketState{
	TicketStateReceived,
	TicketStateInProgress,
	TicketStateResolved,
	TicketStateWithProblems,
}

// Valid reports whether s is a known state.
func (s TicketState) Valid() bool {
	for _, candidate := range TicketStates {
		if candidate == s {
			return true
		}
	}
	return false
}

// MaxTicketImages caps the number of inline images kept on a ticket.
const MaxTicketImages = 5

// Ticket is the aggregate for support requests. ResolucionTime is non-nil
// exactly when State is TicketStateResolved.
type Ticket struct {
	ID             string
	TicketID       string
	Title          TicketTitle
	Description    string
	UserID         string
	UserName       string
	Risk           TicketRisk
	State          TicketState
	Comment        string
	Images         []string
	TicketTime     time.Time
	ResolucionTime *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SanitizeImages keeps at most MaxTicketImages data:image URLs.
func SanitizeImages(images []string) []string {
	kept := make([]string, 0, len(images))
	for _, img := range images {
		if !strings.HasPrefix(img, "data:image/") {
			continue
		}
		kept = append(kept, img)
		if len(kept) == MaxTicketImages {
			break
		}
	}
	return kept
}
