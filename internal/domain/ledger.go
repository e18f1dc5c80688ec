package domain

import "time"

// LedgerKind distinguishes ledgers of assets and licenses.
type LedgerKind string

const (
	LedgerKindAsset   LedgerKind = "activo"
	LedgerKindLicense LedgerKind = "licencia"
)

// MovementAction describes an assignment movement.
type MovementAction string

const (
	MovementAssigned   MovementAction = "asignado"
	MovementReassigned MovementAction = "reasignado"
)

// Movement is one entry of the append-only assignment sequence.
type Movement struct {
	Nombre      string         `json:"nombre"`
	Fecha       time.Time      `json:"fecha"`
	Por         string         `json:"por,omitempty"`
	Accion      MovementAction `json:"accion,omitempty"`
	Desde       string         `json:"desde,omitempty"`
	Observacion string         `json:"observacion,omitempty"`
}

// LedgerSnapshot is the last known copy of a record's descriptive fields. It
// is a point-in-time copy, never a reference to the live record.
type LedgerSnapshot struct {
	Categoria    string
	Marca        string
	Modelo       string
	NumeroSerie  string
	FechaCompra  *time.Time
	Proveedor    string
	TipoLicencia string
	Cuenta       string
}

// Ledger is the movement log of one asset or license. Asignaciones only grows.
type Ledger struct {
	ActivoID         string
	Tipo             LedgerKind
	Snapshot         LedgerSnapshot
	Asignaciones     []Movement
	UltimaAsignacion *time.Time
	AsignadoPor      string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// EmptyLedger is what a record without history reads as.
func EmptyLedger(activoID string, kind LedgerKind) *Ledger {
	return &Ledger{ActivoID: activoID, Tipo: kind, Asignaciones: []Movement{}}
}

// Current returns the most recent assignee, or "" when there is none.
func (l *Ledger) Current() string {
	if l == nil || len(l.Asignaciones) == 0 {
		return ""
	}
	return l.Asignaciones[len(l.Asignaciones)-1].Nombre
}
