package dto

import (
	"time"

	"github.com/spec-kit/asset-desk/internal/domain"
)

// SnapshotResponse is the ledger's last known copy of the record.
type SnapshotResponse struct {
	Categoria    string     `json:"categoria,omitempty"`
	Marca        string     `json:"marca,omitempty"`
	Modelo       string     `json:"modelo,omitempty"`
	NumeroSerie  string     `json:"numeroSerie,omitempty"`
	FechaCompra  *time.Time `json:"fechaCompra,omitempty"`
	Proveedor    string     `json:"proveedor,omitempty"`
	TipoLicencia string     `json:"tipoLicencia,omitempty"`
	Cuenta       string     `json:"cuenta,omitempty"`
}

// LedgerResponse is the public history shape. Movements are oldest first.
type LedgerResponse struct {
	SnapshotResponse
	ActivoID         string            `json:"activoId"`
	Tipo             domain.LedgerKind `json:"tipo"`
	AsignadoPara     []domain.Movement `json:"asignadoPara"`
	UltimaAsignacion *time.Time        `json:"ultimaAsignacion,omitempty"`
	AsignadoPor      string            `json:"asignadoPor,omitempty"`
}

// NewLedgerResponse maps a ledger.
func NewLedgerResponse(l *domain.Ledger) LedgerResponse {
	movements := l.Asignaciones
	if movements == nil {
		movements = []domain.Movement{}
	}
	s := l.Snapshot
	return LedgerResponse{
		SnapshotResponse: SnapshotResponse{
			Categoria:    s.Categoria,
			Marca:        s.Marca,
			Modelo:       s.Modelo,
			NumeroSerie:  s.NumeroSerie,
			FechaCompra:  s.FechaCompra,
			Proveedor:    s.Proveedor,
			TipoLicencia: s.TipoLicencia,
			Cuenta:       s.Cuenta,
		},
		ActivoID:         l.ActivoID,
		Tipo:             l.Tipo,
		AsignadoPara:     movements,
		UltimaAsignacion: l.UltimaAsignacion,
		AsignadoPor:      l.AsignadoPor,
	}
}
