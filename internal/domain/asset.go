package domain

import "time"

// LicenseCategory marks assets that carry an embedded license sub-object.
const LicenseCategory = "licencias"

// EmbeddedLicense is the license sub-object some assets carry. Such assets
// appear in the merged license series.
type EmbeddedLicense struct {
	Proveedor     string     `json:"proveedor,omitempty"`
	Cuenta        string     `json:"cuenta,omitempty"`
	TipoLicencia  string     `json:"tipoLicencia,omitempty"`
	UsuarioNombre string     `json:"usuarioNombre,omitempty"`
	AsignadaEn    *time.Time `json:"asignadaEn,omitempty"`
}

// Asset is a physical inventory item. AsignadoPara holds only the current
// assignee; past assignees live in the asset's Ledger.
type Asset struct {
	ID              string
	Categoria       string
	Marca           string
	Modelo          string
	NumeroSerie     string
	NumeroFactura   string
	FechaCompra     time.Time
	Detalles        string
	Sucursal        string
	CentroCosto     string
	AsignadoPara    string
	AsignadoPor     string
	FechaAsignacion *time.Time
	Licencia        *EmbeddedLicense
	Notas           string
	Version         int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Snapshot returns the descriptive fields mirrored into the ledger.
func (a *Asset) Snapshot() LedgerSnapshot {
	fecha := a.FechaCompra
	snap := LedgerSnapshot{
		Categoria:   a.Categoria,
		Marca:       a.Marca,
		Modelo:      a.Modelo,
		NumeroSerie: a.NumeroSerie,
		FechaCompra: &fecha,
	}
	if a.Licencia != nil {
		snap.Proveedor = a.Licencia.Proveedor
		snap.TipoLicencia = a.Licencia.TipoLicencia
		snap.Cuenta = a.Licencia.Cuenta
	}
	return snap
}

// IsLicenseCarrier reports whether the asset contributes to the license series.
func (a *Asset) IsLicenseCarrier() bool {
	return a.Categoria == LicenseCategory && a.Licencia != nil
}
