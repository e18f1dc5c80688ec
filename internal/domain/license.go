package domain

import (
	"fmt"
	"time"
)

// LicenseProvider enumerates software vendors.
type LicenseProvider string

const (
	LicenseProviderSAP    LicenseProvider = "SAP"
	LicenseProviderOffice LicenseProvider = "Office"
)

// licenseTypesByProvider is the provider -> accepted tipoLicencia table.
var licenseTypesByProvider = map[LicenseProvider][]string{
	LicenseProviderSAP: {
		"Profesional",
		"CRM limitada",
		"Logistica limitada",
		"Acceso indirecto",
		"Financiera limitada",
	},
	LicenseProviderOffice: {
		"Microsoft 365 E3",
		"Microsoft 365 Empresa Basico",
		"Microsoft 365 Empresa Estandar",
	},
}

// Valid reports whether p is a known provider.
func (p LicenseProvider) Valid() bool {
	_, ok := licenseTypesByProvider[p]
	return ok
}

// LicenseTypes returns the license types accepted for the provider.
func LicenseTypes(p LicenseProvider) []string {
	return append([]string(nil), licenseTypesByProvider[p]...)
}

// CheckProviderType validates that tipo belongs to the provider's table.
func CheckProviderType(p LicenseProvider, tipo string) error {
	types, ok := licenseTypesByProvider[p]
	if !ok {
		return fmt.Errorf("unknown provider %q", p)
	}
	for _, candidate := range types {
		if candidate == tipo {
			return nil
		}
	}
	return fmt.Errorf("license type %q does not belong to provider %q", tipo, p)
}

// AvailableAccount is the cuenta value used for licenses not yet handed out.
const AvailableAccount = "disponible"

// License is a standalone software license record.
type License struct {
	ID              string
	Proveedor       LicenseProvider
	Cuenta          string
	TipoLicencia    string
	FechaCompra     time.Time
	Sucursal        string
	CentroCosto     string
	AsignadoPara    string
	AsignadoPor     string
	FechaAsignacion *time.Time
	Notas           string
	Version         int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Snapshot returns the descriptive fields mirrored into the ledger.
func (l *License) Snapshot() LedgerSnapshot {
	fecha := l.FechaCompra
	return LedgerSnapshot{
		Categoria:    LicenseCategory,
		FechaCompra:  &fecha,
		Proveedor:    string(l.Proveedor),
		TipoLicencia: l.TipoLicencia,
		Cuenta:       l.Cuenta,
	}
}

// LicenseSource tells where a merged license view came from.
type LicenseSource string

const (
	LicenseSourceStandalone LicenseSource = "licencia"
	LicenseSourceAsset      LicenseSource = "activo"
)

// LicenseView is one element of the merged license series.
type LicenseView struct {
	ID              string
	Source          LicenseSource
	Proveedor       string
	Cuenta          string
	TipoLicencia    string
	FechaCompra     *time.Time
	Sucursal        string
	CentroCosto     string
	AsignadoPara    string
	FechaAsignacion *time.Time
	ActivoID        string
	Notas           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// LicenseStats aggregates the merged license series.
type LicenseStats struct {
	Total        int
	Disponibles  int
	Ocupadas     int
	PorTipo      map[string]int
	PorProveedor map[string]int
}
