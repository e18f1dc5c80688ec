package dto

import (
	"time"

	"github.com/spec-kit/asset-desk/internal/domain"
)

// CreateLicenseRequest payload. The endpoint accepts one object or an array.
type CreateLicenseRequest struct {
	Proveedor       string `json:"proveedor"`
	Cuenta          string `json:"cuenta"`
	TipoLicencia    string `json:"tipoLicencia"`
	FechaCompra     *Date  `json:"fechaCompra"`
	Sucursal        string `json:"sucursal"`
	CentroCosto     string `json:"centroCosto"`
	Notas           string `json:"notas"`
	AsignadoPara    string `json:"asignadoPara"`
	AsignadoPor     string `json:"asignadoPor"`
	FechaAsignacion *Date  `json:"fechaAsignacion"`
}

// PatchLicenseRequest carries descriptive license fields.
type PatchLicenseRequest struct {
	Proveedor       *string `json:"proveedor"`
	Cuenta          *string `json:"cuenta"`
	TipoLicencia    *string `json:"tipoLicencia"`
	FechaCompra     *Date   `json:"fechaCompra"`
	Sucursal        *string `json:"sucursal"`
	CentroCosto     *string `json:"centroCosto"`
	Notas           *string `json:"notas"`
	AsignadoPara    *string `json:"asignadoPara"`
	AsignadoPor     *string `json:"asignadoPor"`
	FechaAsignacion *Date   `json:"fechaAsignacion"`
	Version         *int64  `json:"version"`
}

// LicenseResponse is a standalone license.
type LicenseResponse struct {
	ID              string                 `json:"id"`
	Proveedor       domain.LicenseProvider `json:"proveedor"`
	Cuenta          string                 `json:"cuenta"`
	TipoLicencia    string                 `json:"tipoLicencia"`
	FechaCompra     time.Time              `json:"fechaCompra"`
	Sucursal        string                 `json:"sucursal,omitempty"`
	CentroCosto     string                 `json:"centroCosto,omitempty"`
	AsignadoPara    string                 `json:"asignadoPara,omitempty"`
	AsignadoPor     string                 `json:"asignadoPor,omitempty"`
	FechaAsignacion *time.Time             `json:"fechaAsignacion,omitempty"`
	Notas           string                 `json:"notas,omitempty"`
	Version         int64                  `json:"version"`
	CreatedAt       time.Time              `json:"createdAt"`
	UpdatedAt       time.Time              `json:"updatedAt"`
}

// NewLicenseResponse maps a domain license.
func NewLicenseResponse(l *domain.License) LicenseResponse {
	return LicenseResponse{
		ID:              l.ID,
		Proveedor:       l.Proveedor,
		Cuenta:          l.Cuenta,
		TipoLicencia:    l.TipoLicencia,
		FechaCompra:     l.FechaCompra,
		Sucursal:        l.Sucursal,
		CentroCosto:     l.CentroCosto,
		AsignadoPara:    l.AsignadoPara,
		AsignadoPor:     l.AsignadoPor,
		FechaAsignacion: l.FechaAsignacion,
		Notas:           l.Notas,
		Version:         l.Version,
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.UpdatedAt,
	}
}

// NewLicenseResponses maps a slice of licenses.
func NewLicenseResponses(licenses []domain.License) []LicenseResponse {
	out := make([]LicenseResponse, 0, len(licenses))
	for i := range licenses {
		out = append(out, NewLicenseResponse(&licenses[i]))
	}
	return out
}

// LicenseViewResponse is one element of the merged license series.
type LicenseViewResponse struct {
	ID              string               `json:"id"`
	Source          domain.LicenseSource `json:"source"`
	Proveedor       string               `json:"proveedor"`
	Cuenta          string               `json:"cuenta"`
	TipoLicencia    string               `json:"tipoLicencia"`
	FechaCompra     *time.Time           `json:"fechaCompra,omitempty"`
	Sucursal        string               `json:"sucursal,omitempty"`
	CentroCosto     string               `json:"centroCosto,omitempty"`
	AsignadoPara    string               `json:"asignadoPara,omitempty"`
	FechaAsignacion *time.Time           `json:"fechaAsignacion,omitempty"`
	ActivoID        string               `json:"activoId,omitempty"`
	Notas           string               `json:"notas,omitempty"`
	CreatedAt       time.Time            `json:"createdAt"`
	UpdatedAt       time.Time            `json:"updatedAt"`
}

// NewLicenseViewResponses maps the merged series.
func NewLicenseViewResponses(views []domain.LicenseView) []LicenseViewResponse {
	out := make([]LicenseViewResponse, 0, len(views))
	for _, v := range views {
		out = append(out, LicenseViewResponse{
			ID:              v.ID,
			Source:          v.Source,
			Proveedor:       v.Proveedor,
			Cuenta:          v.Cuenta,
			TipoLicencia:    v.TipoLicencia,
			FechaCompra:     v.FechaCompra,
			Sucursal:        v.Sucursal,
			CentroCosto:     v.CentroCosto,
			AsignadoPara:    v.AsignadoPara,
			FechaAsignacion: v.FechaAsignacion,
			ActivoID:        v.ActivoID,
			Notas:           v.Notas,
			CreatedAt:       v.CreatedAt,
			UpdatedAt:       v.UpdatedAt,
		})
	}
	return out
}

// LicenseStatsResponse aggregates the merged series.
type LicenseStatsResponse struct {
	Total        int            `json:"total"`
	Disponibles  int            `json:"disponibles"`
	Ocupadas     int            `json:"ocupadas"`
	PorTipo      map[string]int `json:"porTipo"`
	PorProveedor map[string]int `json:"porProveedor"`
}

// NewLicenseStatsResponse maps stats.
func NewLicenseStatsResponse(s domain.LicenseStats) LicenseStatsResponse {
	return LicenseStatsResponse{
		Total:        s.Total,
		Disponibles:  s.Disponibles,
		Ocupadas:     s.Ocupadas,
		PorTipo:      s.PorTipo,
		PorProveedor: s.PorProveedor,
	}
}
