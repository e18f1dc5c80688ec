package dto

import (
	"time"

	"github.com/spec-kit/asset-desk/internal/domain"
)

// EmbeddedLicenseRequest is the license sub-object of an asset payload.
type EmbeddedLicenseRequest struct {
	Proveedor     string `json:"proveedor"`
	Cuenta        string `json:"cuenta"`
	TipoLicencia  string `json:"tipoLicencia"`
	UsuarioNombre string `json:"usuarioNombre"`
	AsignadaEn    *Date  `json:"asignadaEn"`
}

// ToDomain converts the payload. A nil request stays nil.
func (r *EmbeddedLicenseRequest) ToDomain() *domain.EmbeddedLicense {
	if r == nil {
		return nil
	}
	return &domain.EmbeddedLicense{
		Proveedor:     r.Proveedor,
		Cuenta:        r.Cuenta,
		TipoLicencia:  r.TipoLicencia,
		UsuarioNombre: r.UsuarioNombre,
		AsignadaEn:    r.AsignadaEn.Ptr(),
	}
}

// CreateAssetRequest payload.
type CreateAssetRequest struct {
	Categoria       string                  `json:"categoria"`
	Marca           string                  `json:"marca"`
	Modelo          string                  `json:"modelo"`
	NumeroSerie     string                  `json:"numeroSerie"`
	NumeroFactura   string                  `json:"numeroFactura"`
	FechaCompra     *Date                   `json:"fechaCompra"`
	Detalles        string                  `json:"detalles"`
	Sucursal        string                  `json:"sucursal"`
	CentroCosto     string                  `json:"centroCosto"`
	Notas           string                  `json:"notas"`
	Licencia        *EmbeddedLicenseRequest `json:"licencia"`
	AsignadoPara    string                  `json:"asignadoPara"`
	AsignadoPor     string                  `json:"asignadoPor"`
	FechaAsignacion *Date                   `json:"fechaAsignacion"`
}

// PatchAssetRequest carries descriptive fields. Assignment keys are decoded
// only so the service can reject them.
type PatchAssetRequest struct {
	Categoria       *string                 `json:"categoria"`
	Marca           *string                 `json:"marca"`
	Modelo          *string                 `json:"modelo"`
	NumeroSerie     *string                 `json:"numeroSerie"`
	NumeroFactura   *string                 `json:"numeroFactura"`
	FechaCompra     *Date                   `json:"fechaCompra"`
	Detalles        *string                 `json:"detalles"`
	Sucursal        *string                 `json:"sucursal"`
	CentroCosto     *string                 `json:"centroCosto"`
	Notas           *string                 `json:"notas"`
	Licencia        *EmbeddedLicenseRequest `json:"licencia"`
	AsignadoPara    *string                 `json:"asignadoPara"`
	AsignadoPor     *string                 `json:"asignadoPor"`
	FechaAsignacion *Date                   `json:"fechaAsignacion"`
	Version         *int64                  `json:"version"`
}

// AssignRequest is the body of the assign endpoints.
type AssignRequest struct {
	AsignadoPara    string `json:"asignadoPara"`
	AsignadoPor     string `json:"asignadoPor"`
	FechaAsignacion *Date  `json:"fechaAsignacion"`
	Observacion     string `json:"observacion"`
	Version         *int64 `json:"version"`
}

// EmbeddedLicenseResponse mirrors domain.EmbeddedLicense.
type EmbeddedLicenseResponse struct {
	Proveedor     string     `json:"proveedor,omitempty"`
	Cuenta        string     `json:"cuenta,omitempty"`
	TipoLicencia  string     `json:"tipoLicencia,omitempty"`
	UsuarioNombre string     `json:"usuarioNombre,omitempty"`
	AsignadaEn    *time.Time `json:"asignadaEn,omitempty"`
}

// AssetResponse is the public asset shape.
type AssetResponse struct {
	ID              string                   `json:"id"`
	Categoria       string                   `json:"categoria"`
	Marca           string                   `json:"marca"`
	Modelo          string                   `json:"modelo"`
	NumeroSerie     string                   `json:"numeroSerie"`
	NumeroFactura   string                   `json:"numeroFactura,omitempty"`
	FechaCompra     time.Time                `json:"fechaCompra"`
	Detalles        string                   `json:"detalles,omitempty"`
	Sucursal        string                   `json:"sucursal,omitempty"`
	CentroCosto     string                   `json:"centroCosto,omitempty"`
	AsignadoPara    string                   `json:"asignadoPara,omitempty"`
	AsignadoPor     string                   `json:"asignadoPor,omitempty"`
	FechaAsignacion *time.Time               `json:"fechaAsignacion,omitempty"`
	Licencia        *EmbeddedLicenseResponse `json:"licencia,omitempty"`
	Notas           string                   `json:"notas,omitempty"`
	Version         int64                    `json:"version"`
	CreatedAt       time.Time                `json:"createdAt"`
	UpdatedAt       time.Time                `json:"updatedAt"`
}

// NewAssetResponse maps a domain asset.
func NewAssetResponse(a *domain.Asset) AssetResponse {
	resp := AssetResponse{
		ID:              a.ID,
		Categoria:       a.Categoria,
		Marca:           a.Marca,
		Modelo:          a.Modelo,
		NumeroSerie:     a.NumeroSerie,
		NumeroFactura:   a.NumeroFactura,
		FechaCompra:     a.FechaCompra,
		Detalles:        a.Detalles,
		Sucursal:        a.Sucursal,
		CentroCosto:     a.CentroCosto,
		AsignadoPara:    a.AsignadoPara,
		AsignadoPor:     a.AsignadoPor,
		FechaAsignacion: a.FechaAsignacion,
		Notas:           a.Notas,
		Version:         a.Version,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
	if lic := a.Licencia; lic != nil {
		resp.Licencia = &EmbeddedLicenseResponse{
			Proveedor:     lic.Proveedor,
			Cuenta:        lic.Cuenta,
			TipoLicencia:  lic.TipoLicencia,
			UsuarioNombre: lic.UsuarioNombre,
			AsignadaEn:    lic.AsignadaEn,
		}
	}
	return resp
}

// NewAssetResponses maps a slice of assets.
func NewAssetResponses(assets []domain.Asset) []AssetResponse {
	out := make([]AssetResponse, 0, len(assets))
	for i := range assets {
		out = append(out, NewAssetResponse(&assets[i]))
	}
	return out
}
