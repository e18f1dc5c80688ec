package dto

import (
	"time"

	"github.com/spec-kit/asset-desk/internal/domain"
)

// SpecificationRequest is used for create and patch.
type SpecificationRequest struct {
	Modelo         *string `json:"modelo"`
	Categoria      *string `json:"categoria"`
	Marca          *string `json:"marca"`
	Procesador     *string `json:"procesador"`
	FrecuenciaGhz  *string `json:"frecuenciaGhz"`
	Almacenamiento *string `json:"almacenamiento"`
	RAM            *string `json:"ram"`
	SO             *string `json:"so"`
	Graficos       *string `json:"graficos"`
	Resolucion     *string `json:"resolucion"`
}

// SpecificationResponse is the public catalog entry.
type SpecificationResponse struct {
	ID             string    `json:"id"`
	Modelo         string    `json:"modelo"`
	Categoria      string    `json:"categoria,omitempty"`
	Marca          string    `json:"marca,omitempty"`
	Procesador     string    `json:"procesador,omitempty"`
	FrecuenciaGhz  string    `json:"frecuenciaGhz,omitempty"`
	Almacenamiento string    `json:"almacenamiento,omitempty"`
	RAM            string    `json:"ram,omitempty"`
	SO             string    `json:"so,omitempty"`
	Graficos       string    `json:"graficos,omitempty"`
	Resolucion     string    `json:"resolucion,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// NewSpecificationResponse maps a catalog entry.
func NewSpecificationResponse(s *domain.Specification) SpecificationResponse {
	return SpecificationResponse{
		ID:             s.ID,
		Modelo:         s.Modelo,
		Categoria:      s.Categoria,
		Marca:          s.Marca,
		Procesador:     s.Procesador,
		FrecuenciaGhz:  s.FrecuenciaGhz,
		Almacenamiento: s.Almacenamiento,
		RAM:            s.RAM,
		SO:             s.SO,
		Graficos:       s.Graficos,
		Resolucion:     s.Resolucion,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}
