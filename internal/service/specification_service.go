package service

import (
	"context"
	"strings"

	"github.com/spec-kit/asset-desk/internal/domain"
	"github.com/spec-kit/asset-desk/internal/repository"
	apperrors "github.com/spec-kit/asset-desk/pkg/util/errorutil"
)

// SpecificationService manages the hardware model catalog.
type SpecificationService struct {
	specs repository.SpecificationRepository
}

// SpecificationInput carries catalog fields. Nil pointers are left unchanged
// on patch.
type SpecificationInput struct {
	Modelo         *string
	Categoria      *string
	Marca          *string
	Procesador     *string
	FrecuenciaGhz  *string
	Almacenamiento *string
	RAM            *string
	SO             *string
	Graficos       *string
	Resolucion     *string
}

// NewSpecificationService constructs the service.
func NewSpecificationService(specs repository.SpecificationRepository) *SpecificationService {
	return &SpecificationService{specs: specs}
}

// Create registers a model. modelo is required and unique.
func (s *SpecificationService) Create(ctx context.Context, input SpecificationInput) (*domain.Specification, error) {
	spec := &domain.Specification{}
	applySpecification(spec, input)
	if spec.Modelo == "" {
		return nil, apperrors.NewMissingFields([]string{"modelo"})
	}
	if err := s.specs.Create(ctx, spec); err != nil {
		return nil, mapRepoError(err, "specification", map[string]any{"modelo": spec.Modelo})
	}
	return spec, nil
}

// List returns catalog entries sorted by modelo.
func (s *SpecificationService) List(ctx context.Context) ([]domain.Specification, error) {
	specs, err := s.specs.List(ctx, SpecificationListLimit)
	if err != nil {
		return nil, mapRepoError(err, "specification", nil)
	}
	return specs, nil
}

// Get fetches one entry by id.
func (s *SpecificationService) Get(ctx context.Context, id string) (*domain.Specification, error) {
	spec, err := s.specs.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "specification", map[string]any{"id": id})
	}
	return spec, nil
}

// LookupByModelo resolves a model name through the cached catalog.
func (s *SpecificationService) LookupByModelo(ctx context.Context, modelo string) (*domain.Specification, error) {
	spec, err := s.specs.GetByModelo(ctx, strings.TrimSpace(modelo))
	if err != nil {
		return nil, mapRepoError(err, "specification", map[string]any{"modelo": modelo})
	}
	return spec, nil
}

// Patch updates the provided fields.
func (s *SpecificationService) Patch(ctx context.Context, id string, input SpecificationInput) (*domain.Specification, error) {
	spec, err := s.specs.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "specification", map[string]any{"id": id})
	}
	applySpecification(spec, input)
	if spec.Modelo == "" {
		return nil, apperrors.NewMissingFields([]string{"modelo"})
	}
	if err := s.specs.Update(ctx, spec); err != nil {
		return nil, mapRepoError(err, "specification", map[string]any{"id": id, "modelo": spec.Modelo})
	}
	return spec, nil
}

// Delete removes an entry.
func (s *SpecificationService) Delete(ctx context.Context, id string) error {
	if err := s.specs.Delete(ctx, id); err != nil {
		return mapRepoError(err, "specification", map[string]any{"id": id})
	}
	return nil
}

func applySpecification(spec *domain.Specification, input SpecificationInput) {
	for _, field := range []struct {
		dst *string
		src *string
	}{
		{&spec.Modelo, input.Modelo},
		{&spec.Categoria, input.Categoria},
		{&spec.Marca, input.Marca},
		{&spec.Procesador, input.Procesador},
		{&spec.FrecuenciaGhz, input.FrecuenciaGhz},
		{&spec.Almacenamiento, input.Almacenamiento},
		{&spec.RAM, input.RAM},
		{&spec.SO, input.SO},
		{&spec.Graficos, input.Graficos},
		{&spec.Resolucion, input.Resolucion},
	} {
		setString(field.dst, field.src)
	}
}
