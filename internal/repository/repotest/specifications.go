package repotest

import (
	"context"
	"sort"

	"github.com/spec-kit/asset-desk/internal/domain"
)

type specRepo struct{ s *Store }

func (r specRepo) modeloTakenLocked(spec *domain.Specification) bool {
	for id, existing := range r.s.specs {
		if id != spec.ID && existing.Modelo == spec.Modelo {
			return true
		}
	}
	return false
}

func (r specRepo) Create(_ context.Context, spec *domain.Specification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.modeloTakenLocked(spec) {
		return duplicate()
	}
	spec.ID, spec.CreatedAt = r.s.nextLocked("spec")
	spec.UpdatedAt = spec.CreatedAt
	r.s.specs[spec.ID] = *spec
	return nil
}

func (r specRepo) GetByID(_ context.Context, id string) (*domain.Specification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	spec, ok := r.s.specs[id]
	if !ok {
		return nil, notFound()
	}
	return &spec, nil
}

func (r specRepo) GetByModelo(_ context.Context, modelo string) (*domain.Specification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, spec := range r.s.specs {
		if spec.Modelo == modelo {
			copied := spec
			return &copied, nil
		}
	}
	return nil, notFound()
}

func (r specRepo) List(_ context.Context, limit int) ([]domain.Specification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	specs := make([]domain.Specification, 0, len(r.s.specs))
	for _, spec := range r.s.specs {
		specs = append(specs, spec)
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Modelo < specs[j].Modelo })
	return page(specs, limit, 0), nil
}

func (r specRepo) Update(_ context.Context, spec *domain.Specification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.specs[spec.ID]
	if !ok {
		return notFound()
	}
	if r.modeloTakenLocked(spec) {
		return duplicate()
	}
	spec.CreatedAt = current.CreatedAt
	_, spec.UpdatedAt = r.s.nextLocked("tick")
	r.s.specs[spec.ID] = *spec
	return nil
}

func (r specRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.specs[id]; !ok {
		return notFound()
	}
	delete(r.s.specs, id)
	return nil
}
