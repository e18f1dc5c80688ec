package repotest

import (
	"context"
	"strings"
	"time"

	"github.com/spec-kit/asset-desk/internal/domain"
	"github.com/spec-kit/asset-desk/internal/repository"
)

type assetRepo struct{ s *Store }

func (r assetRepo) Create(_ context.Context, asset *domain.Asset) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	asset.ID, asset.CreatedAt = r.s.nextLocked("asset")
	asset.UpdatedAt = asset.CreatedAt
	asset.Version = 1
	r.s.assets[asset.ID] = copyAsset(*asset)
	return nil
}

func (r assetRepo) GetByID(_ context.Context, id string) (*domain.Asset, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	asset, ok := r.s.assets[id]
	if !ok {
		return nil, notFound()
	}
	copied := copyAsset(asset)
	return &copied, nil
}

func (r assetRepo) UpdateDetails(_ context.Context, asset *domain.Asset, expectedVersion int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.assets[asset.ID]
	if !ok {
		return notFound()
	}
	if current.Version != expectedVersion {
		return stale()
	}
	updated := copyAsset(*asset)
	updated.AsignadoPara = current.AsignadoPara
	updated.AsignadoPor = current.AsignadoPor
	updated.FechaAsignacion = current.FechaAsignacion
	updated.CreatedAt = current.CreatedAt
	updated.Version = current.Version + 1
	_, updated.UpdatedAt = r.s.nextLocked("tick")
	r.s.assets[asset.ID] = updated
	asset.Version, asset.UpdatedAt = updated.Version, updated.UpdatedAt
	return nil
}

func (r assetRepo) UpdateAssignment(_ context.Context, id string, assignment repository.AssetAssignment, expectedVersion int64) (*domain.Asset, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.assets[id]
	if !ok {
		return nil, notFound()
	}
	if current.Version != expectedVersion {
		return nil, stale()
	}
	at := assignment.FechaAsignacion
	current.AsignadoPara = assignment.AsignadoPara
	current.AsignadoPor = assignment.AsignadoPor
	current.FechaAsignacion = &at
	current.Version++
	_, current.UpdatedAt = r.s.nextLocked("tick")
	r.s.assets[id] = current
	copied := copyAsset(current)
	return &copied, nil
}

func (r assetRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.assets[id]; !ok {
		return notFound()
	}
	delete(r.s.assets, id)
	return nil
}

func (r assetRepo) List(_ context.Context, filter repository.AssetFilter) ([]domain.Asset, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	matched := []domain.Asset{}
	for _, asset := range r.s.assets {
		fecha := asset.FechaCompra
		switch {
		case !matchesExact(asset.Categoria, filter.Categoria),
			!matchesContains(asset.Marca, filter.Marca),
			!matchesContains(asset.AsignadoPara, filter.AsignadoPara),
			!matchesContains(asset.Sucursal, filter.Sucursal),
			filter.SinAsignar && strings.TrimSpace(asset.AsignadoPara) != "",
			!matchesRange(&fecha, filter.CompraDesde, filter.CompraHasta),
			!matchesRange(asset.FechaAsignacion, filter.AsignacionDesde, filter.AsignacionHasta):
			continue
		}
		matched = append(matched, copyAsset(asset))
	}
	sortByCreatedDesc(matched,
		func(a domain.Asset) time.Time { return a.CreatedAt },
		func(a domain.Asset) string { return a.ID })
	return page(matched, filter.Limit, filter.Skip), len(matched), nil
}
