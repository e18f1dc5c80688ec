package repotest

import (
	"context"
	"time"

	"github.com/spec-kit/asset-desk/internal/domain"
	"github.com/spec-kit/asset-desk/internal/repository"
)

type licenseRepo struct{ s *Store }

func (r licenseRepo) duplicateLocked(license *domain.License) bool {
	for id, existing := range r.s.licenses {
		if id != license.ID && existing.Cuenta == license.Cuenta && existing.TipoLicencia == license.TipoLicencia {
			return true
		}
	}
	return false
}

func (r licenseRepo) Create(_ context.Context, license *domain.License) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.duplicateLocked(license) {
		return duplicate()
	}
	license.ID, license.CreatedAt = r.s.nextLocked("license")
	license.UpdatedAt = license.CreatedAt
	license.Version = 1
	r.s.licenses[license.ID] = *license
	return nil
}

func (r licenseRepo) GetByID(_ context.Context, id string) (*domain.License, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	license, ok := r.s.licenses[id]
	if !ok {
		return nil, notFound()
	}
	return &license, nil
}

func (r licenseRepo) UpdateDetails(_ context.Context, license *domain.License, expectedVersion int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.licenses[license.ID]
	if !ok {
		return notFound()
	}
	if current.Version != expectedVersion {
		return stale()
	}
	if r.duplicateLocked(license) {
		return duplicate()
	}
	updated := *license
	updated.AsignadoPara = current.AsignadoPara
	updated.AsignadoPor = current.AsignadoPor
	updated.FechaAsignacion = current.FechaAsignacion
	updated.CreatedAt = current.CreatedAt
	updated.Version = current.Version + 1
	_, updated.UpdatedAt = r.s.nextLocked("tick")
	r.s.licenses[license.ID] = updated
	license.Version, license.UpdatedAt = updated.Version, updated.UpdatedAt
	return nil
}

func (r licenseRepo) UpdateAssignment(_ context.Context, id string, assignment repository.LicenseAssignment, expectedVersion int64) (*domain.License, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.licenses[id]
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
	r.s.licenses[id] = current
	copied := current
	return &copied, nil
}

func (r licenseRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.licenses[id]; !ok {
		return notFound()
	}
	delete(r.s.licenses, id)
	return nil
}

func (r licenseRepo) ListMerged(_ context.Context, filter repository.LicenseFilter) ([]domain.LicenseView, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	views := []domain.LicenseView{}
	for _, license := range r.s.licenses {
		fecha := license.FechaCompra
		views = append(views, domain.LicenseView{
			ID:              license.ID,
			Source:          domain.LicenseSourceStandalone,
			Proveedor:       string(license.Proveedor),
			Cuenta:          license.Cuenta,
			TipoLicencia:    license.TipoLicencia,
			FechaCompra:     &fecha,
			Sucursal:        license.Sucursal,
			CentroCosto:     license.CentroCosto,
			AsignadoPara:    license.AsignadoPara,
			FechaAsignacion: license.FechaAsignacion,
			Notas:           license.Notas,
			CreatedAt:       license.CreatedAt,
			UpdatedAt:       license.UpdatedAt,
		})
	}
	for _, asset := range r.s.assets {
		if !asset.IsLicenseCarrier() {
			continue
		}
		fecha := asset.FechaCompra
		assignee := asset.AsignadoPara
		if assignee == "" {
			assignee = asset.Licencia.UsuarioNombre
		}
		assignedAt := asset.FechaAsignacion
		if assignedAt == nil {
			assignedAt = asset.Licencia.AsignadaEn
		}
		views = append(views, domain.LicenseView{
			ID:              asset.ID,
			Source:          domain.LicenseSourceAsset,
			Proveedor:       asset.Licencia.Proveedor,
			Cuenta:          asset.Licencia.Cuenta,
			TipoLicencia:    asset.Licencia.TipoLicencia,
			FechaCompra:     &fecha,
			Sucursal:        asset.Sucursal,
			CentroCosto:     asset.CentroCosto,
			AsignadoPara:    assignee,
			FechaAsignacion: assignedAt,
			ActivoID:        asset.ID,
			Notas:           asset.Notas,
			CreatedAt:       asset.CreatedAt,
			UpdatedAt:       asset.UpdatedAt,
		})
	}

	matched := []domain.LicenseView{}
	for _, view := range views {
		switch {
		case !matchesContains(view.Cuenta, filter.Cuenta),
			!matchesContains(view.AsignadoPara, filter.AsignadoPara),
			!matchesContains(view.Sucursal, filter.Sucursal),
			!matchesExact(view.Proveedor, filter.Proveedor),
			!matchesExact(view.TipoLicencia, filter.TipoLicencia),
			!matchesRange(view.FechaCompra, filter.CompraDesde, filter.CompraHasta),
			!matchesRange(view.FechaAsignacion, filter.AsignacionDesde, filter.AsignacionHasta):
			continue
		}
		matched = append(matched, view)
	}
	sortByCreatedDesc(matched,
		func(v domain.LicenseView) time.Time { return v.CreatedAt },
		func(v domain.LicenseView) string { return v.ID })
	return page(matched, filter.Limit, filter.Skip), len(matched), nil
}
