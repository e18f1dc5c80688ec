package service

import (
	"context"
	"strings"
	"time"

	"github.com/spec-kit/asset-desk/internal/domain"
	"github.com/spec-kit/asset-desk/internal/events"
	"github.com/spec-kit/asset-desk/internal/persistence"
	"github.com/spec-kit/asset-desk/internal/repository"
	apperrors "github.com/spec-kit/asset-desk/pkg/util/errorutil"
)

// AssignmentService changes who holds an asset or license and keeps the
// record and its ledger consistent. Each operation runs in one transaction
// and the row write is guarded by the version read inside it.
type AssignmentService struct {
	tx         persistence.Transactor
	assets     repository.AssetRepository
	licenses   repository.LicenseRepository
	ledger     *LedgerService
	catalog    catalogCheck
	dispatcher events.Dispatcher
	now        func() time.Time
}

// AssignmentDependencies bundles collaborators. Specifications and
// RequireSpecification apply the catalog rules of asset creation to edits
// that change modelo.
type AssignmentDependencies struct {
	Tx                   persistence.Transactor
	AssetRepo            repository.AssetRepository
	LicenseRepo          repository.LicenseRepository
	Ledger               *LedgerService
	Specifications       *SpecificationService
	RequireSpecification bool
	Dispatcher           events.Dispatcher
	Clock                func() time.Time
}

// AssignInput describes one assignment.
type AssignInput struct {
	Assignee        string
	Assigner        string
	AssignedAt      *time.Time
	Observacion     string
	ExpectedVersion *int64
}

// AssetEditInput carries descriptive asset fields. The assignment fields are
// present only so an edit that tries to set them can be rejected.
type AssetEditInput struct {
	Categoria       *string
	Marca           *string
	Modelo          *string
	NumeroSerie     *string
	NumeroFactura   *string
	FechaCompra     *time.Time
	Detalles        *string
	Sucursal        *string
	CentroCosto     *string
	Notas           *string
	Licencia        *domain.EmbeddedLicense
	AsignadoPara    *string
	AsignadoPor     *string
	FechaAsignacion *time.Time
	ExpectedVersion *int64
}

// LicenseEditInput carries descriptive license fields.
type LicenseEditInput struct {
	Proveedor       *string
	Cuenta          *string
	TipoLicencia    *string
	FechaCompra     *time.Time
	Sucursal        *string
	CentroCosto     *string
	Notas           *string
	AsignadoPara    *string
	AsignadoPor     *string
	FechaAsignacion *time.Time
	ExpectedVersion *int64
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &AssignmentService{
		tx:         deps.Tx,
		assets:     deps.AssetRepo,
		licenses:   deps.LicenseRepo,
		ledger:     deps.Ledger,
		catalog:    catalogCheck{specs: deps.Specifications, required: deps.RequireSpecification},
		dispatcher: deps.Dispatcher,
		now:        clock,
	}
}

// AssignAsset makes input.Assignee the current holder of the asset and
// appends the movement to its ledger.
func (s *AssignmentService) AssignAsset(ctx context.Context, actor domain.Actor, assetID string, input AssignInput) (*domain.Asset, *domain.Ledger, error) {
	assignedAt, err := s.normalizeAssign(&input)
	if err != nil {
		return nil, nil, err
	}

	var (
		asset  *domain.Asset
		ledger *domain.Ledger
		prev   string
	)
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.assets.GetByID(ctx, assetID)
		if err != nil {
			return mapRepoError(err, "asset", map[string]any{"id": assetID})
		}
		if err := checkVersion("asset", assetID, current.Version, input.ExpectedVersion); err != nil {
			return err
		}
		prev = current.AsignadoPara

		asset, err = s.assets.UpdateAssignment(ctx, assetID, repository.AssetAssignment{
			AsignadoPara:    input.Assignee,
			AsignadoPor:     input.Assigner,
			FechaAsignacion: assignedAt,
		}, current.Version)
		if err != nil {
			return mapRepoError(err, "asset", map[string]any{"id": assetID})
		}

		ledger, err = s.ledger.RecordAssignment(ctx, assetID, domain.LedgerKindAsset, asset.Snapshot(),
			newMovement(prev, input, assignedAt))
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	s.publishAssigned(ctx, actor, events.EventAssetAssigned, assetID, prev, ledger)
	return asset, ledger, nil
}

// AssignLicense is AssignAsset for standalone licenses.
func (s *AssignmentService) AssignLicense(ctx context.Context, actor domain.Actor, licenseID string, input AssignInput) (*domain.License, *domain.Ledger, error) {
	assignedAt, err := s.normalizeAssign(&input)
	if err != nil {
		return nil, nil, err
	}

	var (
		license *domain.License
		ledger  *domain.Ledger
		prev    string
	)
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.licenses.GetByID(ctx, licenseID)
		if err != nil {
			return mapRepoError(err, "license", map[string]any{"id": licenseID})
		}
		if err := checkVersion("license", licenseID, current.Version, input.ExpectedVersion); err != nil {
			return err
		}
		prev = current.AsignadoPara

		license, err = s.licenses.UpdateAssignment(ctx, licenseID, repository.LicenseAssignment{
			AsignadoPara:    input.Assignee,
			AsignadoPor:     input.Assigner,
			FechaAsignacion: assignedAt,
		}, current.Version)
		if err != nil {
			return mapRepoError(err, "license", map[string]any{"id": licenseID})
		}

		ledger, err = s.ledger.RecordAssignment(ctx, licenseID, domain.LedgerKindLicense, license.Snapshot(),
			newMovement(prev, input, assignedAt))
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	s.publishAssigned(ctx, actor, events.EventLicenseAssigned, licenseID, prev, ledger)
	return license, ledger, nil
}

// EditAsset changes descriptive asset fields and refreshes the ledger
// snapshot. The movement sequence is never touched. A no-op edit writes
// nothing, not even the snapshot, since the guarded row write is what
// serializes concurrent editors.
func (s *AssignmentService) EditAsset(ctx context.Context, actor domain.Actor, assetID string, input AssetEditInput) (*domain.Asset, error) {
	if input.AsignadoPara != nil || input.AsignadoPor != nil || input.FechaAsignacion != nil {
		return nil, assignmentFieldsError()
	}

	var (
		asset   *domain.Asset
		changed bool
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		asset, err = s.assets.GetByID(ctx, assetID)
		if err != nil {
			return mapRepoError(err, "asset", map[string]any{"id": assetID})
		}
		if err := checkVersion("asset", assetID, asset.Version, input.ExpectedVersion); err != nil {
			return err
		}
		if input.Licencia != nil && embeddedHolderChanged(asset.Licencia, input.Licencia) {
			return apperrors.NewValidationError("the license holder can only change through assign", map[string]any{
				"fields": []string{"licencia.usuarioNombre", "licencia.asignadaEn"},
			})
		}

		previousModelo := asset.Modelo
		changed = applyAssetEdit(asset, input)
		if asset.Modelo != previousModelo {
			if err := s.catalog.apply(ctx, asset); err != nil {
				return err
			}
		}
		if err := validateAssetFields(asset); err != nil {
			return err
		}
		if !changed {
			return nil
		}
		if err := s.assets.UpdateDetails(ctx, asset, asset.Version); err != nil {
			return mapRepoError(err, "asset", map[string]any{"id": assetID})
		}
		return s.ledger.SyncSnapshot(ctx, assetID, domain.LedgerKindAsset, asset.Snapshot())
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.dispatcher, s.now, events.Event{
		Type:      events.EventAssetUpdated,
		SubjectID: assetID,
		Actor:     events.ActorFrom(actor),
		Payload:   events.RecordPayload{Categoria: asset.Categoria, Modelo: asset.Modelo, Changed: changed},
	})
	return asset, nil
}

// EditLicense changes descriptive license fields, re-checking the provider
// table, and refreshes the ledger snapshot.
func (s *AssignmentService) EditLicense(ctx context.Context, actor domain.Actor, licenseID string, input LicenseEditInput) (*domain.License, error) {
	if input.AsignadoPara != nil || input.AsignadoPor != nil || input.FechaAsignacion != nil {
		return nil, assignmentFieldsError()
	}

	var (
		license *domain.License
		changed bool
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		license, err = s.licenses.GetByID(ctx, licenseID)
		if err != nil {
			return mapRepoError(err, "license", map[string]any{"id": licenseID})
		}
		if err := checkVersion("license", licenseID, license.Version, input.ExpectedVersion); err != nil {
			return err
		}

		changed = applyLicenseEdit(license, input)
		if err := validateLicenseFields(license); err != nil {
			return err
		}
		if !changed {
			return nil
		}
		if err := s.licenses.UpdateDetails(ctx, license, license.Version); err != nil {
			return mapRepoError(err, "license", map[string]any{"cuenta": license.Cuenta, "tipoLicencia": license.TipoLicencia})
		}
		return s.ledger.SyncSnapshot(ctx, licenseID, domain.LedgerKindLicense, license.Snapshot())
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.dispatcher, s.now, events.Event{
		Type:      events.EventLicenseUpdated,
		SubjectID: licenseID,
		Actor:     events.ActorFrom(actor),
		Payload:   events.RecordPayload{Categoria: domain.LicenseCategory, Cuenta: license.Cuenta, Changed: changed},
	})
	return license, nil
}

func (s *AssignmentService) normalizeAssign(input *AssignInput) (time.Time, error) {
	input.Assignee = strings.TrimSpace(input.Assignee)
	input.Assigner = strings.TrimSpace(input.Assigner)
	input.Observacion = strings.TrimSpace(input.Observacion)

	var missing []string
	if input.Assignee == "" {
		missing = append(missing, "asignadoPara")
	}
	if input.Assigner == "" {
		missing = append(missing, "asignadoPor")
	}
	if len(missing) > 0 {
		return time.Time{}, apperrors.NewMissingFields(missing)
	}
	if input.AssignedAt != nil && !input.AssignedAt.IsZero() {
		return *input.AssignedAt, nil
	}
	return s.now(), nil
}

func (s *AssignmentService) publishAssigned(ctx context.Context, actor domain.Actor, eventType events.EventType, id, prev string, ledger *domain.Ledger) {
	last := ledger.Asignaciones[len(ledger.Asignaciones)-1]
	publish(ctx, s.dispatcher, s.now, events.Event{
		Type:      eventType,
		SubjectID: id,
		Actor:     events.ActorFrom(actor),
		Payload: events.AssignedPayload{
			AsignadoPara: last.Nombre,
			Desde:        prev,
			Accion:       last.Accion,
			Movimientos:  len(ledger.Asignaciones),
		},
	})
}

func newMovement(prev string, input AssignInput, at time.Time) domain.Movement {
	movement := domain.Movement{
		Nombre:      input.Assignee,
		Fecha:       at,
		Por:         input.Assigner,
		Accion:      domain.MovementAssigned,
		Observacion: input.Observacion,
	}
	if prev != "" {
		movement.Accion = domain.MovementReassigned
		movement.Desde = prev
	}
	return movement
}

func checkVersion(resource, id string, current int64, expected *int64) error {
	if expected == nil || *expected == current {
		return nil
	}
	return apperrors.NewConflict(resource+" was modified concurrently", map[string]any{
		"id":              id,
		"version":         current,
		"expectedVersion": *expected,
	})
}

func assignmentFieldsError() error {
	return apperrors.NewValidationError("assignment fields can only change through assign", map[string]any{
		"fields": []string{"asignadoPara", "asignadoPor", "fechaAsignacion"},
	})
}

func setString(dst *string, src *string) bool {
	if src == nil {
		return false
	}
	value := strings.TrimSpace(*src)
	if *dst == value {
		return false
	}
	*dst = value
	return true
}

func applyAssetEdit(asset *domain.Asset, input AssetEditInput) bool {
	changed := false
	for _, field := range []struct {
		dst *string
		src *string
	}{
		{&asset.Categoria, input.Categoria},
		{&asset.Marca, input.Marca},
		{&asset.Modelo, input.Modelo},
		{&asset.NumeroSerie, input.NumeroSerie},
		{&asset.NumeroFactura, input.NumeroFactura},
		{&asset.Detalles, input.Detalles},
		{&asset.Sucursal, input.Sucursal},
		{&asset.CentroCosto, input.CentroCosto},
		{&asset.Notas, input.Notas},
	} {
		if setString(field.dst, field.src) {
			changed = true
		}
	}
	if input.FechaCompra != nil && !input.FechaCompra.Equal(asset.FechaCompra) {
		asset.FechaCompra = *input.FechaCompra
		changed = true
	}
	if input.Licencia != nil && !sameEmbeddedLicense(asset.Licencia, input.Licencia) {
		lic := *input.Licencia
		asset.Licencia = &lic
		changed = true
	}
	return changed
}

func applyLicenseEdit(license *domain.License, input LicenseEditInput) bool {
	changed := false
	proveedor := string(license.Proveedor)
	for _, field := range []struct {
		dst *string
		src *string
	}{
		{&proveedor, input.Proveedor},
		{&license.Cuenta, input.Cuenta},
		{&license.TipoLicencia, input.TipoLicencia},
		{&license.Sucursal, input.Sucursal},
		{&license.CentroCosto, input.CentroCosto},
		{&license.Notas, input.Notas},
	} {
		if setString(field.dst, field.src) {
			changed = true
		}
	}
	license.Proveedor = domain.LicenseProvider(proveedor)
	if input.FechaCompra != nil && !input.FechaCompra.Equal(license.FechaCompra) {
		license.FechaCompra = *input.FechaCompra
		changed = true
	}
	return changed
}

func sameEmbeddedLicense(a, b *domain.EmbeddedLicense) bool {
	if a == nil || b == nil {
		return a == b
	}
	sameTime := (a.AsignadaEn == nil && b.AsignadaEn == nil) ||
		(a.AsignadaEn != nil && b.AsignadaEn != nil && a.AsignadaEn.Equal(*b.AsignadaEn))
	return sameTime &&
		a.Proveedor == b.Proveedor &&
		a.Cuenta == b.Cuenta &&
		a.TipoLicencia == b.TipoLicencia &&
		a.UsuarioNombre == b.UsuarioNombre
}

// embeddedHolderChanged reports whether next names a different holder or
// assignment date than the stored embedded license. The merged license series
// reads the holder from there, so it is an assignment field.
func embeddedHolderChanged(current, next *domain.EmbeddedLicense) bool {
	var (
		holder string
		at     *time.Time
	)
	if current != nil {
		holder, at = current.UsuarioNombre, current.AsignadaEn
	}
	if strings.TrimSpace(next.UsuarioNombre) != strings.TrimSpace(holder) {
		return true
	}
	switch {
	case at == nil && next.AsignadaEn == nil:
		return false
	case at == nil || next.AsignadaEn == nil:
		return true
	}
	return !at.Equal(*next.AsignadaEn)
}
