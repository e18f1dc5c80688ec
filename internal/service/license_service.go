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

// LicenseService handles standalone licenses and the merged license series.
type LicenseService struct {
	tx         persistence.Transactor
	licenses   repository.LicenseRepository
	ledger     *LedgerService
	dispatcher events.Dispatcher
	now        func() time.Time
}

// LicenseDependencies bundles collaborators.
type LicenseDependencies struct {
	Tx          persistence.Transactor
	LicenseRepo repository.LicenseRepository
	Ledger      *LedgerService
	Dispatcher  events.Dispatcher
	Clock       func() time.Time
}

// LicenseCreateInput describes a new standalone license.
type LicenseCreateInput struct {
	Proveedor       string
	Cuenta          string
	TipoLicencia    string
	FechaCompra     *time.Time
	Sucursal        string
	CentroCosto     string
	Notas           string
	AsignadoPara    string
	AsignadoPor     string
	FechaAsignacion *time.Time
}

// LicenseQuery describes filters over the merged series.
type LicenseQuery struct {
	Cuenta          *string
	AsignadoPara    *string
	Sucursal        *string
	Proveedor       *string
	TipoLicencia    *string
	CompraDesde     *time.Time
	CompraHasta     *time.Time
	AsignacionDesde *time.Time
	AsignacionHasta *time.Time
	Limit           int
	Skip            int
}

// NewLicenseService constructs the service.
func NewLicenseService(deps LicenseDependencies) *LicenseService {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &LicenseService{
		tx:         deps.Tx,
		licenses:   deps.LicenseRepo,
		ledger:     deps.Ledger,
		dispatcher: deps.Dispatcher,
		now:        clock,
	}
}

type pendingLicense struct {
	license  *domain.License
	movement *domain.Movement
}

// CreateLicenses validates and stores one or more licenses in a single
// transaction. Any invalid or duplicate entry rejects the whole batch.
func (s *LicenseService) CreateLicenses(ctx context.Context, actor domain.Actor, inputs []LicenseCreateInput) ([]domain.License, error) {
	if len(inputs) == 0 {
		return nil, apperrors.NewValidationError("at least one license is required", nil)
	}

	pending := make([]pendingLicense, 0, len(inputs))
	seen := make(map[string]int, len(inputs))
	for i, input := range inputs {
		item, err := s.buildLicense(actor, input)
		if err != nil {
			return nil, withIndex(err, i, len(inputs))
		}
		key := item.license.Cuenta + "\x00" + item.license.TipoLicencia
		if first, dup := seen[key]; dup {
			return nil, apperrors.NewDuplicateKey("license already exists", map[string]any{
				"cuenta":       item.license.Cuenta,
				"tipoLicencia": item.license.TipoLicencia,
				"index":        i,
				"duplicateOf":  first,
			})
		}
		seen[key] = i
		pending = append(pending, item)
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		for _, item := range pending {
			lic := item.license
			if err := s.licenses.Create(ctx, lic); err != nil {
				return mapRepoError(err, "license", map[string]any{"cuenta": lic.Cuenta, "tipoLicencia": lic.TipoLicencia})
			}
			var err error
			if item.movement != nil {
				_, err = s.ledger.RecordAssignment(ctx, lic.ID, domain.LedgerKindLicense, lic.Snapshot(), *item.movement)
			} else {
				_, err = s.ledger.Ensure(ctx, lic.ID, domain.LedgerKindLicense, lic.Snapshot())
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	created := make([]domain.License, 0, len(pending))
	for _, item := range pending {
		created = append(created, *item.license)
		publish(ctx, s.dispatcher, s.now, events.Event{
			Type:      events.EventLicenseCreated,
			SubjectID: item.license.ID,
			Actor:     events.ActorFrom(actor),
			Payload:   events.RecordPayload{Categoria: domain.LicenseCategory, Cuenta: item.license.Cuenta, Changed: true},
		})
	}
	return created, nil
}

func (s *LicenseService) buildLicense(actor domain.Actor, input LicenseCreateInput) (pendingLicense, error) {
	license := &domain.License{
		Proveedor:    domain.LicenseProvider(strings.TrimSpace(input.Proveedor)),
		Cuenta:       strings.TrimSpace(input.Cuenta),
		TipoLicencia: strings.TrimSpace(input.TipoLicencia),
		Sucursal:     strings.TrimSpace(input.Sucursal),
		CentroCosto:  strings.TrimSpace(input.CentroCosto),
		Notas:        strings.TrimSpace(input.Notas),
	}
	if input.FechaCompra != nil {
		license.FechaCompra = *input.FechaCompra
	}
	if err := validateLicenseFields(license); err != nil {
		return pendingLicense{}, err
	}

	item := pendingLicense{license: license}
	if assignee := strings.TrimSpace(input.AsignadoPara); assignee != "" {
		assigner := strings.TrimSpace(input.AsignadoPor)
		if assigner == "" {
			assigner = actor.Name
		}
		at := s.now()
		if input.FechaAsignacion != nil && !input.FechaAsignacion.IsZero() {
			at = *input.FechaAsignacion
		}
		license.AsignadoPara = assignee
		license.AsignadoPor = assigner
		license.FechaAsignacion = &at
		item.movement = &domain.Movement{Nombre: assignee, Fecha: at, Por: assigner, Accion: domain.MovementAssigned}
	}
	return item, nil
}

// GetLicense fetches a standalone license.
func (s *LicenseService) GetLicense(ctx context.Context, id string) (*domain.License, error) {
	license, err := s.licenses.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "license", map[string]any{"id": id})
	}
	return license, nil
}

// ListLicenses returns a page of the merged series, newest first, and the
// total count.
func (s *LicenseService) ListLicenses(ctx context.Context, query LicenseQuery) ([]domain.LicenseView, int, error) {
	page, err := NormalizePage(query.Limit, query.Skip)
	if err != nil {
		return nil, 0, err
	}
	filter := licenseFilter(query)
	filter.Limit, filter.Skip = page.Limit, page.Skip

	views, total, err := s.licenses.ListMerged(ctx, filter)
	if err != nil {
		return nil, 0, mapRepoError(err, "license", nil)
	}
	return views, total, nil
}

// Stats aggregates the whole merged series matching query, ignoring paging.
func (s *LicenseService) Stats(ctx context.Context, query LicenseQuery) (domain.LicenseStats, error) {
	views, _, err := s.licenses.ListMerged(ctx, licenseFilter(query))
	if err != nil {
		return domain.LicenseStats{}, mapRepoError(err, "license", nil)
	}
	return ComputeLicenseStats(views), nil
}

// ComputeLicenseStats counts licenses by availability, type and provider.
func ComputeLicenseStats(views []domain.LicenseView) domain.LicenseStats {
	stats := domain.LicenseStats{
		PorTipo:      map[string]int{},
		PorProveedor: map[string]int{},
	}
	for _, view := range views {
		stats.Total++
		if strings.EqualFold(strings.TrimSpace(view.Cuenta), domain.AvailableAccount) {
			stats.Disponibles++
		} else {
			stats.Ocupadas++
		}
		stats.PorTipo[labelOr(view.TipoLicencia)]++
		stats.PorProveedor[labelOr(view.Proveedor)]++
	}
	return stats
}

func labelOr(value string) string {
	if strings.TrimSpace(value) == "" {
		return "Sin especificar"
	}
	return value
}

// History returns the license ledger, empty when it was never assigned.
func (s *LicenseService) History(ctx context.Context, id string) (*domain.Ledger, error) {
	return s.ledger.Get(ctx, id, domain.LedgerKindLicense)
}

// DeleteLicense removes the license and its ledger together.
func (s *LicenseService) DeleteLicense(ctx context.Context, actor domain.Actor, id string) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.licenses.Delete(ctx, id); err != nil {
			return mapRepoError(err, "license", map[string]any{"id": id})
		}
		return s.ledger.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	publish(ctx, s.dispatcher, s.now, events.Event{
		Type:      events.EventLicenseDeleted,
		SubjectID: id,
		Actor:     events.ActorFrom(actor),
	})
	return nil
}

func licenseFilter(query LicenseQuery) repository.LicenseFilter {
	return repository.LicenseFilter{
		Cuenta:          query.Cuenta,
		AsignadoPara:    query.AsignadoPara,
		Sucursal:        query.Sucursal,
		Proveedor:       query.Proveedor,
		TipoLicencia:    query.TipoLicencia,
		CompraDesde:     query.CompraDesde,
		CompraHasta:     query.CompraHasta,
		AsignacionDesde: query.AsignacionDesde,
		AsignacionHasta: query.AsignacionHasta,
	}
}

func validateLicenseFields(license *domain.License) error {
	var missing []string
	if license.Proveedor == "" {
		missing = append(missing, "proveedor")
	}
	if license.Cuenta == "" {
		missing = append(missing, "cuenta")
	}
	if license.TipoLicencia == "" {
		missing = append(missing, "tipoLicencia")
	}
	if license.FechaCompra.IsZero() {
		missing = append(missing, "fechaCompra")
	}
	if len(missing) > 0 {
		return apperrors.NewMissingFields(missing)
	}
	if err := domain.CheckProviderType(license.Proveedor, license.TipoLicencia); err != nil {
		return apperrors.NewValidationError(err.Error(), map[string]any{
			"proveedor":    license.Proveedor,
			"tipoLicencia": license.TipoLicencia,
			"allowed":      domain.LicenseTypes(license.Proveedor),
		})
	}
	return nil
}

// withIndex tags a batch validation error with the offending position.
func withIndex(err error, index, size int) error {
	if size <= 1 {
		return err
	}
	domainErr := apperrors.ToDomainError(err)
	details := map[string]any{"index": index}
	for k, v := range domainErr.Details {
		details[k] = v
	}
	return apperrors.NewDomainError(domainErr.Code, domainErr.Message, domainErr.HTTPStatus, details)
}
