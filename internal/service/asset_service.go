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

// AssetService handles asset creation, lookup and deletion. Assignment and
// descriptive edits live in AssignmentService.
type AssetService struct {
	tx                   persistence.Transactor
	assets               repository.AssetRepository
	ledger     *LedgerService
	catalog    catalogCheck
	dispatcher events.Dispatcher
	now        func() time.Time
}

// AssetDependencies bundles collaborators.
type AssetDependencies struct {
	Tx                   persistence.Transactor
	AssetRepo            repository.AssetRepository
	Ledger               *LedgerService
	Specifications       *SpecificationService
	RequireSpecification bool
	Dispatcher           events.Dispatcher
	Clock                func() time.Time
}

// AssetCreateInput describes a new asset. An assignee given here is recorded
// as the first ledger movement.
type AssetCreateInput struct {
	Categoria       string
	Marca           string
	Modelo          string
	NumeroSerie     string
	NumeroFactura   string
	FechaCompra     *time.Time
	Detalles        string
	Sucursal        string
	CentroCosto     string
	Notas           string
	Licencia        *domain.EmbeddedLicense
	AsignadoPara    string
	AsignadoPor     string
	FechaAsignacion *time.Time
}

// AssetQuery describes asset listing filters.
type AssetQuery struct {
	Categoria       *string
	Marca           *string
	AsignadoPara    *string
	Sucursal        *string
	SinAsignar      bool
	CompraDesde     *time.Time
	CompraHasta     *time.Time
	AsignacionDesde *time.Time
	AsignacionHasta *time.Time
	Limit           int
	Skip            int
}

// NewAssetService constructs the service.
func NewAssetService(deps AssetDependencies) *AssetService {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &AssetService{
		tx:         deps.Tx,
		assets:     deps.AssetRepo,
		ledger:     deps.Ledger,
		catalog:    catalogCheck{specs: deps.Specifications, required: deps.RequireSpecification},
		dispatcher: deps.Dispatcher,
		now:        clock,
	}
}

// CreateAsset validates input, fills category and brand from the catalog and
// stores the asset together with its ledger.
func (s *AssetService) CreateAsset(ctx context.Context, actor domain.Actor, input AssetCreateInput) (*domain.Asset, *domain.Ledger, error) {
	asset := &domain.Asset{
		Categoria:     strings.TrimSpace(input.Categoria),
		Marca:         strings.TrimSpace(input.Marca),
		Modelo:        strings.TrimSpace(input.Modelo),
		NumeroSerie:   strings.TrimSpace(input.NumeroSerie),
		NumeroFactura: strings.TrimSpace(input.NumeroFactura),
		Detalles:      strings.TrimSpace(input.Detalles),
		Sucursal:      strings.TrimSpace(input.Sucursal),
		CentroCosto:   strings.TrimSpace(input.CentroCosto),
		Notas:         strings.TrimSpace(input.Notas),
		Licencia:      input.Licencia,
	}
	if input.FechaCompra != nil {
		asset.FechaCompra = *input.FechaCompra
	}

	if err := s.catalog.apply(ctx, asset); err != nil {
		return nil, nil, err
	}
	if err := validateAssetFields(asset); err != nil {
		return nil, nil, err
	}

	assignee := strings.TrimSpace(input.AsignadoPara)
	var movement *domain.Movement
	if assignee != "" {
		assigner := strings.TrimSpace(input.AsignadoPor)
		if assigner == "" {
			assigner = actor.Name
		}
		at := s.now()
		if input.FechaAsignacion != nil && !input.FechaAsignacion.IsZero() {
			at = *input.FechaAsignacion
		}
		asset.AsignadoPara = assignee
		asset.AsignadoPor = assigner
		asset.FechaAsignacion = &at
		movement = &domain.Movement{Nombre: assignee, Fecha: at, Por: assigner, Accion: domain.MovementAssigned}
	}

	var ledger *domain.Ledger
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.assets.Create(ctx, asset); err != nil {
			return mapRepoError(err, "asset", map[string]any{"numeroSerie": asset.NumeroSerie})
		}
		var err error
		if movement != nil {
			ledger, err = s.ledger.RecordAssignment(ctx, asset.ID, domain.LedgerKindAsset, asset.Snapshot(), *movement)
		} else {
			ledger, err = s.ledger.Ensure(ctx, asset.ID, domain.LedgerKindAsset, asset.Snapshot())
		}
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	publish(ctx, s.dispatcher, s.now, events.Event{
		Type:      events.EventAssetCreated,
		SubjectID: asset.ID,
		Actor:     events.ActorFrom(actor),
		Payload:   events.RecordPayload{Categoria: asset.Categoria, Modelo: asset.Modelo, Changed: true},
	})
	return asset, ledger, nil
}

// catalogCheck fills an asset's category and brand from the specification
// catalog entry for its modelo. When required, a modelo missing from the
// catalog is rejected.
type catalogCheck struct {
	specs    *SpecificationService
	required bool
}

func (c catalogCheck) apply(ctx context.Context, asset *domain.Asset) error {
	if c.specs == nil || asset.Modelo == "" {
		return nil
	}
	spec, err := c.specs.LookupByModelo(ctx, asset.Modelo)
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeNotFound) {
			if c.required {
				return apperrors.NewValidationError("modelo is not registered in the specification catalog", map[string]any{"modelo": asset.Modelo})
			}
			return nil
		}
		return err
	}
	if spec.Categoria != "" {
		asset.Categoria = spec.Categoria
	}
	if spec.Marca != "" {
		asset.Marca = spec.Marca
	}
	return nil
}

// GetAsset fetches one asset.
func (s *AssetService) GetAsset(ctx context.Context, id string) (*domain.Asset, error) {
	asset, err := s.assets.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "asset", map[string]any{"id": id})
	}
	return asset, nil
}

// ListAssets returns a page of assets, newest first, and the total count.
func (s *AssetService) ListAssets(ctx context.Context, query AssetQuery) ([]domain.Asset, int, error) {
	page, err := NormalizePage(query.Limit, query.Skip)
	if err != nil {
		return nil, 0, err
	}
	assets, total, err := s.assets.List(ctx, repository.AssetFilter{
		Categoria:       query.Categoria,
		Marca:           query.Marca,
		AsignadoPara:    query.AsignadoPara,
		Sucursal:        query.Sucursal,
		SinAsignar:      query.SinAsignar,
		CompraDesde:     query.CompraDesde,
		CompraHasta:     query.CompraHasta,
		AsignacionDesde: query.AsignacionDesde,
		AsignacionHasta: query.AsignacionHasta,
		Limit:           page.Limit,
		Skip:            page.Skip,
	})
	if err != nil {
		return nil, 0, mapRepoError(err, "asset", nil)
	}
	return assets, total, nil
}

// History returns the asset's ledger, empty when it was never assigned.
func (s *AssetService) History(ctx context.Context, id string) (*domain.Ledger, error) {
	return s.ledger.Get(ctx, id, domain.LedgerKindAsset)
}

// DeleteAsset removes the asset and its ledger together.
func (s *AssetService) DeleteAsset(ctx context.Context, actor domain.Actor, id string) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.assets.Delete(ctx, id); err != nil {
			return mapRepoError(err, "asset", map[string]any{"id": id})
		}
		return s.ledger.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	publish(ctx, s.dispatcher, s.now, events.Event{
		Type:      events.EventAssetDeleted,
		SubjectID: id,
		Actor:     events.ActorFrom(actor),
	})
	return nil
}

func validateAssetFields(asset *domain.Asset) error {
	var missing []string
	if asset.Marca == "" {
		missing = append(missing, "marca")
	}
	if asset.Modelo == "" {
		missing = append(missing, "modelo")
	}
	if asset.NumeroSerie == "" {
		missing = append(missing, "numeroSerie")
	}
	if asset.FechaCompra.IsZero() {
		missing = append(missing, "fechaCompra")
	}
	if len(missing) > 0 {
		return apperrors.NewMissingFields(missing)
	}
	if lic := asset.Licencia; lic != nil && lic.Proveedor != "" {
		if err := domain.CheckProviderType(domain.LicenseProvider(lic.Proveedor), lic.TipoLicencia); err != nil {
			return apperrors.NewValidationError(err.Error(), map[string]any{"proveedor": lic.Proveedor, "tipoLicencia": lic.TipoLicencia})
		}
	}
	return nil
}
