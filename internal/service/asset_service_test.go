package service

import (
	"context"
	"testing"

	"github.com/spec-kit/asset-desk/internal/domain"
	"github.com/spec-kit/asset-desk/internal/events"
	apperrors "github.com/spec-kit/asset-desk/pkg/util/errorutil"
)

func TestCreateAssetRequiredFields(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.assets.CreateAsset(context.Background(), admin, AssetCreateInput{Marca: "Dell", Modelo: "X1"})
	expectCode(t, err, apperrors.CodeValidation)
	if err.(*apperrors.DomainError).Details["fields"] == nil {
		t.Fatalf("missing fields must be listed")
	}
}

func TestCreateAssetRejectsEmbeddedLicenseMismatch(t *testing.T) {
	env := newTestEnv(t)
	input := dellX1()
	input.Categoria = domain.LicenseCategory
	input.Licencia = &domain.EmbeddedLicense{Proveedor: "Office", TipoLicencia: "Profesional"}

	_, _, err := env.assets.CreateAsset(context.Background(), admin, input)
	expectCode(t, err, apperrors.CodeValidation)
}

func TestCreateAssetWithoutAssigneeStartsEmptyLedger(t *testing.T) {
	env := newTestEnv(t)

	asset, ledger, err := env.assets.CreateAsset(context.Background(), admin, dellX1())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if asset.ID == "" || asset.AsignadoPara != "" {
		t.Fatalf("unexpected asset %+v", asset)
	}
	if len(ledger.Asignaciones) != 0 || ledger.Snapshot.NumeroSerie != "SN1" || ledger.Tipo != domain.LedgerKindAsset {
		t.Fatalf("unexpected ledger %+v", ledger)
	}
	if types := env.dispatcher.types(); len(types) != 1 || types[0] != events.EventAssetCreated {
		t.Fatalf("unexpected events %v", types)
	}
}

func TestCreateAssetWithAssigneeRecordsFirstMovement(t *testing.T) {
	env := newTestEnv(t)
	input := dellX1()
	input.AsignadoPara = "Ana"

	asset, ledger, err := env.assets.CreateAsset(context.Background(), admin, input)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if asset.AsignadoPor != admin.Name || asset.FechaAsignacion == nil {
		t.Fatalf("assigner and date must default, got %+v", asset)
	}
	if len(ledger.Asignaciones) != 1 || ledger.Asignaciones[0].Nombre != "Ana" || ledger.Asignaciones[0].Accion != domain.MovementAssigned {
		t.Fatalf("unexpected ledger %+v", ledger)
	}
}

func TestCreateAssetPrefillsFromCatalog(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	if _, err := env.specs.Create(ctx, SpecificationInput{Modelo: str("X1"), Categoria: str("notebook"), Marca: str("Dell")}); err != nil {
		t.Fatalf("spec: %v", err)
	}

	input := dellX1()
	input.Categoria = "desktop"
	input.Marca = "Otra"
	asset, _, err := env.assets.CreateAsset(ctx, admin, input)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if asset.Categoria != "notebook" || asset.Marca != "Dell" {
		t.Fatalf("catalog values must win, got %q/%q", asset.Categoria, asset.Marca)
	}
}

func TestCreateAssetRequiresCatalogEntryWhenConfigured(t *testing.T) {
	env := newTestEnv(t, withRequiredSpecification())
	ctx := context.Background()

	_, _, err := env.assets.CreateAsset(ctx, admin, dellX1())
	expectCode(t, err, apperrors.CodeValidation)

	if _, err := env.specs.Create(ctx, SpecificationInput{Modelo: str("X1")}); err != nil {
		t.Fatalf("spec: %v", err)
	}
	if _, _, err := env.assets.CreateAsset(ctx, admin, dellX1()); err != nil {
		t.Fatalf("create after registering modelo: %v", err)
	}
}

func TestHistoryOfUnassignedOrUnknownAsset(t *testing.T) {
	env := newTestEnv(t)

	ledger, err := env.assets.History(context.Background(), "nope")
	if err != nil {
		t.Fatalf("history must not fail: %v", err)
	}
	if ledger.ActivoID != "nope" || len(ledger.Asignaciones) != 0 || ledger.Asignaciones == nil {
		t.Fatalf("expected empty ledger, got %+v", ledger)
	}
}

func TestDeleteAssetRemovesLedger(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	asset := env.createAsset(t, dellX1())
	if _, _, err := env.assignment.AssignAsset(ctx, admin, asset.ID, AssignInput{Assignee: "Ana", Assigner: "Admin"}); err != nil {
		t.Fatalf("assign: %v", err)
	}

	if err := env.assets.DeleteAsset(ctx, admin, asset.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err := env.assets.GetAsset(ctx, asset.ID)
	expectCode(t, err, apperrors.CodeNotFound)

	history, err := env.assets.History(ctx, asset.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history.Asignaciones) != 0 {
		t.Fatalf("ledger should be gone, got %+v", history)
	}

	err = env.assets.DeleteAsset(ctx, admin, asset.ID)
	expectCode(t, err, apperrors.CodeNotFound)
}

func TestListAssetsFilters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	dell := env.createAsset(t, dellX1())
	hp := AssetCreateInput{Marca: "HP", Modelo: "Z2", NumeroSerie: "SN2", Sucursal: "Santiago", FechaCompra: date(2023, 5, 1)}
	env.createAsset(t, hp)
	if _, _, err := env.assignment.AssignAsset(ctx, admin, dell.ID, AssignInput{Assignee: "Ana", Assigner: "Admin", AssignedAt: date(2024, 3, 1)}); err != nil {
		t.Fatalf("assign: %v", err)
	}

	all, total, err := env.assets.ListAssets(ctx, AssetQuery{})
	if err != nil || total != 2 || all[0].Marca != "HP" {
		t.Fatalf("expected newest first, got %v %d %v", all, total, err)
	}

	unassigned, total, _ := env.assets.ListAssets(ctx, AssetQuery{SinAsignar: true})
	if total != 1 || unassigned[0].Marca != "HP" {
		t.Fatalf("unexpected unassigned result %v", unassigned)
	}

	byMarca, _, _ := env.assets.ListAssets(ctx, AssetQuery{Marca: str("de")})
	if len(byMarca) != 1 || byMarca[0].ID != dell.ID {
		t.Fatalf("marca filter is a case-insensitive contains, got %v", byMarca)
	}

	bought, _, _ := env.assets.ListAssets(ctx, AssetQuery{CompraDesde: date(2023, 1, 1), CompraHasta: date(2023, 12, 31)})
	if len(bought) != 1 || bought[0].Marca != "HP" {
		t.Fatalf("unexpected purchase range result %v", bought)
	}

	assigned, _, _ := env.assets.ListAssets(ctx, AssetQuery{AsignacionDesde: date(2024, 2, 1)})
	if len(assigned) != 1 || assigned[0].ID != dell.ID {
		t.Fatalf("unexpected assignment range result %v", assigned)
	}

	paged, total, _ := env.assets.ListAssets(ctx, AssetQuery{Limit: 1, Skip: 1})
	if len(paged) != 1 || total != 2 || paged[0].ID != dell.ID {
		t.Fatalf("unexpected page %v total %d", paged, total)
	}

	_, _, err = env.assets.ListAssets(ctx, AssetQuery{Skip: -1})
	expectCode(t, err, apperrors.CodeValidation)
}
