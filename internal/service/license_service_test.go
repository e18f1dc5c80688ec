package service

import (
	"context"
	"testing"

	"github.com/spec-kit/asset-desk/internal/domain"
	apperrors "github.com/spec-kit/asset-desk/pkg/util/errorutil"
)

func sapLicense(cuenta string) LicenseCreateInput {
	return LicenseCreateInput{Proveedor: "SAP", Cuenta: cuenta, TipoLicencia: "Profesional", FechaCompra: date(2024, 1, 1)}
}

func TestCreateLicenseRejectsProviderMismatch(t *testing.T) {
	env := newTestEnv(t)
	input := sapLicense("ana@corp")
	input.TipoLicencia = "Microsoft 365 E3"

	_, err := env.licenses.CreateLicenses(context.Background(), admin, []LicenseCreateInput{input})
	expectCode(t, err, apperrors.CodeValidation)
}

func TestCreateLicensesBatchIsAllOrNothing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.licenses.CreateLicenses(ctx, admin, []LicenseCreateInput{sapLicense("a"), sapLicense("b"), sapLicense("a")})
	expectCode(t, err, apperrors.CodeDuplicateKey)
	if details := err.(*apperrors.DomainError).Details; details["index"] != 2 || details["duplicateOf"] != 0 {
		t.Fatalf("unexpected details %v", details)
	}

	bad := sapLicense("c")
	bad.FechaCompra = nil
	_, err = env.licenses.CreateLicenses(ctx, admin, []LicenseCreateInput{sapLicense("b"), bad})
	expectCode(t, err, apperrors.CodeValidation)
	if err.(*apperrors.DomainError).Details["index"] != 1 {
		t.Fatalf("batch errors must carry the index")
	}

	views, total, err := env.licenses.ListLicenses(ctx, LicenseQuery{})
	if err != nil || total != 0 || len(views) != 0 {
		t.Fatalf("rejected batches must store nothing, got %d", total)
	}
}

func TestCreateLicenseDuplicateAgainstStore(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	if _, err := env.licenses.CreateLicenses(ctx, admin, []LicenseCreateInput{sapLicense("a")}); err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err := env.licenses.CreateLicenses(ctx, admin, []LicenseCreateInput{sapLicense("b"), sapLicense("a")})
	expectCode(t, err, apperrors.CodeDuplicateKey)

	_, total, _ := env.licenses.ListLicenses(ctx, LicenseQuery{})
	if total != 1 {
		t.Fatalf("failed batch must roll back, got %d licenses", total)
	}
}

func TestCreateLicenseWithAssignee(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	input := sapLicense("ana@corp")
	input.AsignadoPara = "Ana"

	created, err := env.licenses.CreateLicenses(ctx, admin, []LicenseCreateInput{input})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	history, err := env.licenses.History(ctx, created[0].ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history.Asignaciones) != 1 || history.Asignaciones[0].Por != admin.Name || history.Tipo != domain.LedgerKindLicense {
		t.Fatalf("unexpected ledger %+v", history)
	}
}

func TestMergedSeriesIncludesAssetLicenses(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	if _, err := env.licenses.CreateLicenses(ctx, admin, []LicenseCreateInput{sapLicense("disponible")}); err != nil {
		t.Fatalf("create: %v", err)
	}

	carrier := dellX1()
	carrier.Categoria = domain.LicenseCategory
	carrier.Licencia = &domain.EmbeddedLicense{
		Proveedor: "Office", Cuenta: "beto@corp", TipoLicencia: "Microsoft 365 E3", UsuarioNombre: "Beto",
	}
	asset := env.createAsset(t, carrier)
	plain := dellX1()
	plain.NumeroSerie = "SN9"
	env.createAsset(t, plain)

	views, total, err := env.licenses.ListLicenses(ctx, LicenseQuery{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || len(views) != 2 {
		t.Fatalf("expected license and carrier asset, got %d", total)
	}
	first := views[0]
	if first.Source != domain.LicenseSourceAsset || first.ActivoID != asset.ID || first.AsignadoPara != "Beto" {
		t.Fatalf("newest view should be the carrier asset, got %+v", first)
	}
	if views[1].Source != domain.LicenseSourceStandalone {
		t.Fatalf("unexpected second view %+v", views[1])
	}

	office, total, _ := env.licenses.ListLicenses(ctx, LicenseQuery{Proveedor: str("Office")})
	if total != 1 || office[0].Cuenta != "beto@corp" {
		t.Fatalf("provider filter failed: %v", office)
	}
}

func TestLicenseStats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	inputs := []LicenseCreateInput{
		sapLicense("Disponible"),
		sapLicense("ana@corp"),
		{Proveedor: "Office", Cuenta: "beto@corp", TipoLicencia: "Microsoft 365 E3", FechaCompra: date(2024, 1, 1)},
	}
	if _, err := env.licenses.CreateLicenses(ctx, admin, inputs); err != nil {
		t.Fatalf("create: %v", err)
	}
	carrier := dellX1()
	carrier.Categoria = domain.LicenseCategory
	carrier.Licencia = &domain.EmbeddedLicense{Cuenta: "disponible"}
	env.createAsset(t, carrier)

	stats, err := env.licenses.Stats(ctx, LicenseQuery{Limit: 1})
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 4 || stats.Disponibles != 2 || stats.Ocupadas != 2 {
		t.Fatalf("unexpected counts %+v", stats)
	}
	if stats.PorTipo["Profesional"] != 2 || stats.PorTipo["Sin especificar"] != 1 {
		t.Fatalf("unexpected type counts %v", stats.PorTipo)
	}
	if stats.PorProveedor["SAP"] != 2 || stats.PorProveedor["Office"] != 1 || stats.PorProveedor["Sin especificar"] != 1 {
		t.Fatalf("unexpected provider counts %v", stats.PorProveedor)
	}
}

func TestDeleteLicense(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	created, err := env.licenses.CreateLicenses(ctx, admin, []LicenseCreateInput{sapLicense("a")})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := env.licenses.DeleteLicense(ctx, admin, created[0].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err = env.licenses.GetLicense(ctx, created[0].ID)
	expectCode(t, err, apperrors.CodeNotFound)
}
