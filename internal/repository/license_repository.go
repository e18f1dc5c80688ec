package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/spec-kit/asset-desk/internal/domain"
	"github.com/spec-kit/asset-desk/internal/persistence"
)

// LicenseFilter captures search parameters over the merged license series.
type LicenseFilter struct {
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

// LicenseAssignment is the set of fields only the assignment flow may write.
type LicenseAssignment struct {
	AsignadoPara    string
	AsignadoPor     string
	FechaAsignacion time.Time
}

// LicenseRepository encapsulates standalone license persistence and the merged
// read model that also includes asset-embedded licenses.
type LicenseRepository interface {
	Create(ctx context.Context, license *domain.License) error
	GetByID(ctx context.Context, id string) (*domain.License, error)
	UpdateDetails(ctx context.Context, license *domain.License, expectedVersion int64) error
	UpdateAssignment(ctx context.Context, id string, assignment LicenseAssignment, expectedVersion int64) (*domain.License, error)
	Delete(ctx context.Context, id string) error
	ListMerged(ctx context.Context, filter LicenseFilter) ([]domain.LicenseView, int, error)
}

type licenseRepository struct {
	pool *pgxpool.Pool
}

// NewLicenseRepository instantiates repository.
func NewLicenseRepository(pool *pgxpool.Pool) LicenseRepository {
	return &licenseRepository{pool: pool}
}

const licenseColumns = `id, proveedor, cuenta, tipo_licencia, fecha_compra, sucursal, centro_costo,
               COALESCE(asignado_para, ''), COALESCE(asignado_por, ''), fecha_asignacion, notas, version,
               created_at, updated_at`

// mergedLicenses unions standalone licenses with assets of the license category.
const mergedLicenses = `
        WITH merged AS (
            SELECT id::text AS id, 'licencia' AS source, proveedor, cuenta, tipo_licencia, fecha_compra,
                   sucursal, centro_costo, COALESCE(asignado_para, '') AS asignado_para, fecha_asignacion,
                   '' AS activo_id, notas, created_at, updated_at
            FROM licenses
            UNION ALL
            SELECT id::text, 'activo', COALESCE(licencia->>'proveedor', ''), COALESCE(licencia->>'cuenta', ''),
                   COALESCE(licencia->>'tipoLicencia', ''), fecha_compra, sucursal, centro_costo,
                   COALESCE(NULLIF(asignado_para, ''), licencia->>'usuarioNombre', ''),
                   COALESCE(fecha_asignacion, (licencia->>'asignadaEn')::timestamptz),
                   id::text, notas, created_at, updated_at
            FROM assets
            WHERE categoria = 'licencias' AND licencia IS NOT NULL
        )`

func (r *licenseRepository) db(ctx context.Context) persistence.DBTX {
	return persistence.Conn(ctx, r.pool)
}

func (r *licenseRepository) Create(ctx context.Context, license *domain.License) error {
	const query = `
        INSERT INTO licenses (proveedor, cuenta, tipo_licencia, fecha_compra, sucursal, centro_costo,
            asignado_para, asignado_por, fecha_asignacion, notas)
        VALUES ($1,$2,$3,$4,$5,$6,NULLIF($7,''),NULLIF($8,''),$9,$10)
        RETURNING id, version, created_at, updated_at`
	err := r.db(ctx).QueryRow(ctx, query,
		license.Proveedor,
		license.Cuenta,
		license.TipoLicencia,
		license.FechaCompra,
		license.Sucursal,
		license.CentroCosto,
		license.AsignadoPara,
		license.AsignadoPor,
		license.FechaAsignacion,
		license.Notas,
	).Scan(&license.ID, &license.Version, &license.CreatedAt, &license.UpdatedAt)
	return translate(err)
}

func (r *licenseRepository) GetByID(ctx context.Context, id string) (*domain.License, error) {
	key, err := recordID(id)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + licenseColumns + ` FROM licenses WHERE id=$1`
	license, err := scanLicense(r.db(ctx).QueryRow(ctx, query, key))
	if err != nil {
		return nil, translate(err)
	}
	return license, nil
}

func (r *licenseRepository) UpdateDetails(ctx context.Context, license *domain.License, expectedVersion int64) error {
	key, err := recordID(license.ID)
	if err != nil {
		return err
	}
	const query = `
        UPDATE licenses SET proveedor=$1, cuenta=$2, tipo_licencia=$3, fecha_compra=$4, sucursal=$5,
            centro_costo=$6, notas=$7, version = version + 1, updated_at = NOW()
        WHERE id=$8 AND version=$9
        RETURNING version, updated_at`
	err = r.db(ctx).QueryRow(ctx, query,
		license.Proveedor,
		license.Cuenta,
		license.TipoLicencia,
		license.FechaCompra,
		license.Sucursal,
		license.CentroCosto,
		license.Notas,
		key,
		expectedVersion,
	).Scan(&license.Version, &license.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return r.missOrStale(ctx, key)
	}
	return translate(err)
}

func (r *licenseRepository) UpdateAssignment(ctx context.Context, id string, assignment LicenseAssignment, expectedVersion int64) (*domain.License, error) {
	key, err := recordID(id)
	if err != nil {
		return nil, err
	}
	query := `
        UPDATE licenses SET asignado_para=$1, asignado_por=$2, fecha_asignacion=$3,
            version = version + 1, updated_at = NOW()
        WHERE id=$4 AND version=$5
        RETURNING ` + licenseColumns
	license, err := scanLicense(r.db(ctx).QueryRow(ctx, query,
		assignment.AsignadoPara,
		assignment.AsignadoPor,
		assignment.FechaAsignacion,
		key,
		expectedVersion,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.missOrStale(ctx, key)
	}
	if err != nil {
		return nil, translate(err)
	}
	return license, nil
}

func (r *licenseRepository) missOrStale(ctx context.Context, id uuid.UUID) error {
	var exists bool
	if err := r.db(ctx).QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM licenses WHERE id=$1)`, id).Scan(&exists); err != nil {
		return translate(err)
	}
	if exists {
		return errors.WithStack(ErrStale)
	}
	return errors.WithStack(ErrNotFound)
}

func (r *licenseRepository) Delete(ctx context.Context, id string) error {
	key, err := recordID(id)
	if err != nil {
		return err
	}
	cmd, err := r.db(ctx).Exec(ctx, `DELETE FROM licenses WHERE id=$1`, key)
	if err != nil {
		return translate(err)
	}
	if cmd.RowsAffected() == 0 {
		return errors.WithStack(ErrNotFound)
	}
	return nil
}

func (r *licenseRepository) ListMerged(ctx context.Context, filter LicenseFilter) ([]domain.LicenseView, int, error) {
	var where whereBuilder
	where.contains("cuenta", filter.Cuenta)
	where.contains("asignado_para", filter.AsignadoPara)
	where.contains("sucursal", filter.Sucursal)
	where.equals("proveedor", filter.Proveedor)
	where.equals("tipo_licencia", filter.TipoLicencia)
	where.between("fecha_compra", filter.CompraDesde, filter.CompraHasta)
	where.between("fecha_asignacion", filter.AsignacionDesde, filter.AsignacionHasta)

	var total int
	countQuery := mergedLicenses + ` SELECT COUNT(*) FROM merged` + where.sql()
	if err := r.db(ctx).QueryRow(ctx, countQuery, where.args...).Scan(&total); err != nil {
		return nil, 0, translate(err)
	}

	query := fmt.Sprintf(`%s
        SELECT id, source, proveedor, cuenta, tipo_licencia, fecha_compra, sucursal, centro_costo,
               asignado_para, fecha_asignacion, activo_id, notas, created_at, updated_at
        FROM merged%s ORDER BY created_at DESC, id%s`,
		mergedLicenses, where.sql(), pageClause(filter.Limit, filter.Skip))
	rows, err := r.db(ctx).Query(ctx, query, where.args...)
	if err != nil {
		return nil, 0, translate(err)
	}
	defer rows.Close()

	views := []domain.LicenseView{}
	for rows.Next() {
		var view domain.LicenseView
		if err := rows.Scan(
			&view.ID,
			&view.Source,
			&view.Proveedor,
			&view.Cuenta,
			&view.TipoLicencia,
			&view.FechaCompra,
			&view.Sucursal,
			&view.CentroCosto,
			&view.AsignadoPara,
			&view.FechaAsignacion,
			&view.ActivoID,
			&view.Notas,
			&view.CreatedAt,
			&view.UpdatedAt,
		); err != nil {
			return nil, 0, translate(err)
		}
		views = append(views, view)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, translate(err)
	}
	return views, total, nil
}

func scanLicense(row pgx.Row) (*domain.License, error) {
	var license domain.License
	if err := row.Scan(
		&license.ID,
		&license.Proveedor,
		&license.Cuenta,
		&license.TipoLicencia,
		&license.FechaCompra,
		&license.Sucursal,
		&license.CentroCosto,
		&license.AsignadoPara,
		&license.AsignadoPor,
		&license.FechaAsignacion,
		&license.Notas,
		&license.Version,
		&license.CreatedAt,
		&license.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &license, nil
}
