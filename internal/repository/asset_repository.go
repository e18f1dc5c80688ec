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

// AssetFilter captures inventory search parameters.
type AssetFilter struct {
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

// AssetAssignment is the set of fields only the assignment flow may write.
type AssetAssignment struct {
	AsignadoPara    string
	AsignadoPor     string
	FechaAsignacion time.Time
}

// AssetRepository encapsulates asset persistence. Writes to an existing row are
// guarded by the version the caller read; a mismatch yields ErrStale.
type AssetRepository interface {
	Create(ctx context.Context, asset *domain.Asset) error
	GetByID(ctx context.Context, id string) (*domain.Asset, error)
	UpdateDetails(ctx context.Context, asset *domain.Asset, expectedVersion int64) error
	UpdateAssignment(ctx context.Context, id string, assignment AssetAssignment, expectedVersion int64) (*domain.Asset, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter AssetFilter) ([]domain.Asset, int, error)
}

type assetRepository struct {
	pool *pgxpool.Pool
}

// NewAssetRepository instantiates repository.
func NewAssetRepository(pool *pgxpool.Pool) AssetRepository {
	return &assetRepository{pool: pool}
}

const assetColumns = `id, categoria, marca, modelo, numero_serie, numero_factura, fecha_compra, detalles,
               sucursal, centro_costo, COALESCE(asignado_para, ''), COALESCE(asignado_por, ''), fecha_asignacion,
               licencia, notas, version, created_at, updated_at`

func (r *assetRepository) db(ctx context.Context) persistence.DBTX {
	return persistence.Conn(ctx, r.pool)
}

func (r *assetRepository) Create(ctx context.Context, asset *domain.Asset) error {
	const query = `
        INSERT INTO assets (categoria, marca, modelo, numero_serie, numero_factura, fecha_compra, detalles,
            sucursal, centro_costo, asignado_para, asignado_por, fecha_asignacion, licencia, notas)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NULLIF($10,''),NULLIF($11,''),$12,$13,$14)
        RETURNING id, version, created_at, updated_at`
	err := r.db(ctx).QueryRow(ctx, query,
		asset.Categoria,
		asset.Marca,
		asset.Modelo,
		asset.NumeroSerie,
		asset.NumeroFactura,
		asset.FechaCompra,
		asset.Detalles,
		asset.Sucursal,
		asset.CentroCosto,
		asset.AsignadoPara,
		asset.AsignadoPor,
		asset.FechaAsignacion,
		asset.Licencia,
		asset.Notas,
	).Scan(&asset.ID, &asset.Version, &asset.CreatedAt, &asset.UpdatedAt)
	return translate(err)
}

func (r *assetRepository) GetByID(ctx context.Context, id string) (*domain.Asset, error) {
	key, err := recordID(id)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + assetColumns + ` FROM assets WHERE id=$1`
	asset, err := scanAsset(r.db(ctx).QueryRow(ctx, query, key))
	if err != nil {
		return nil, translate(err)
	}
	return asset, nil
}

func (r *assetRepository) UpdateDetails(ctx context.Context, asset *domain.Asset, expectedVersion int64) error {
	key, err := recordID(asset.ID)
	if err != nil {
		return err
	}
	const query = `
        UPDATE assets SET categoria=$1, marca=$2, modelo=$3, numero_serie=$4, numero_factura=$5,
            fecha_compra=$6, detalles=$7, sucursal=$8, centro_costo=$9, licencia=$10, notas=$11,
            version = version + 1, updated_at = NOW()
        WHERE id=$12 AND version=$13
        RETURNING version, updated_at`
	err = r.db(ctx).QueryRow(ctx, query,
		asset.Categoria,
		asset.Marca,
		asset.Modelo,
		asset.NumeroSerie,
		asset.NumeroFactura,
		asset.FechaCompra,
		asset.Detalles,
		asset.Sucursal,
		asset.CentroCosto,
		asset.Licencia,
		asset.Notas,
		key,
		expectedVersion,
	).Scan(&asset.Version, &asset.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return r.missOrStale(ctx, key)
	}
	return translate(err)
}

func (r *assetRepository) UpdateAssignment(ctx context.Context, id string, assignment AssetAssignment, expectedVersion int64) (*domain.Asset, error) {
	key, err := recordID(id)
	if err != nil {
		return nil, err
	}
	query := `
        UPDATE assets SET asignado_para=$1, asignado_por=$2, fecha_asignacion=$3,
            version = version + 1, updated_at = NOW()
        WHERE id=$4 AND version=$5
        RETURNING ` + assetColumns
	asset, err := scanAsset(r.db(ctx).QueryRow(ctx, query,
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
	return asset, nil
}

func (r *assetRepository) missOrStale(ctx context.Context, id uuid.UUID) error {
	var exists bool
	if err := r.db(ctx).QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM assets WHERE id=$1)`, id).Scan(&exists); err != nil {
		return translate(err)
	}
	if exists {
		return errors.WithStack(ErrStale)
	}
	return errors.WithStack(ErrNotFound)
}

func (r *assetRepository) Delete(ctx context.Context, id string) error {
	key, err := recordID(id)
	if err != nil {
		return err
	}
	cmd, err := r.db(ctx).Exec(ctx, `DELETE FROM assets WHERE id=$1`, key)
	if err != nil {
		return translate(err)
	}
	if cmd.RowsAffected() == 0 {
		return errors.WithStack(ErrNotFound)
	}
	return nil
}

func (r *assetRepository) List(ctx context.Context, filter AssetFilter) ([]domain.Asset, int, error) {
	var where whereBuilder
	where.equals("categoria", filter.Categoria)
	where.contains("marca", filter.Marca)
	where.contains("asignado_para", filter.AsignadoPara)
	where.contains("sucursal", filter.Sucursal)
	if filter.SinAsignar {
		where.add("COALESCE(asignado_para, '') = ''")
	}
	where.between("fecha_compra", filter.CompraDesde, filter.CompraHasta)
	where.between("fecha_asignacion", filter.AsignacionDesde, filter.AsignacionHasta)

	var total int
	if err := r.db(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM assets`+where.sql(), where.args...).Scan(&total); err != nil {
		return nil, 0, translate(err)
	}

	query := fmt.Sprintf(`SELECT %s FROM assets%s ORDER BY created_at DESC, id%s`,
		assetColumns, where.sql(), pageClause(filter.Limit, filter.Skip))
	rows, err := r.db(ctx).Query(ctx, query, where.args...)
	if err != nil {
		return nil, 0, translate(err)
	}
	defer rows.Close()

	assets := []domain.Asset{}
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, 0, translate(err)
		}
		assets = append(assets, *asset)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, translate(err)
	}
	return assets, total, nil
}

func scanAsset(row pgx.Row) (*domain.Asset, error) {
	var asset domain.Asset
	if err := row.Scan(
		&asset.ID,
		&asset.Categoria,
		&asset.Marca,
		&asset.Modelo,
		&asset.NumeroSerie,
		&asset.NumeroFactura,
		&asset.FechaCompra,
		&asset.Detalles,
		&asset.Sucursal,
		&asset.CentroCosto,
		&asset.AsignadoPara,
		&asset.AsignadoPor,
		&asset.FechaAsignacion,
		&asset.Licencia,
		&asset.Notas,
		&asset.Version,
		&asset.CreatedAt,
		&asset.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &asset, nil
}
