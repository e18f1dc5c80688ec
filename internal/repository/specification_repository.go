package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/spec-kit/asset-desk/internal/domain"
	"github.com/spec-kit/asset-desk/internal/persistence"
)

// SpecificationRepository encapsulates the hardware model catalog.
type SpecificationRepository interface {
	Create(ctx context.Context, spec *domain.Specification) error
	GetByID(ctx context.Context, id string) (*domain.Specification, error)
	GetByModelo(ctx context.Context, modelo string) (*domain.Specification, error)
	List(ctx context.Context, limit int) ([]domain.Specification, error)
	Update(ctx context.Context, spec *domain.Specification) error
	Delete(ctx context.Context, id string) error
}

type specificationRepository struct {
	pool *pgxpool.Pool
}

// NewSpecificationRepository instantiates repository.
func NewSpecificationRepository(pool *pgxpool.Pool) SpecificationRepository {
	return &specificationRepository{pool: pool}
}

const specificationColumns = `id, modelo, categoria, marca, procesador, frecuencia_ghz, almacenamiento, ram, so,
               graficos, resolucion, created_at, updated_at`

func (r *specificationRepository) db(ctx context.Context) persistence.DBTX {
	return persistence.Conn(ctx, r.pool)
}

func (r *specificationRepository) Create(ctx context.Context, spec *domain.Specification) error {
	const query = `
        INSERT INTO specifications (modelo, categoria, marca, procesador, frecuencia_ghz, almacenamiento, ram, so, graficos, resolucion)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at, updated_at`
	err := r.db(ctx).QueryRow(ctx, query,
		spec.Modelo,
		spec.Categoria,
		spec.Marca,
		spec.Procesador,
		spec.FrecuenciaGhz,
		spec.Almacenamiento,
		spec.RAM,
		spec.SO,
		spec.Graficos,
		spec.Resolucion,
	).Scan(&spec.ID, &spec.CreatedAt, &spec.UpdatedAt)
	return translate(err)
}

func (r *specificationRepository) GetByID(ctx context.Context, id string) (*domain.Specification, error) {
	key, err := recordID(id)
	if err != nil {
		return nil, err
	}
	return r.fetchSingle(ctx, `SELECT `+specificationColumns+` FROM specifications WHERE id=$1`, key)
}

func (r *specificationRepository) GetByModelo(ctx context.Context, modelo string) (*domain.Specification, error) {
	return r.fetchSingle(ctx, `SELECT `+specificationColumns+` FROM specifications WHERE modelo=$1`, modelo)
}

func (r *specificationRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Specification, error) {
	spec, err := scanSpecification(r.db(ctx).QueryRow(ctx, query, arg))
	if err != nil {
		return nil, translate(err)
	}
	return spec, nil
}

func (r *specificationRepository) List(ctx context.Context, limit int) ([]domain.Specification, error) {
	query := `SELECT ` + specificationColumns + ` FROM specifications ORDER BY modelo ASC` + pageClause(limit, 0)
	rows, err := r.db(ctx).Query(ctx, query)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	specs := []domain.Specification{}
	for rows.Next() {
		spec, err := scanSpecification(rows)
		if err != nil {
			return nil, translate(err)
		}
		specs = append(specs, *spec)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err)
	}
	return specs, nil
}

func (r *specificationRepository) Update(ctx context.Context, spec *domain.Specification) error {
	key, err := recordID(spec.ID)
	if err != nil {
		return err
	}
	const query = `
        UPDATE specifications SET modelo=$1, categoria=$2, marca=$3, procesador=$4, frecuencia_ghz=$5,
            almacenamiento=$6, ram=$7, so=$8, graficos=$9, resolucion=$10, updated_at=NOW()
        WHERE id=$11
        RETURNING updated_at`
	err = r.db(ctx).QueryRow(ctx, query,
		spec.Modelo,
		spec.Categoria,
		spec.Marca,
		spec.Procesador,
		spec.FrecuenciaGhz,
		spec.Almacenamiento,
		spec.RAM,
		spec.SO,
		spec.Graficos,
		spec.Resolucion,
		key,
	).Scan(&spec.UpdatedAt)
	return translate(err)
}

func (r *specificationRepository) Delete(ctx context.Context, id string) error {
	key, err := recordID(id)
	if err != nil {
		return err
	}
	cmd, err := r.db(ctx).Exec(ctx, `DELETE FROM specifications WHERE id=$1`, key)
	if err != nil {
		return translate(err)
	}
	if cmd.RowsAffected() == 0 {
		return errors.WithStack(ErrNotFound)
	}
	return nil
}

func scanSpecification(row pgx.Row) (*domain.Specification, error) {
	var spec domain.Specification
	if err := row.Scan(
		&spec.ID,
		&spec.Modelo,
		&spec.Categoria,
		&spec.Marca,
		&spec.Procesador,
		&spec.FrecuenciaGhz,
		&spec.Almacenamiento,
		&spec.RAM,
		&spec.SO,
		&spec.Graficos,
		&spec.Resolucion,
		&spec.CreatedAt,
		&spec.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &spec, nil
}
