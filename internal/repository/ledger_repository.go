package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/spec-kit/asset-desk/internal/domain"
	"github.com/spec-kit/asset-desk/internal/persistence"
)

// LedgerRepository persists one append-only movement log per asset or
// license, keyed by activo_id. No method removes a movement.
type LedgerRepository interface {
	Ensure(ctx context.Context, activoID string, kind domain.LedgerKind, snapshot domain.LedgerSnapshot) (*domain.Ledger, error)
	RecordAssignment(ctx context.Context, activoID string, kind domain.LedgerKind, snapshot domain.LedgerSnapshot, movement domain.Movement) (*domain.Ledger, error)
	SyncSnapshot(ctx context.Context, activoID string, kind domain.LedgerKind, snapshot domain.LedgerSnapshot) error
	Get(ctx context.Context, activoID string) (*domain.Ledger, error)
	Delete(ctx context.Context, activoID string) error
}

type ledgerRepository struct {
	pool *pgxpool.Pool
}

// NewLedgerRepository instantiates repository.
func NewLedgerRepository(pool *pgxpool.Pool) LedgerRepository {
	return &ledgerRepository{pool: pool}
}

const ledgerColumns = `activo_id, tipo, categoria, marca, modelo, numero_serie, fecha_compra, proveedor,
               tipo_licencia, cuenta, asignado_para, ultima_asignacion, asignado_por, created_at, updated_at`

func (r *ledgerRepository) db(ctx context.Context) persistence.DBTX {
	return persistence.Conn(ctx, r.pool)
}

func snapshotArgs(activoID string, kind domain.LedgerKind, s domain.LedgerSnapshot) []any {
	return []any{activoID, kind, s.Categoria, s.Marca, s.Modelo, s.NumeroSerie, s.FechaCompra, s.Proveedor, s.TipoLicencia, s.Cuenta}
}

func (r *ledgerRepository) Ensure(ctx context.Context, activoID string, kind domain.LedgerKind, snapshot domain.LedgerSnapshot) (*domain.Ledger, error) {
	const insert = `
        INSERT INTO history_ledger (activo_id, tipo, categoria, marca, modelo, numero_serie, fecha_compra,
            proveedor, tipo_licencia, cuenta)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        ON CONFLICT (activo_id) DO NOTHING`
	if _, err := r.db(ctx).Exec(ctx, insert, snapshotArgs(activoID, kind, snapshot)...); err != nil {
		return nil, translate(err)
	}
	return r.Get(ctx, activoID)
}

// RecordAssignment overwrites the snapshot and appends movement in one
// statement, creating the ledger when absent.
func (r *ledgerRepository) RecordAssignment(ctx context.Context, activoID string, kind domain.LedgerKind, snapshot domain.LedgerSnapshot, movement domain.Movement) (*domain.Ledger, error) {
	encoded, err := json.Marshal(movement)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	query := `
        INSERT INTO history_ledger (activo_id, tipo, categoria, marca, modelo, numero_serie, fecha_compra,
            proveedor, tipo_licencia, cuenta, asignado_para, ultima_asignacion, asignado_por)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10, jsonb_build_array($11::jsonb), $12, $13)
        ON CONFLICT (activo_id) DO UPDATE SET
            tipo = EXCLUDED.tipo,
            categoria = EXCLUDED.categoria,
            marca = EXCLUDED.marca,
            modelo = EXCLUDED.modelo,
            numero_serie = EXCLUDED.numero_serie,
            fecha_compra = EXCLUDED.fecha_compra,
            proveedor = EXCLUDED.proveedor,
            tipo_licencia = EXCLUDED.tipo_licencia,
            cuenta = EXCLUDED.cuenta,
            asignado_para = history_ledger.asignado_para || EXCLUDED.asignado_para,
            ultima_asignacion = EXCLUDED.ultima_asignacion,
            asignado_por = EXCLUDED.asignado_por,
            updated_at = NOW()
        RETURNING ` + ledgerColumns
	args := append(snapshotArgs(activoID, kind, snapshot), string(encoded), movement.Fecha, movement.Por)
	ledger, err := scanLedger(r.db(ctx).QueryRow(ctx, query, args...))
	if err != nil {
		return nil, translate(err)
	}
	return ledger, nil
}

func (r *ledgerRepository) SyncSnapshot(ctx context.Context, activoID string, kind domain.LedgerKind, snapshot domain.LedgerSnapshot) error {
	const query = `
        INSERT INTO history_ledger (activo_id, tipo, categoria, marca, modelo, numero_serie, fecha_compra,
            proveedor, tipo_licencia, cuenta)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        ON CONFLICT (activo_id) DO UPDATE SET
            categoria = EXCLUDED.categoria,
            marca = EXCLUDED.marca,
            modelo = EXCLUDED.modelo,
            numero_serie = EXCLUDED.numero_serie,
            fecha_compra = EXCLUDED.fecha_compra,
            proveedor = EXCLUDED.proveedor,
            tipo_licencia = EXCLUDED.tipo_licencia,
            cuenta = EXCLUDED.cuenta,
            updated_at = NOW()`
	_, err := r.db(ctx).Exec(ctx, query, snapshotArgs(activoID, kind, snapshot)...)
	return translate(err)
}

func (r *ledgerRepository) Get(ctx context.Context, activoID string) (*domain.Ledger, error) {
	query := `SELECT ` + ledgerColumns + ` FROM history_ledger WHERE activo_id=$1`
	ledger, err := scanLedger(r.db(ctx).QueryRow(ctx, query, activoID))
	if err != nil {
		return nil, translate(err)
	}
	return ledger, nil
}

func (r *ledgerRepository) Delete(ctx context.Context, activoID string) error {
	_, err := r.db(ctx).Exec(ctx, `DELETE FROM history_ledger WHERE activo_id=$1`, activoID)
	return translate(err)
}

func scanLedger(row pgx.Row) (*domain.Ledger, error) {
	var (
		ledger    domain.Ledger
		movements []byte
	)
	if err := row.Scan(
		&ledger.ActivoID,
		&ledger.Tipo,
		&ledger.Snapshot.Categoria,
		&ledger.Snapshot.Marca,
		&ledger.Snapshot.Modelo,
		&ledger.Snapshot.NumeroSerie,
		&ledger.Snapshot.FechaCompra,
		&ledger.Snapshot.Proveedor,
		&ledger.Snapshot.TipoLicencia,
		&ledger.Snapshot.Cuenta,
		&movements,
		&ledger.UltimaAsignacion,
		&ledger.AsignadoPor,
		&ledger.CreatedAt,
		&ledger.UpdatedAt,
	); err != nil {
		return nil, err
	}
	ledger.Asignaciones = []domain.Movement{}
	if len(movements) > 0 {
		if err := json.Unmarshal(movements, &ledger.Asignaciones); err != nil {
			return nil, err
		}
	}
	return &ledger, nil
}
