package repotest

import (
	"context"

	"github.com/spec-kit/asset-desk/internal/domain"
)

type ledgerRepo struct{ s *Store }

func (r ledgerRepo) Ensure(_ context.Context, activoID string, kind domain.LedgerKind, snapshot domain.LedgerSnapshot) (*domain.Ledger, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.LedgerErr != nil {
		return nil, r.s.LedgerErr
	}
	ledger, ok := r.s.ledgers[activoID]
	if !ok {
		_, now := r.s.nextLocked("tick")
		ledger = domain.Ledger{
			ActivoID:     activoID,
			Tipo:         kind,
			Snapshot:     snapshot,
			Asignaciones: []domain.Movement{},
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		r.s.ledgers[activoID] = ledger
	}
	copied := copyLedger(ledger)
	return &copied, nil
}

func (r ledgerRepo) RecordAssignment(_ context.Context, activoID string, kind domain.LedgerKind, snapshot domain.LedgerSnapshot, movement domain.Movement) (*domain.Ledger, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.LedgerErr != nil {
		return nil, r.s.LedgerErr
	}
	_, now := r.s.nextLocked("tick")
	ledger, ok := r.s.ledgers[activoID]
	if !ok {
		ledger = domain.Ledger{ActivoID: activoID, CreatedAt: now}
	}
	fecha := movement.Fecha
	ledger.Tipo = kind
	ledger.Snapshot = snapshot
	ledger.Asignaciones = append(copyLedger(ledger).Asignaciones, movement)
	ledger.UltimaAsignacion = &fecha
	ledger.AsignadoPor = movement.Por
	ledger.UpdatedAt = now
	r.s.ledgers[activoID] = ledger
	copied := copyLedger(ledger)
	return &copied, nil
}

func (r ledgerRepo) SyncSnapshot(_ context.Context, activoID string, kind domain.LedgerKind, snapshot domain.LedgerSnapshot) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.LedgerErr != nil {
		return r.s.LedgerErr
	}
	_, now := r.s.nextLocked("tick")
	ledger, ok := r.s.ledgers[activoID]
	if !ok {
		ledger = domain.Ledger{ActivoID: activoID, Tipo: kind, Asignaciones: []domain.Movement{}, CreatedAt: now}
	}
	ledger.Snapshot = snapshot
	ledger.UpdatedAt = now
	r.s.ledgers[activoID] = ledger
	return nil
}

func (r ledgerRepo) Get(_ context.Context, activoID string) (*domain.Ledger, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ledger, ok := r.s.ledgers[activoID]
	if !ok {
		return nil, notFound()
	}
	copied := copyLedger(ledger)
	return &copied, nil
}

func (r ledgerRepo) Delete(_ context.Context, activoID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.LedgerErr != nil {
		return r.s.LedgerErr
	}
	delete(r.s.ledgers, activoID)
	return nil
}
