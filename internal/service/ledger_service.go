package service

import (
	"context"
	"errors"

	"github.com/spec-kit/asset-desk/internal/domain"
	"github.com/spec-kit/asset-desk/internal/repository"
)

// LedgerService owns the append-only movement log of assets and licenses.
type LedgerService struct {
	ledgers repository.LedgerRepository
}

// NewLedgerService constructs the service.
func NewLedgerService(ledgers repository.LedgerRepository) *LedgerService {
	return &LedgerService{ledgers: ledgers}
}

// Ensure creates the ledger with snapshot when absent. An existing ledger,
// snapshot included, is returned untouched.
func (s *LedgerService) Ensure(ctx context.Context, activoID string, kind domain.LedgerKind, snapshot domain.LedgerSnapshot) (*domain.Ledger, error) {
	ledger, err := s.ledgers.Ensure(ctx, activoID, kind, snapshot)
	if err != nil {
		return nil, mapRepoError(err, "history", map[string]any{"activoId": activoID})
	}
	return ledger, nil
}

// RecordAssignment overwrites the snapshot and appends movement.
func (s *LedgerService) RecordAssignment(ctx context.Context, activoID string, kind domain.LedgerKind, snapshot domain.LedgerSnapshot, movement domain.Movement) (*domain.Ledger, error) {
	ledger, err := s.ledgers.RecordAssignment(ctx, activoID, kind, snapshot, movement)
	if err != nil {
		return nil, mapRepoError(err, "history", map[string]any{"activoId": activoID})
	}
	return ledger, nil
}

// SyncSnapshot overwrites only the descriptive copy.
func (s *LedgerService) SyncSnapshot(ctx context.Context, activoID string, kind domain.LedgerKind, snapshot domain.LedgerSnapshot) error {
	if err := s.ledgers.SyncSnapshot(ctx, activoID, kind, snapshot); err != nil {
		return mapRepoError(err, "history", map[string]any{"activoId": activoID})
	}
	return nil
}

// Get returns the ledger, or an empty one when the record has no history.
func (s *LedgerService) Get(ctx context.Context, activoID string, kind domain.LedgerKind) (*domain.Ledger, error) {
	ledger, err := s.ledgers.Get(ctx, activoID)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.EmptyLedger(activoID, kind), nil
	}
	if err != nil {
		return nil, mapRepoError(err, "history", map[string]any{"activoId": activoID})
	}
	return ledger, nil
}

// Delete removes the ledger. A missing ledger is not an error.
func (s *LedgerService) Delete(ctx context.Context, activoID string) error {
	if err := s.ledgers.Delete(ctx, activoID); err != nil {
		return mapRepoError(err, "history", map[string]any{"activoId": activoID})
	}
	return nil
}
