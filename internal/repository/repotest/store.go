// Package repotest provides in-memory repository implementations for tests.
package repotest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/spec-kit/asset-desk/internal/domain"
	"github.com/spec-kit/asset-desk/internal/repository"
)

// Store holds every collection in memory. WithinTx restores the previous state
// when fn fails, mirroring a rolled back transaction.
type Store struct {
	mu       sync.Mutex
	tickets  map[string]domain.Ticket
	assets   map[string]domain.Asset
	licenses map[string]domain.License
	ledgers  map[string]domain.Ledger
	specs    map[string]domain.Specification
	seq      int
	base     time.Time

	// LedgerErr, when set, fails every ledger write.
	LedgerErr error
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		tickets:  map[string]domain.Ticket{},
		assets:   map[string]domain.Asset{},
		licenses: map[string]domain.License{},
		ledgers:  map[string]domain.Ledger{},
		specs:    map[string]domain.Specification{},
		base:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// WithinTx runs fn and rolls the store back when it returns an error.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	saved := s.cloneLocked()
	s.mu.Unlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.tickets, s.assets, s.licenses, s.ledgers, s.specs = saved.tickets, saved.assets, saved.licenses, saved.ledgers, saved.specs
		s.mu.Unlock()
		return err
	}
	return nil
}

// Tickets returns the ticket repository view.
func (s *Store) Tickets() repository.TicketRepository { return ticketRepo{s} }

// Assets returns the asset repository view.
func (s *Store) Assets() repository.AssetRepository { return assetRepo{s} }

// Licenses returns the license repository view.
func (s *Store) Licenses() repository.LicenseRepository { return licenseRepo{s} }

// Ledgers returns the ledger repository view.
func (s *Store) Ledgers() repository.LedgerRepository { return ledgerRepo{s} }

// Specifications returns the catalog repository view.
func (s *Store) Specifications() repository.SpecificationRepository { return specRepo{s} }

// nextLocked returns a fresh id and a strictly increasing timestamp.
func (s *Store) nextLocked(prefix string) (string, time.Time) {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq), s.base.Add(time.Duration(s.seq) * time.Second)
}

func (s *Store) cloneLocked() *Store {
	c := &Store{
		tickets:  make(map[string]domain.Ticket, len(s.tickets)),
		assets:   make(map[string]domain.Asset, len(s.assets)),
		licenses: make(map[string]domain.License, len(s.licenses)),
		ledgers:  make(map[string]domain.Ledger, len(s.ledgers)),
		specs:    make(map[string]domain.Specification, len(s.specs)),
	}
	for k, v := range s.tickets {
		c.tickets[k] = copyTicket(v)
	}
	for k, v := range s.assets {
		c.assets[k] = copyAsset(v)
	}
	for k, v := range s.licenses {
		c.licenses[k] = v
	}
	for k, v := range s.ledgers {
		c.ledgers[k] = copyLedger(v)
	}
	for k, v := range s.specs {
		c.specs[k] = v
	}
	return c
}

func copyTicket(t domain.Ticket) domain.Ticket {
	t.Images = append([]string(nil), t.Images...)
	return t
}

func copyAsset(a domain.Asset) domain.Asset {
	if a.Licencia != nil {
		lic := *a.Licencia
		a.Licencia = &lic
	}
	return a
}

func copyLedger(l domain.Ledger) domain.Ledger {
	l.Asignaciones = append([]domain.Movement{}, l.Asignaciones...)
	return l
}

func notFound() error  { return errors.WithStack(repository.ErrNotFound) }
func duplicate() error { return errors.WithStack(repository.ErrDuplicateKey) }
func stale() error     { return errors.WithStack(repository.ErrStale) }

func matchesExact(value string, filter *string) bool {
	if filter == nil || strings.TrimSpace(*filter) == "" {
		return true
	}
	return value == strings.TrimSpace(*filter)
}

func matchesContains(value string, filter *string) bool {
	if filter == nil || strings.TrimSpace(*filter) == "" {
		return true
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(strings.TrimSpace(*filter)))
}

func matchesRange(value *time.Time, from, to *time.Time) bool {
	if from == nil && to == nil {
		return true
	}
	if value == nil {
		return false
	}
	if from != nil && value.Before(*from) {
		return false
	}
	if to != nil && value.After(*to) {
		return false
	}
	return true
}

func page[T any](items []T, limit, skip int) []T {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(items) {
		return []T{}
	}
	items = items[skip:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func sortByCreatedDesc[T any](items []T, created func(T) time.Time, id func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		ci, cj := created(items[i]), created(items[j])
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return id(items[i]) < id(items[j])
	})
}
