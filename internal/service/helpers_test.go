package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/spec-kit/asset-desk/internal/domain"
	"github.com/spec-kit/asset-desk/internal/events"
	"github.com/spec-kit/asset-desk/internal/repository/repotest"
	apperrors "github.com/spec-kit/asset-desk/pkg/util/errorutil"
)

var (
	admin = domain.Actor{ID: "adm-1", Name: "Admin", Role: domain.ActorRoleAdmin}
	user  = domain.Actor{ID: "u1", Name: "User", Role: domain.ActorRoleUser}
)

// stepClock advances one minute on every call.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func newStepClock() *stepClock {
	return &stepClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Minute)
	return c.now
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) types() []events.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]events.EventType, 0, len(d.events))
	for _, e := range d.events {
		out = append(out, e.Type)
	}
	return out
}

type testEnv struct {
	store      *repotest.Store
	clock      *stepClock
	dispatcher *recordingDispatcher
	tickets    *TicketService
	ledger     *LedgerService
	assignment *AssignmentService
	assets     *AssetService
	licenses   *LicenseService
	specs      *SpecificationService
}

type envOption func(*envConfig)

type envConfig struct {
	policy               string
	requireSpecification bool
}

func withPolicy(name string) envOption {
	return func(c *envConfig) { c.policy = name }
}

func withRequiredSpecification() envOption {
	return func(c *envConfig) { c.requireSpecification = true }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	var cfg envConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	policy, err := NewTransitionPolicy(cfg.policy)
	if err != nil {
		t.Fatalf("policy: %v", err)
	}

	store := repotest.NewStore()
	clock := newStepClock()
	dispatcher := &recordingDispatcher{}
	ledger := NewLedgerService(store.Ledgers())
	specs := NewSpecificationService(store.Specifications())

	return &testEnv{
		store:      store,
		clock:      clock,
		dispatcher: dispatcher,
		ledger:     ledger,
		specs:      specs,
		tickets: NewTicketService(TicketDependencies{
			TicketRepo: store.Tickets(),
			Policy:     policy,
			Dispatcher: dispatcher,
			Clock:      clock.Now,
		}),
		assignment: NewAssignmentService(AssignmentDependencies{
			Tx:                   store,
			AssetRepo:            store.Assets(),
			LicenseRepo:          store.Licenses(),
			Ledger:               ledger,
			Specifications:       specs,
			RequireSpecification: cfg.requireSpecification,
			Dispatcher:           dispatcher,
			Clock:                clock.Now,
		}),
		assets: NewAssetService(AssetDependencies{
			Tx:                   store,
			AssetRepo:            store.Assets(),
			Ledger:               ledger,
			Specifications:       specs,
			RequireSpecification: cfg.requireSpecification,
			Dispatcher:           dispatcher,
			Clock:                clock.Now,
		}),
		licenses: NewLicenseService(LicenseDependencies{
			Tx:          store,
			LicenseRepo: store.Licenses(),
			Ledger:      ledger,
			Dispatcher:  dispatcher,
			Clock:       clock.Now,
		}),
	}
}

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func str(s string) *string { return &s }

func expectCode(t *testing.T, err error, code string) {
	t.Helper()
	if !apperrors.HasCode(err, code) {
		t.Fatalf("expected %s, got %v", code, err)
	}
}

func (e *testEnv) createAsset(t *testing.T, input AssetCreateInput) *domain.Asset {
	t.Helper()
	asset, _, err := e.assets.CreateAsset(context.Background(), admin, input)
	if err != nil {
		t.Fatalf("create asset: %v", err)
	}
	return asset
}

func dellX1() AssetCreateInput {
	return AssetCreateInput{Marca: "Dell", Modelo: "X1", NumeroSerie: "SN1", FechaCompra: date(2024, 1, 1)}
}
