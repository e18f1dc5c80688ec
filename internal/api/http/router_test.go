package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/asset-desk/internal/api/http/handlers"
	"github.com/spec-kit/asset-desk/internal/auth"
	"github.com/spec-kit/asset-desk/internal/domain"
	"github.com/spec-kit/asset-desk/internal/events"
	"github.com/spec-kit/asset-desk/internal/observability"
	"github.com/spec-kit/asset-desk/internal/repository/repotest"
	"github.com/spec-kit/asset-desk/internal/service"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type testServer struct {
	app        *fiber.App
	adminToken string
	userToken  string
}

func newTestServer(t *testing.T, deps map[string]handlers.Pinger) *testServer {
	t.Helper()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	store := repotest.NewStore()
	dispatcher := events.NewInMemoryDispatcher()
	policy, err := service.NewTransitionPolicy(service.PolicyPermissive)
	if err != nil {
		t.Fatalf("policy: %v", err)
	}

	ledger := service.NewLedgerService(store.Ledgers())
	specs := service.NewSpecificationService(store.Specifications())
	tickets := service.NewTicketService(service.TicketDependencies{TicketRepo: store.Tickets(), Policy: policy, Dispatcher: dispatcher})
	assignment := service.NewAssignmentService(service.AssignmentDependencies{
		Tx: store, AssetRepo: store.Assets(), LicenseRepo: store.Licenses(), Ledger: ledger,
		Specifications: specs, Dispatcher: dispatcher,
	})
	assets := service.NewAssetService(service.AssetDependencies{
		Tx: store, AssetRepo: store.Assets(), Ledger: ledger, Specifications: specs, Dispatcher: dispatcher,
	})
	licenses := service.NewLicenseService(service.LicenseDependencies{
		Tx: store, LicenseRepo: store.Licenses(), Ledger: ledger, Dispatcher: dispatcher,
	})

	tokens := auth.NewTokenManager("test-secret", 5)
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logger, metrics)})
	RegisterMiddlewares(app, logger, metrics, 0)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("asset-desk", "test", deps, metrics),
		Tickets:        handlers.NewTicketsHandler(tickets),
		Assets:         handlers.NewAssetsHandler(assets, assignment),
		Licenses:       handlers.NewLicensesHandler(licenses, assignment),
		Specifications: handlers.NewSpecificationsHandler(specs),
		AuthMiddleware: auth.NewAuthMiddleware(tokens),
	})

	adminToken, _, err := tokens.GenerateToken(domain.Actor{ID: "adm-1", Name: "Admin", Role: domain.ActorRoleAdmin})
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	userToken, _, err := tokens.GenerateToken(domain.Actor{ID: "u1", Name: "Ana", Role: domain.ActorRoleUser})
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return &testServer{app: app, adminToken: adminToken, userToken: userToken}
}

type envelope struct {
	OK      bool            `json:"ok"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
	Details map[string]any  `json:"details"`
	Count   int             `json:"count"`
	Total   int             `json:"total"`
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("%s %s: decode: %v", method, path, err)
	}
	return resp.StatusCode, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	return out
}

func TestTicketEndpoints(t *testing.T) {
	s := newTestServer(t, nil)
	ticket := map[string]any{"ticketId": "T1", "title": "SAP", "description": " no puedo entrar ", "userName": "Ana"}

	status, env := s.do(t, http.MethodPost, "/api/tickets", s.userToken, ticket)
	if status != http.StatusCreated || !env.OK {
		t.Fatalf("create: %d %+v", status, env)
	}
	created := decode[map[string]any](t, env.Data)
	if created["state"] != "recibido" || created["risk"] != "bajo" || created["userId"] != "u1" || created["description"] != "no puedo entrar" {
		t.Fatalf("unexpected ticket %v", created)
	}

	status, env = s.do(t, http.MethodPost, "/api/tickets", s.userToken, ticket)
	if status != http.StatusConflict || env.Code != "DUPLICATE_KEY" {
		t.Fatalf("duplicate: %d %+v", status, env)
	}

	status, env = s.do(t, http.MethodPatch, "/api/tickets/T1", s.userToken, map[string]any{"state": "resuelto"})
	if status != http.StatusForbidden || env.OK {
		t.Fatalf("user patch: %d %+v", status, env)
	}

	status, env = s.do(t, http.MethodPatch, "/api/tickets/T1", s.adminToken, map[string]any{})
	if status != http.StatusBadRequest || env.Code != "VALIDATION_FAILED" {
		t.Fatalf("empty patch: %d %+v", status, env)
	}

	status, env = s.do(t, http.MethodPatch, "/api/tickets/T1", s.adminToken, map[string]any{"state": "resuelto", "risk": "alto"})
	if status != http.StatusOK {
		t.Fatalf("patch: %d %+v", status, env)
	}
	patched := decode[map[string]any](t, env.Data)
	if patched["state"] != "resuelto" || patched["resolucionTime"] == nil {
		t.Fatalf("resolved ticket must carry resolucionTime: %v", patched)
	}

	status, env = s.do(t, http.MethodGet, "/api/tickets?limit=10", s.userToken, nil)
	if status != http.StatusOK || env.Total != 1 || env.Count != 1 {
		t.Fatalf("list: %d %+v", status, env)
	}

	status, env = s.do(t, http.MethodGet, "/api/tickets?skip=-1", s.adminToken, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("negative skip: %d %+v", status, env)
	}

	status, _ = s.do(t, http.MethodGet, "/api/admin/tickets/pending", s.userToken, nil)
	if status != http.StatusForbidden {
		t.Fatalf("pending as user: %d", status)
	}

	status, _ = s.do(t, http.MethodDelete, "/api/tickets/T1", s.adminToken, nil)
	if status != http.StatusOK {
		t.Fatalf("delete: %d", status)
	}
	status, env = s.do(t, http.MethodGet, "/api/tickets/T1", s.adminToken, nil)
	if status != http.StatusNotFound || env.Code != "NOT_FOUND" {
		t.Fatalf("get deleted: %d %+v", status, env)
	}
}

func TestAssetAssignmentFlow(t *testing.T) {
	s := newTestServer(t, nil)
	asset := map[string]any{"marca": "Dell", "modelo": "X1", "numeroSerie": "SN1", "fechaCompra": "2024-01-01"}

	status, env := s.do(t, http.MethodPost, "/api/assets", s.userToken, asset)
	if status != http.StatusForbidden {
		t.Fatalf("user create: %d", status)
	}
	status, env = s.do(t, http.MethodPost, "/api/assets", s.adminToken, asset)
	if status != http.StatusCreated {
		t.Fatalf("create: %d %+v", status, env)
	}
	id := decode[map[string]any](t, env.Data)["id"].(string)

	status, env = s.do(t, http.MethodPost, "/api/assets/"+id+"/assign", s.adminToken, map[string]any{"asignadoPara": "Ana"})
	if status != http.StatusOK {
		t.Fatalf("assign Ana: %d %+v", status, env)
	}
	status, _ = s.do(t, http.MethodPost, "/api/assets/"+id+"/assign", s.adminToken, map[string]any{"asignadoPara": "Beto", "asignadoPor": "Mesa"})
	if status != http.StatusOK {
		t.Fatalf("assign Beto: %d", status)
	}

	status, env = s.do(t, http.MethodGet, "/api/assets/"+id+"/history", s.adminToken, nil)
	if status != http.StatusOK {
		t.Fatalf("history: %d", status)
	}
	history := decode[struct {
		AsignadoPara []domain.Movement `json:"asignadoPara"`
		Modelo       string            `json:"modelo"`
	}](t, env.Data)
	if len(history.AsignadoPara) != 2 || history.Modelo != "X1" {
		t.Fatalf("unexpected history %+v", history)
	}
	if history.AsignadoPara[0].Por != "Admin" || history.AsignadoPara[1].Desde != "Ana" {
		t.Fatalf("unexpected movements %+v", history.AsignadoPara)
	}

	status, env = s.do(t, http.MethodPatch, "/api/assets/"+id, s.adminToken, map[string]any{"asignadoPara": "Carla"})
	if status != http.StatusBadRequest {
		t.Fatalf("assignment via patch: %d %+v", status, env)
	}
	status, env = s.do(t, http.MethodPatch, "/api/assets/"+id, s.adminToken, map[string]any{"sucursal": "Santiago", "version": 0})
	if status != http.StatusConflict || env.Code != "CONFLICT" {
		t.Fatalf("stale patch: %d %+v", status, env)
	}

	status, env = s.do(t, http.MethodGet, "/api/assets?sinAsignar=true", s.adminToken, nil)
	if status != http.StatusOK || env.Total != 0 {
		t.Fatalf("sinAsignar: %d %+v", status, env)
	}

	status, env = s.do(t, http.MethodGet, "/api/assets/unknown/history", s.adminToken, nil)
	if status != http.StatusOK || string(decode[map[string]json.RawMessage](t, env.Data)["asignadoPara"]) != "[]" {
		t.Fatalf("empty history: %d %s", status, env.Data)
	}
}

func TestLicenseEndpoints(t *testing.T) {
	s := newTestServer(t, nil)
	batch := `[
		{"proveedor":"SAP","cuenta":"disponible","tipoLicencia":"Profesional","fechaCompra":"2024-01-01"},
		{"proveedor":"Office","cuenta":"ana@corp","tipoLicencia":"Microsoft 365 E3","fechaCompra":"2024-01-01T00:00:00Z"}
	]`
	status, env := s.do(t, http.MethodPost, "/api/licenses", s.adminToken, batch)
	if status != http.StatusCreated || env.Count != 2 {
		t.Fatalf("batch create: %d %+v", status, env)
	}

	status, env = s.do(t, http.MethodPost, "/api/licenses", s.adminToken,
		map[string]any{"proveedor": "SAP", "cuenta": "x", "tipoLicencia": "Microsoft 365 E3", "fechaCompra": "2024-01-01"})
	if status != http.StatusBadRequest {
		t.Fatalf("mismatch: %d %+v", status, env)
	}

	status, env = s.do(t, http.MethodGet, "/api/licenses?proveedor=SAP", s.adminToken, nil)
	if status != http.StatusOK || env.Total != 1 {
		t.Fatalf("list: %d %+v", status, env)
	}

	status, env = s.do(t, http.MethodGet, "/api/licenses/stats", s.adminToken, nil)
	if status != http.StatusOK {
		t.Fatalf("stats: %d", status)
	}
	stats := decode[map[string]any](t, env.Data)
	if stats["total"] != float64(2) || stats["disponibles"] != float64(1) {
		t.Fatalf("unexpected stats %v", stats)
	}

	status, env = s.do(t, http.MethodPost, "/api/licenses", s.adminToken, "")
	if status != http.StatusBadRequest {
		t.Fatalf("empty body: %d %+v", status, env)
	}
}

func TestSpecificationEndpoints(t *testing.T) {
	s := newTestServer(t, nil)

	status, _ := s.do(t, http.MethodPost, "/api/specifications", s.userToken, map[string]any{"modelo": "X1"})
	if status != http.StatusForbidden {
		t.Fatalf("user create: %d", status)
	}
	status, env := s.do(t, http.MethodPost, "/api/specifications", s.adminToken, map[string]any{"modelo": "X1", "marca": "Dell"})
	if status != http.StatusCreated {
		t.Fatalf("create: %d %+v", status, env)
	}
	status, env = s.do(t, http.MethodPost, "/api/specifications", s.adminToken, map[string]any{"modelo": "X1"})
	if status != http.StatusConflict {
		t.Fatalf("duplicate modelo: %d %+v", status, env)
	}
	status, env = s.do(t, http.MethodGet, "/api/specifications", s.userToken, nil)
	if status != http.StatusOK || env.Count != 1 {
		t.Fatalf("list: %d %+v", status, env)
	}
}

func TestAuthAndUnknownRoutes(t *testing.T) {
	s := newTestServer(t, nil)

	status, env := s.do(t, http.MethodGet, "/api/tickets", "", nil)
	if status != http.StatusUnauthorized || env.Code != "UNAUTHORIZED" || env.OK {
		t.Fatalf("missing token: %d %+v", status, env)
	}
	status, env = s.do(t, http.MethodGet, "/nowhere", "", nil)
	if status != http.StatusNotFound || env.Code != "NOT_FOUND" {
		t.Fatalf("unknown route: %d %+v", status, env)
	}
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t, map[string]handlers.Pinger{
		"postgres": pingFunc(func(context.Context) error { return nil }),
		"redis":    pingFunc(func(context.Context) error { return errors.New("connection refused") }),
	})

	status, env := s.do(t, http.MethodGet, "/health/live", "", nil)
	if status != http.StatusOK || !env.OK {
		t.Fatalf("live: %d", status)
	}
	status, env = s.do(t, http.MethodGet, "/health/ready", "", nil)
	if status != http.StatusServiceUnavailable || env.Details["redis"] != "connection refused" || env.Details["postgres"] != "ok" {
		t.Fatalf("ready: %d %+v", status, env)
	}
	status, _ = s.do(t, http.MethodGet, "/metrics", "", nil)
	if status != http.StatusOK {
		t.Fatalf("metrics: %d", status)
	}
}
