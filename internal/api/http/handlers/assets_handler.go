package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/asset-desk/internal/api/dto"
	"github.com/spec-kit/asset-desk/internal/service"
)

// AssetsHandler serves the inventory endpoints.
type AssetsHandler struct {
	assets     *service.AssetService
	assignment *service.AssignmentService
}

// NewAssetsHandler constructs handler.
func NewAssetsHandler(assets *service.AssetService, assignment *service.AssignmentService) *AssetsHandler {
	return &AssetsHandler{assets: assets, assignment: assignment}
}

// CreateAsset POST /assets.
func (h *AssetsHandler) CreateAsset(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.CreateAssetRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	asset, _, err := h.assets.CreateAsset(c.UserContext(), actor, service.AssetCreateInput{
		Categoria:       req.Categoria,
		Marca:           req.Marca,
		Modelo:          req.Modelo,
		NumeroSerie:     req.NumeroSerie,
		NumeroFactura:   req.NumeroFactura,
		FechaCompra:     req.FechaCompra.Ptr(),
		Detalles:        req.Detalles,
		Sucursal:        req.Sucursal,
		CentroCosto:     req.CentroCosto,
		Notas:           req.Notas,
		Licencia:        req.Licencia.ToDomain(),
		AsignadoPara:    req.AsignadoPara,
		AsignadoPor:     req.AsignadoPor,
		FechaAsignacion: req.FechaAsignacion.Ptr(),
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, dto.NewAssetResponse(asset))
}

// ListAssets GET /assets.
func (h *AssetsHandler) ListAssets(c *fiber.Ctx) error {
	limit, skip, err := pageParams(c)
	if err != nil {
		return err
	}
	compraDesde, compraHasta, err := dateRange(c, "compraDesde", "compraHasta")
	if err != nil {
		return err
	}
	asignacionDesde, asignacionHasta, err := dateRange(c, "asignacionDesde", "asignacionHasta")
	if err != nil {
		return err
	}

	assets, total, err := h.assets.ListAssets(c.UserContext(), service.AssetQuery{
		Categoria:       queryString(c, "categoria"),
		Marca:           queryString(c, "marca"),
		AsignadoPara:    queryString(c, "asignadoPara"),
		Sucursal:        queryString(c, "sucursal"),
		SinAsignar:      queryBool(c, "sinAsignar"),
		CompraDesde:     compraDesde,
		CompraHasta:     compraHasta,
		AsignacionDesde: asignacionDesde,
		AsignacionHasta: asignacionHasta,
		Limit:           limit,
		Skip:            skip,
	})
	if err != nil {
		return err
	}
	return respondList(c, dto.NewAssetResponses(assets), len(assets), total)
}

// GetAsset GET /assets/:id.
func (h *AssetsHandler) GetAsset(c *fiber.Ctx) error {
	asset, err := h.assets.GetAsset(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewAssetResponse(asset))
}

// PatchAsset PATCH /assets/:id. Only descriptive fields may change here.
func (h *AssetsHandler) PatchAsset(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.PatchAssetRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	asset, err := h.assignment.EditAsset(c.UserContext(), actor, c.Params("id"), service.AssetEditInput{
		Categoria:       req.Categoria,
		Marca:           req.Marca,
		Modelo:          req.Modelo,
		NumeroSerie:     req.NumeroSerie,
		NumeroFactura:   req.NumeroFactura,
		FechaCompra:     req.FechaCompra.Ptr(),
		Detalles:        req.Detalles,
		Sucursal:        req.Sucursal,
		CentroCosto:     req.CentroCosto,
		Notas:           req.Notas,
		Licencia:        req.Licencia.ToDomain(),
		AsignadoPara:    req.AsignadoPara,
		AsignadoPor:     req.AsignadoPor,
		FechaAsignacion: req.FechaAsignacion.Ptr(),
		ExpectedVersion: req.Version,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewAssetResponse(asset))
}

// DeleteAsset DELETE /assets/:id.
func (h *AssetsHandler) DeleteAsset(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id := c.Params("id")
	if err := h.assets.DeleteAsset(c.UserContext(), actor, id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, fiber.Map{"id": id})
}

// AssignAsset POST /assets/:id/assign.
func (h *AssetsHandler) AssignAsset(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.AssignRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	asset, ledger, err := h.assignment.AssignAsset(c.UserContext(), actor, c.Params("id"), assignInput(req, actor.Name))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, fiber.Map{
		"asset":   dto.NewAssetResponse(asset),
		"history": dto.NewLedgerResponse(ledger),
	})
}

// History GET /assets/:id/history.
func (h *AssetsHandler) History(c *fiber.Ctx) error {
	ledger, err := h.assets.History(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewLedgerResponse(ledger))
}

// assignInput maps the body; the assigner defaults to the caller.
func assignInput(req dto.AssignRequest, actorName string) service.AssignInput {
	assigner := req.AsignadoPor
	if strings.TrimSpace(assigner) == "" {
		assigner = actorName
	}
	return service.AssignInput{
		Assignee:        req.AsignadoPara,
		Assigner:        assigner,
		AssignedAt:      req.FechaAsignacion.Ptr(),
		Observacion:     req.Observacion,
		ExpectedVersion: req.Version,
	}
}
