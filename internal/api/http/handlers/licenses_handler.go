package handlers

import (
	"bytes"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/asset-desk/internal/api/dto"
	"github.com/spec-kit/asset-desk/internal/service"
)

// LicensesHandler serves the license endpoints.
type LicensesHandler struct {
	licenses   *service.LicenseService
	assignment *service.AssignmentService
}

// NewLicensesHandler constructs handler.
func NewLicensesHandler(licenses *service.LicenseService, assignment *service.AssignmentService) *LicensesHandler {
	return &LicensesHandler{licenses: licenses, assignment: assignment}
}

// CreateLicenses POST /licenses. The body is one license or an array of them.
func (h *LicensesHandler) CreateLicenses(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}

	var reqs []dto.CreateLicenseRequest
	batch := bytes.HasPrefix(bytes.TrimSpace(c.Body()), []byte("["))
	if batch {
		if err := parseBody(c, &reqs); err != nil {
			return err
		}
	} else {
		var req dto.CreateLicenseRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}
		reqs = append(reqs, req)
	}

	inputs := make([]service.LicenseCreateInput, 0, len(reqs))
	for _, req := range reqs {
		inputs = append(inputs, service.LicenseCreateInput{
			Proveedor:       req.Proveedor,
			Cuenta:          req.Cuenta,
			TipoLicencia:    req.TipoLicencia,
			FechaCompra:     req.FechaCompra.Ptr(),
			Sucursal:        req.Sucursal,
			CentroCosto:     req.CentroCosto,
			Notas:           req.Notas,
			AsignadoPara:    req.AsignadoPara,
			AsignadoPor:     req.AsignadoPor,
			FechaAsignacion: req.FechaAsignacion.Ptr(),
		})
	}

	created, err := h.licenses.CreateLicenses(c.UserContext(), actor, inputs)
	if err != nil {
		return err
	}
	if !batch {
		return respond(c, http.StatusCreated, dto.NewLicenseResponse(&created[0]))
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"ok":    true,
		"data":  dto.NewLicenseResponses(created),
		"count": len(created),
	})
}

func (h *LicensesHandler) query(c *fiber.Ctx) (service.LicenseQuery, error) {
	limit, skip, err := pageParams(c)
	if err != nil {
		return service.LicenseQuery{}, err
	}
	compraDesde, compraHasta, err := dateRange(c, "compraDesde", "compraHasta")
	if err != nil {
		return service.LicenseQuery{}, err
	}
	asignacionDesde, asignacionHasta, err := dateRange(c, "asignacionDesde", "asignacionHasta")
	if err != nil {
		return service.LicenseQuery{}, err
	}
	return service.LicenseQuery{
		Cuenta:          queryString(c, "cuenta"),
		AsignadoPara:    queryString(c, "asignadoPara"),
		Sucursal:        queryString(c, "sucursal"),
		Proveedor:       queryString(c, "proveedor"),
		TipoLicencia:    queryString(c, "tipoLicencia"),
		CompraDesde:     compraDesde,
		CompraHasta:     compraHasta,
		AsignacionDesde: asignacionDesde,
		AsignacionHasta: asignacionHasta,
		Limit:           limit,
		Skip:            skip,
	}, nil
}

// ListLicenses GET /licenses. Standalone and asset-embedded licenses are
// returned as one series.
func (h *LicensesHandler) ListLicenses(c *fiber.Ctx) error {
	query, err := h.query(c)
	if err != nil {
		return err
	}
	views, total, err := h.licenses.ListLicenses(c.UserContext(), query)
	if err != nil {
		return err
	}
	return respondList(c, dto.NewLicenseViewResponses(views), len(views), total)
}

// Stats GET /licenses/stats.
func (h *LicensesHandler) Stats(c *fiber.Ctx) error {
	query, err := h.query(c)
	if err != nil {
		return err
	}
	stats, err := h.licenses.Stats(c.UserContext(), query)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewLicenseStatsResponse(stats))
}

// GetLicense GET /licenses/:id.
func (h *LicensesHandler) GetLicense(c *fiber.Ctx) error {
	license, err := h.licenses.GetLicense(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewLicenseResponse(license))
}

// PatchLicense PATCH /licenses/:id.
func (h *LicensesHandler) PatchLicense(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.PatchLicenseRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	license, err := h.assignment.EditLicense(c.UserContext(), actor, c.Params("id"), service.LicenseEditInput{
		Proveedor:       req.Proveedor,
		Cuenta:          req.Cuenta,
		TipoLicencia:    req.TipoLicencia,
		FechaCompra:     req.FechaCompra.Ptr(),
		Sucursal:        req.Sucursal,
		CentroCosto:     req.CentroCosto,
		Notas:           req.Notas,
		AsignadoPara:    req.AsignadoPara,
		AsignadoPor:     req.AsignadoPor,
		FechaAsignacion: req.FechaAsignacion.Ptr(),
		ExpectedVersion: req.Version,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewLicenseResponse(license))
}

// DeleteLicense DELETE /licenses/:id.
func (h *LicensesHandler) DeleteLicense(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id := c.Params("id")
	if err := h.licenses.DeleteLicense(c.UserContext(), actor, id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, fiber.Map{"id": id})
}

// AssignLicense POST /licenses/:id/assign.
func (h *LicensesHandler) AssignLicense(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.AssignRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	license, ledger, err := h.assignment.AssignLicense(c.UserContext(), actor, c.Params("id"), assignInput(req, actor.Name))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, fiber.Map{
		"license": dto.NewLicenseResponse(license),
		"history": dto.NewLedgerResponse(ledger),
	})
}

// History GET /licenses/:id/history.
func (h *LicensesHandler) History(c *fiber.Ctx) error {
	ledger, err := h.licenses.History(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewLedgerResponse(ledger))
}
