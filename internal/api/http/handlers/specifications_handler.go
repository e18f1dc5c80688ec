package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/asset-desk/internal/api/dto"
	"github.com/spec-kit/asset-desk/internal/service"
)

// SpecificationsHandler serves the model catalog.
type SpecificationsHandler struct {
	service *service.SpecificationService
}

// NewSpecificationsHandler constructs handler.
func NewSpecificationsHandler(specService *service.SpecificationService) *SpecificationsHandler {
	return &SpecificationsHandler{service: specService}
}

func specificationInput(req dto.SpecificationRequest) service.SpecificationInput {
	return service.SpecificationInput{
		Modelo:         req.Modelo,
		Categoria:      req.Categoria,
		Marca:          req.Marca,
		Procesador:     req.Procesador,
		FrecuenciaGhz:  req.FrecuenciaGhz,
		Almacenamiento: req.Almacenamiento,
		RAM:            req.RAM,
		SO:             req.SO,
		Graficos:       req.Graficos,
		Resolucion:     req.Resolucion,
	}
}

// Create POST /specifications.
func (h *SpecificationsHandler) Create(c *fiber.Ctx) error {
	var req dto.SpecificationRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	spec, err := h.service.Create(c.UserContext(), specificationInput(req))
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, dto.NewSpecificationResponse(spec))
}

// List GET /specifications.
func (h *SpecificationsHandler) List(c *fiber.Ctx) error {
	specs, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]dto.SpecificationResponse, 0, len(specs))
	for i := range specs {
		out = append(out, dto.NewSpecificationResponse(&specs[i]))
	}
	return respondList(c, out, len(out), len(out))
}

// Get GET /specifications/:id.
func (h *SpecificationsHandler) Get(c *fiber.Ctx) error {
	spec, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewSpecificationResponse(spec))
}

// Patch PATCH /specifications/:id.
func (h *SpecificationsHandler) Patch(c *fiber.Ctx) error {
	var req dto.SpecificationRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	spec, err := h.service.Patch(c.UserContext(), c.Params("id"), specificationInput(req))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewSpecificationResponse(spec))
}

// Delete DELETE /specifications/:id.
func (h *SpecificationsHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, fiber.Map{"id": id})
}
