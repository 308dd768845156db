package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/comercio-api/internal/application/dto"
	"github.com/jhoicas/comercio-api/internal/application/repair"
)

// RepairHandler maneja las peticiones HTTP de reparaciones (protegido).
type RepairHandler struct {
	uc *repair.UseCase
}

// NewRepairHandler construye el handler.
func NewRepairHandler(uc *repair.UseCase) *RepairHandler {
	return &RepairHandler{uc: uc}
}

// Create registra una reparación.
// POST /api/repairs
func (h *RepairHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateRepairRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	r, err := h.uc.Create(c.Context(), in)
	if err != nil {
		return mapError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(r)
}

// List reparaciones, más recientes primero.
// GET /api/repairs
func (h *RepairHandler) List(c *fiber.Ctx) error {
	repairs, err := h.uc.GetAll(c.Context())
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(repairs)
}

// GetByID reparación con repuestos, pagos e historial.
// GET /api/repairs/:id
func (h *RepairHandler) GetByID(c *fiber.Ctx) error {
	r, err := h.uc.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(r)
}

// Update actualiza la cabecera de la reparación.
// PUT /api/repairs/:id
func (h *RepairHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateRepairRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	r, err := h.uc.Update(c.Context(), c.Params("id"), in)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(r)
}

// UpdateStatus cambia el estado del ciclo de vida.
// PUT /api/repairs/:id/status
func (h *RepairHandler) UpdateStatus(c *fiber.Ctx) error {
	var in dto.UpdateRepairStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	r, err := h.uc.UpdateStatus(c.Context(), c.Params("id"), in.Status, GetUserName(c))
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(r)
}

// Delete elimina la reparación y sus agregados.
// DELETE /api/repairs/:id
func (h *RepairHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Context(), c.Params("id")); err != nil {
		return mapError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetHistory historial de auditoría de la reparación.
// GET /api/repairs/:id/history
func (h *RepairHandler) GetHistory(c *fiber.Ctx) error {
	history, err := h.uc.GetHistory(c.Context(), c.Params("id"))
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(history)
}

// AddUsedPart consume un repuesto (descuenta inventario si aplica).
// POST /api/repairs/:id/parts
func (h *RepairHandler) AddUsedPart(c *fiber.Ctx) error {
	var in dto.UsedPartInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	r, err := h.uc.AddUsedPart(c.Context(), c.Params("id"), in, GetUserName(c))
	if err != nil {
		return mapError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(r)
}

// RemoveUsedPart quita un repuesto y restituye el inventario descontado.
// DELETE /api/repairs/:id/parts/:partId
func (h *RepairHandler) RemoveUsedPart(c *fiber.Ctx) error {
	r, err := h.uc.RemoveUsedPart(c.Context(), c.Params("id"), c.Params("partId"), GetUserName(c))
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(r)
}

// AddPayment registra un pago de la reparación.
// POST /api/repairs/:id/payments
func (h *RepairHandler) AddPayment(c *fiber.Ctx) error {
	var in dto.RepairPaymentInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	r, err := h.uc.AddPayment(c.Context(), c.Params("id"), in, GetUserName(c))
	if err != nil {
		return mapError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(r)
}

// GetPayments pagos de la reparación.
// GET /api/repairs/:id/payments
func (h *RepairHandler) GetPayments(c *fiber.Ctx) error {
	payments, err := h.uc.GetPayments(c.Context(), c.Params("id"))
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(payments)
}
