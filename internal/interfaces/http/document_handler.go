package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/comercio-api/internal/application/dto"
	"github.com/jhoicas/comercio-api/internal/application/ledger"
	"github.com/jhoicas/comercio-api/internal/domain"
	"github.com/jhoicas/comercio-api/internal/domain/entity"
	"github.com/jhoicas/comercio-api/internal/domain/repository"
)

// DocumentHandler maneja las peticiones HTTP de un kind de documento
// (protegido). El mismo handler se monta tres veces: órdenes, ventas y
// transacciones, cada uno con su caso de uso.
type DocumentHandler struct {
	uc *ledger.DocumentUseCase
}

// NewDocumentHandler construye el handler.
func NewDocumentHandler(uc *ledger.DocumentUseCase) *DocumentHandler {
	return &DocumentHandler{uc: uc}
}

// mapError traduce errores de dominio a respuestas HTTP.
func mapError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrDuplicateNumber):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE_NUMBER", Message: "número de documento duplicado"})
	case errors.Is(err, domain.ErrInvalidTransition):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_TRANSITION", Message: "transición de estado no permitida"})
	case errors.Is(err, domain.ErrSessionOpen):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "SESSION_OPEN", Message: "ya existe una sesión de caja abierta"})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: err.Error()})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "conflicto con el estado actual"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

// Create crea un documento (con líneas y pagos iniciales opcionales).
// POST /api/{orders|sales|transactions}
func (h *DocumentHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateDocumentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.CreatedBy == "" {
		in.CreatedBy = GetUserName(c)
	}
	doc, err := h.uc.Create(c.Context(), in)
	if err != nil {
		return mapError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(doc)
}

// Submit alta atómica con completación inmediata opcional.
// POST /api/transactions/submit
func (h *DocumentHandler) Submit(c *fiber.Ctx) error {
	var in dto.CreateDocumentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.CreatedBy == "" {
		in.CreatedBy = GetUserName(c)
	}
	doc, err := h.uc.Submit(c.Context(), in)
	if err != nil {
		return mapError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(doc)
}

// List lista documentos del kind con filtros opcionales.
// GET /api/{orders|sales|transactions}?status=&payment_status=&party_id=&search=&limit=&offset=
func (h *DocumentHandler) List(c *fiber.Ctx) error {
	filter := repository.DocumentFilter{
		Status:        entity.DocumentStatus(c.Query("status")),
		PaymentStatus: entity.PaymentStatus(c.Query("payment_status")),
		PartyID:       c.Query("party_id"),
		Search:        c.Query("search"),
		Limit:         c.QueryInt("limit", 0),
		Offset:        c.QueryInt("offset", 0),
	}
	docs, err := h.uc.GetAll(c.Context(), filter)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(docs)
}

// GetByID obtiene un documento con líneas, pagos y contraparte.
// GET /api/{orders|sales|transactions}/:id
func (h *DocumentHandler) GetByID(c *fiber.Ctx) error {
	doc, err := h.uc.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(doc)
}

// GetHistory historial de auditoría del documento.
// GET /api/{orders|sales|transactions}/:id/history
func (h *DocumentHandler) GetHistory(c *fiber.Ctx) error {
	hs, err := h.uc.GetHistory(c.Context(), c.Params("id"))
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(hs)
}

// UpdateHeader actualiza notas, contraparte o estado (draft<->completed).
// PUT /api/{orders|sales|transactions}/:id
func (h *DocumentHandler) UpdateHeader(c *fiber.Ctx) error {
	var in dto.UpdateHeaderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	doc, err := h.uc.UpdateHeader(c.Context(), c.Params("id"), in, GetUserName(c))
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(doc)
}

// Complete transiciona el documento a completed (idempotente).
// POST /api/{orders|sales|transactions}/:id/complete
func (h *DocumentHandler) Complete(c *fiber.Ctx) error {
	doc, err := h.uc.Complete(c.Context(), c.Params("id"), GetUserName(c))
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(doc)
}

// Cancel cancela una transacción genérica en borrador.
// POST /api/transactions/:id/cancel
func (h *DocumentHandler) Cancel(c *fiber.Ctx) error {
	doc, err := h.uc.Cancel(c.Context(), c.Params("id"), GetUserName(c))
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(doc)
}

// AddItem agrega una línea al documento.
// POST /api/{orders|sales|transactions}/:id/items
func (h *DocumentHandler) AddItem(c *fiber.Ctx) error {
	var in dto.ItemInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	doc, err := h.uc.AddItem(c.Context(), c.Params("id"), in, GetUserName(c))
	if err != nil {
		return mapError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(doc)
}

// UpdateItem actualiza una línea del documento.
// PUT /api/{orders|sales|transactions}/:id/items/:itemId
func (h *DocumentHandler) UpdateItem(c *fiber.Ctx) error {
	var in dto.ItemInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	doc, err := h.uc.UpdateItem(c.Context(), c.Params("id"), c.Params("itemId"), in, GetUserName(c))
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(doc)
}

// RemoveItem elimina una línea del documento.
// DELETE /api/{orders|sales|transactions}/:id/items/:itemId
func (h *DocumentHandler) RemoveItem(c *fiber.Ctx) error {
	doc, err := h.uc.RemoveItem(c.Context(), c.Params("id"), c.Params("itemId"), GetUserName(c))
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(doc)
}

// AddPayment registra un pago del documento.
// POST /api/{orders|sales|transactions}/:id/payments
func (h *DocumentHandler) AddPayment(c *fiber.Ctx) error {
	var in dto.PaymentInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	doc, err := h.uc.AddPayment(c.Context(), c.Params("id"), in, GetUserName(c))
	if err != nil {
		return mapError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(doc)
}

// GetPayments pagos del documento.
// GET /api/{orders|sales|transactions}/:id/payments
func (h *DocumentHandler) GetPayments(c *fiber.Ctx) error {
	payments, err := h.uc.GetPayments(c.Context(), c.Params("id"))
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(payments)
}
