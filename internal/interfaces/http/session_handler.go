package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/comercio-api/internal/application/dto"
	"github.com/jhoicas/comercio-api/internal/application/session"
)

// SessionHandler maneja las peticiones HTTP de sesiones de caja (protegido).
type SessionHandler struct {
	uc *session.UseCase
}

// NewSessionHandler construye el handler.
func NewSessionHandler(uc *session.UseCase) *SessionHandler {
	return &SessionHandler{uc: uc}
}

// Start abre una sesión de caja.
// POST /api/sessions
func (h *SessionHandler) Start(c *fiber.Ctx) error {
	var in dto.StartSessionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.CreatedBy == "" {
		in.CreatedBy = GetUserName(c)
	}
	s, err := h.uc.Start(c.Context(), in)
	if err != nil {
		return mapError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(s)
}

// GetCurrent sesión abierta actual.
// GET /api/sessions/current
func (h *SessionHandler) GetCurrent(c *fiber.Ctx) error {
	s, err := h.uc.GetCurrent(c.Context())
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(s)
}

// List sesiones pasadas, más recientes primero.
// GET /api/sessions?limit=&offset=
func (h *SessionHandler) List(c *fiber.Ctx) error {
	sessions, err := h.uc.GetAll(c.Context(), c.QueryInt("limit", 0), c.QueryInt("offset", 0))
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(sessions)
}

// Close cierra la sesión y vincula los pagos sin sesión.
// POST /api/sessions/:id/close
func (h *SessionHandler) Close(c *fiber.Ctx) error {
	var in dto.CloseSessionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	s, err := h.uc.Close(c.Context(), c.Params("id"), in)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(s)
}

// AddExpense registra un gasto de caja (queda sin sesión hasta el cierre).
// POST /api/expenses
func (h *SessionHandler) AddExpense(c *fiber.Ctx) error {
	var in dto.ExpenseRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.CreatedBy == "" {
		in.CreatedBy = GetUserName(c)
	}
	e, err := h.uc.AddExpense(c.Context(), in)
	if err != nil {
		return mapError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(e)
}

// ListExpenses gastos de una sesión; sin session_id, los aún no vinculados.
// GET /api/expenses?session_id=
func (h *SessionHandler) ListExpenses(c *fiber.Ctx) error {
	expenses, err := h.uc.GetExpenses(c.Context(), c.Query("session_id"))
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(expenses)
}

// LastBalance balance de cierre de la última sesión cerrada.
// GET /api/sessions/last-balance
func (h *SessionHandler) LastBalance(c *fiber.Ctx) error {
	balance, err := h.uc.LastClosingBalance(c.Context())
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(fiber.Map{"last_closing_balance": balance})
}
