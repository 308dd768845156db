package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/comercio-api/internal/application/ledger"
	"github.com/jhoicas/comercio-api/internal/application/repair"
	"github.com/jhoicas/comercio-api/internal/application/session"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	OrderUC       *ledger.DocumentUseCase
	SaleUC        *ledger.DocumentUseCase
	TransactionUC *ledger.DocumentUseCase
	RepairUC      *repair.UseCase
	SessionUC     *session.UseCase
	JWTSecret     string
}

// Router registra las rutas de la API. Los tres kinds de documento montan
// el mismo handler sobre su propio caso de uso.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	mountDocuments(protected.Group("/orders"), NewDocumentHandler(deps.OrderUC))
	mountDocuments(protected.Group("/sales"), NewDocumentHandler(deps.SaleUC))

	transactions := protected.Group("/transactions")
	txHandler := NewDocumentHandler(deps.TransactionUC)
	transactions.Post("/submit", txHandler.Submit)
	mountDocuments(transactions, txHandler)
	transactions.Post("/:id/cancel", txHandler.Cancel)

	// Repairs (protegido)
	repairs := protected.Group("/repairs")
	repairHandler := NewRepairHandler(deps.RepairUC)
	repairs.Post("/", repairHandler.Create)
	repairs.Get("/", repairHandler.List)
	repairs.Get("/:id", repairHandler.GetByID)
	repairs.Put("/:id", repairHandler.Update)
	repairs.Delete("/:id", repairHandler.Delete)
	repairs.Put("/:id/status", repairHandler.UpdateStatus)
	repairs.Get("/:id/history", repairHandler.GetHistory)
	repairs.Post("/:id/parts", repairHandler.AddUsedPart)
	repairs.Delete("/:id/parts/:partId", repairHandler.RemoveUsedPart)
	repairs.Post("/:id/payments", repairHandler.AddPayment)
	repairs.Get("/:id/payments", repairHandler.GetPayments)

	// Cash sessions (protegido)
	sessions := protected.Group("/sessions")
	sessionHandler := NewSessionHandler(deps.SessionUC)
	sessions.Post("/", sessionHandler.Start)
	sessions.Get("/", sessionHandler.List)
	sessions.Get("/current", sessionHandler.GetCurrent)
	sessions.Get("/last-balance", sessionHandler.LastBalance)
	sessions.Post("/:id/close", sessionHandler.Close)

	// Gastos de caja (protegido)
	expenses := protected.Group("/expenses")
	expenses.Post("/", sessionHandler.AddExpense)
	expenses.Get("/", sessionHandler.ListExpenses)
}

// mountDocuments rutas comunes a los tres kinds.
func mountDocuments(g fiber.Router, h *DocumentHandler) {
	g.Post("/", h.Create)
	g.Get("/", h.List)
	g.Get("/:id", h.GetByID)
	g.Put("/:id", h.UpdateHeader)
	g.Get("/:id/history", h.GetHistory)
	g.Post("/:id/complete", h.Complete)
	g.Post("/:id/items", h.AddItem)
	g.Put("/:id/items/:itemId", h.UpdateItem)
	g.Delete("/:id/items/:itemId", h.RemoveItem)
	g.Post("/:id/payments", h.AddPayment)
	g.Get("/:id/payments", h.GetPayments)
}
