package repository

import (
	"context"

	"github.com/jhoicas/comercio-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// DocumentFilter filtros opcionales para listar documentos de un kind.
type DocumentFilter struct {
	Status        entity.DocumentStatus
	PaymentStatus entity.PaymentStatus
	PartyID       string
	Search        string // busca en number y notes
	Limit         int
	Offset        int
}

// DocumentRepository persistencia de documentos comerciales y sus agregados
// (líneas, pagos, historial). Los métodos Get* devuelven (nil, nil) cuando
// no existe la fila.
type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document) error
	GetByID(ctx context.Context, kind entity.DocumentKind, id string) (*entity.Document, error)
	// GetForUpdate bloquea la cabecera (SELECT ... FOR UPDATE) para
	// lecturas-modificaciones dentro de una transacción.
	GetForUpdate(ctx context.Context, kind entity.DocumentKind, id string) (*entity.Document, error)
	GetAll(ctx context.Context, kind entity.DocumentKind, filter DocumentFilter) ([]entity.Document, error)
	UpdateHeader(ctx context.Context, doc *entity.Document) error
	UpdateStatus(ctx context.Context, id string, status entity.DocumentStatus) error
	// UpdateTotals fija los montos derivados y el estado de pago.
	UpdateTotals(ctx context.Context, id string, total, paid decimal.Decimal, ps entity.PaymentStatus) error

	// GreatestNumber devuelve el mayor número existente para prefix-year,
	// o "" si no hay ninguno.
	GreatestNumber(ctx context.Context, prefix string, year int) (string, error)

	AddItem(ctx context.Context, item *entity.DocumentItem) error
	UpdateItem(ctx context.Context, item *entity.DocumentItem) error
	RemoveItem(ctx context.Context, documentID, itemRowID string) (bool, error)
	GetItems(ctx context.Context, documentID string) ([]entity.DocumentItem, error)
	GetItem(ctx context.Context, documentID, itemRowID string) (*entity.DocumentItem, error)
	// SumItems total de líneas del documento (0 si no hay líneas).
	SumItems(ctx context.Context, documentID string) (decimal.Decimal, error)

	AddPayment(ctx context.Context, p *entity.DocumentPayment) error
	GetPayments(ctx context.Context, documentID string) ([]entity.DocumentPayment, error)
	// SumPayments total pagado del documento (0 si no hay pagos).
	SumPayments(ctx context.Context, documentID string) (decimal.Decimal, error)
	// LinkOrphanPayments asigna sessionID a los pagos sin sesión y devuelve
	// cuántos vinculó.
	LinkOrphanPayments(ctx context.Context, sessionID string) (int64, error)

	AddHistory(ctx context.Context, h *entity.DocumentHistory) error
	GetHistory(ctx context.Context, documentID string) ([]entity.DocumentHistory, error)
}
