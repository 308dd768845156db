package repository

import (
	"context"

	"github.com/jhoicas/comercio-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// RepairRepository persistencia de reparaciones y sus agregados (repuestos,
// pagos, historial). Los métodos Get* devuelven (nil, nil) cuando no existe
// la fila.
type RepairRepository interface {
	Create(ctx context.Context, r *entity.Repair) error
	GetByID(ctx context.Context, id string) (*entity.Repair, error)
	// GetForUpdate bloquea la cabecera (SELECT ... FOR UPDATE) para
	// lecturas-modificaciones dentro de una transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Repair, error)
	GetAll(ctx context.Context) ([]entity.Repair, error)
	UpdateHeader(ctx context.Context, r *entity.Repair) error
	UpdateStatus(ctx context.Context, id string, status entity.RepairStatus) error
	UpdatePaymentStatus(ctx context.Context, id string, ps entity.PaymentStatus) error
	// Delete elimina la reparación; los hijos caen en cascada.
	Delete(ctx context.Context, id string) (bool, error)

	// GreatestCode devuelve el mayor código existente (REP###), o "" si no
	// hay ninguno.
	GreatestCode(ctx context.Context) (string, error)

	AddUsedPart(ctx context.Context, p *entity.RepairUsedPart) error
	GetUsedParts(ctx context.Context, repairID string) ([]entity.RepairUsedPart, error)
	GetUsedPart(ctx context.Context, repairID, partRowID string) (*entity.RepairUsedPart, error)
	RemoveUsedPart(ctx context.Context, repairID, partRowID string) (bool, error)

	AddPayment(ctx context.Context, p *entity.RepairPayment) error
	GetPayments(ctx context.Context, repairID string) ([]entity.RepairPayment, error)
	// SumPayments total pagado de la reparación (0 si no hay pagos).
	SumPayments(ctx context.Context, repairID string) (decimal.Decimal, error)
	// LinkOrphanPayments asigna sessionID a los pagos sin sesión y devuelve
	// cuántos vinculó.
	LinkOrphanPayments(ctx context.Context, sessionID string) (int64, error)

	AddHistory(ctx context.Context, h *entity.RepairHistory) error
	GetHistory(ctx context.Context, repairID string) ([]entity.RepairHistory, error)
}
